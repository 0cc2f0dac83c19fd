package usecase

import "context"

// Notifier is the outbound email channel. Calls are fire-and-forget from
// the workflows' point of view: a failed send is logged and never rolls
// back the state change that triggered it.
type Notifier interface {
	SendResetPasswordAccount(email, code string) error
	SendNotificationResetPassword(email string) error
	SendDetectOtherDevice(email, ip, userAgent, deviceName string) error
}

// EventPublisher fans domain events out to sibling services. A nil
// publisher is valid and means events are dropped.
type EventPublisher interface {
	UserRegistered(ctx context.Context, userID, email string) error
	PostCreated(ctx context.Context, postID, authorID string) error
}

// MediaStorage hands out presigned URLs against the object store.
type MediaStorage interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}
