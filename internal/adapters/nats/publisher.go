package natsadapter

import (
	"context"
	"encoding/json"
	"time"

	nats "github.com/nats-io/nats.go"
)

// Publisher fans domain events out to the rest of the platform. Sends are
// best-effort publishes, not request/reply.
type Publisher struct {
	conn        *nats.Conn
	userSubject string
	postSubject string
}

func NewPublisher(conn *nats.Conn, userSubject, postSubject string) *Publisher {
	return &Publisher{conn: conn, userSubject: userSubject, postSubject: postSubject}
}

func (p *Publisher) UserRegistered(ctx context.Context, userID, email string) error {
	return p.publish(p.userSubject, map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"at":      time.Now().UTC(),
	})
}

func (p *Publisher) PostCreated(ctx context.Context, postID, authorID string) error {
	return p.publish(p.postSubject, map[string]interface{}{
		"post_id":   postID,
		"author_id": authorID,
		"at":        time.Now().UTC(),
	})
}

func (p *Publisher) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}
