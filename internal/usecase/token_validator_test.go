package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateRequiresActiveSession(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	register(t, svc, "a@x.com", "password-1")

	result, err := svc.Login(context.Background(), "trace", "a@x.com", "password-1", "1.2.3.4", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	validator := NewTokenValidator(svc.signer, store)
	user, err := validator.Validate(context.Background(), result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.ID != result.Session.UserID {
		t.Fatalf("validated user %q, session owner %q", user.ID, result.Session.UserID)
	}

	// the access token itself is still unexpired, but logout must close the door
	if err := svc.Logout(context.Background(), "trace", result.Session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := validator.Validate(context.Background(), result.Tokens.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

// A refresh token has a valid signature and a subject with live sessions,
// but it is not an access credential.
func TestValidateRejectsRefreshToken(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	register(t, svc, "a@x.com", "password-1")

	result, err := svc.Login(context.Background(), "trace", "a@x.com", "password-1", "1.2.3.4", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	validator := NewTokenValidator(svc.signer, store)
	if _, err := validator.Validate(context.Background(), result.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for refresh token, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	validator := NewTokenValidator(svc.signer, store)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := validator.Validate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	register(t, svc, "a@x.com", "password-1")

	result, err := svc.Login(context.Background(), "trace", "a@x.com", "password-1", "1.2.3.4", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	validator := NewTokenValidator(svc.signer, store)
	validator.nowFn = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := validator.Validate(context.Background(), result.Tokens.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestValidateDeletedUser(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	user := register(t, svc, "a@x.com", "password-1")

	result, err := svc.Login(context.Background(), "trace", "a@x.com", "password-1", "1.2.3.4", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	delete(store.users.users, user.ID)

	validator := NewTokenValidator(svc.signer, store)
	if _, err := validator.Validate(context.Background(), result.Tokens.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for deleted user, got %v", err)
	}
}
