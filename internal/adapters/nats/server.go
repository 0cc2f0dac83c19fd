package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/tokenverify"
)

// SessionValidator is the session-aware gate. A signature check alone is
// not enough for sibling services: a token for a fully logged-out user
// must fail here exactly as it fails on protected HTTP routes.
type SessionValidator interface {
	Validate(ctx context.Context, accessToken string) (*domain.User, error)
}

// VerifyHandler answers token-verification requests from sibling
// services over NATS request/reply.
type VerifyHandler struct {
	parser    tokenverify.Parser
	validator SessionValidator
	respondFn func(msg *nats.Msg, resp verifyResponse)
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	OK        bool           `json:"ok"`
	UserID    string         `json:"user_id,omitempty"`
	ProfileID string         `json:"profile_id,omitempty"`
	Email     string         `json:"email,omitempty"`
	Error     string         `json:"error,omitempty"`
	Claims    map[string]any `json:"claims,omitempty"`
}

func NewVerifyHandler(parser tokenverify.Parser, validator SessionValidator) *VerifyHandler {
	return &VerifyHandler{parser: parser, validator: validator, respondFn: respond}
}

func (h *VerifyHandler) Subscribe(conn *nats.Conn, subject, queue string) error {
	if conn == nil {
		return errors.New("nats connection is nil")
	}
	_, err := conn.QueueSubscribe(subject, queue, h.handle)
	return err
}

func (h *VerifyHandler) handle(msg *nats.Msg) {
	var req verifyRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.respondFn(msg, verifyResponse{OK: false, Error: "invalid_payload"})
		return
	}
	result, err := tokenverify.Verify(h.parser, req.Token, time.Now)
	if err != nil {
		switch {
		case errors.Is(err, tokenverify.ErrTokenExpired):
			h.respondFn(msg, verifyResponse{OK: false, Error: "expired"})
		case errors.Is(err, tokenverify.ErrNotAccessToken):
			h.respondFn(msg, verifyResponse{OK: false, Error: "wrong_token_type"})
		case errors.Is(err, tokenverify.ErrSubjectMissing):
			h.respondFn(msg, verifyResponse{OK: false, Error: "subject_missing"})
		default:
			h.respondFn(msg, verifyResponse{OK: false, Error: "invalid_token"})
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := h.validator.Validate(ctx, req.Token)
	if err != nil {
		h.respondFn(msg, verifyResponse{OK: false, Error: "no_active_session"})
		return
	}
	h.respondFn(msg, verifyResponse{
		OK:        true,
		UserID:    user.ID,
		ProfileID: user.ProfileID,
		Email:     result.Email,
		Claims:    result.Claims,
	})
}

func respond(msg *nats.Msg, resp verifyResponse) {
	data, _ := json.Marshal(resp)
	_ = msg.Respond(data)
}
