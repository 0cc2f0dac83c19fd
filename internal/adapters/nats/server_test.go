package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nats "github.com/nats-io/nats.go"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/tokenverify"
)

var testKey = []byte("test-secret")

type testParser struct{}

func (testParser) Parse(token string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.NewParser().ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return testKey, nil
	})
	return tok, claims, err
}

type stubValidator struct {
	user *domain.User
}

func (v *stubValidator) Validate(_ context.Context, _ string) (*domain.User, error) {
	if v.user == nil {
		return nil, errors.New("unauthorized")
	}
	return v.user, nil
}

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func handleRequest(t *testing.T, validator SessionValidator, payload []byte) verifyResponse {
	t.Helper()
	h := NewVerifyHandler(testParser{}, validator)
	var got *verifyResponse
	h.respondFn = func(_ *nats.Msg, resp verifyResponse) { got = &resp }
	h.handle(&nats.Msg{Data: payload})
	if got == nil {
		t.Fatalf("handler did not respond")
	}
	return *got
}

func accessToken(t *testing.T) string {
	return signTestToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@x.com",
		"typ":   tokenverify.TokenTypeAccess,
		"role":  "member",
		"exp":   time.Now().Add(time.Minute).Unix(),
	})
}

func TestHandleValidToken(t *testing.T) {
	payload, _ := json.Marshal(verifyRequest{Token: accessToken(t)})
	validator := &stubValidator{user: &domain.User{ID: "user-1", ProfileID: "jane.doe.1"}}

	resp := handleRequest(t, validator, payload)
	if !resp.OK {
		t.Fatalf("expected OK, got %+v", resp)
	}
	if resp.UserID != "user-1" || resp.Email != "a@x.com" || resp.ProfileID != "jane.doe.1" {
		t.Fatalf("unexpected identity %+v", resp)
	}
	if resp.Claims["role"] != "member" {
		t.Fatalf("custom claim missing: %+v", resp.Claims)
	}
}

// A signed, unexpired token must still fail when the user has no live
// session left: sibling services get the same answer the HTTP gate gives.
func TestHandleRevokedSession(t *testing.T) {
	payload, _ := json.Marshal(verifyRequest{Token: accessToken(t)})

	resp := handleRequest(t, &stubValidator{}, payload)
	if resp.OK {
		t.Fatalf("revoked user must not verify, got %+v", resp)
	}
	if resp.Error != "no_active_session" {
		t.Fatalf("expected no_active_session, got %q", resp.Error)
	}
}

func TestHandleErrorMapping(t *testing.T) {
	expired := signTestToken(t, jwt.MapClaims{
		"sub": "user-1",
		"typ": tokenverify.TokenTypeAccess,
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	noSubject := signTestToken(t, jwt.MapClaims{
		"typ": tokenverify.TokenTypeAccess,
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	refresh := signTestToken(t, jwt.MapClaims{
		"sub": "user-1",
		"typ": tokenverify.TokenTypeRefresh,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := []struct {
		name    string
		payload []byte
		want    string
	}{
		{"invalid json", []byte("{"), "invalid_payload"},
		{"garbage token", mustMarshal(t, verifyRequest{Token: "garbage"}), "invalid_token"},
		{"expired", mustMarshal(t, verifyRequest{Token: expired}), "invalid_token"},
		{"refresh token", mustMarshal(t, verifyRequest{Token: refresh}), "wrong_token_type"},
		{"missing subject", mustMarshal(t, verifyRequest{Token: noSubject}), "subject_missing"},
	}
	validator := &stubValidator{user: &domain.User{ID: "user-1"}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := handleRequest(t, validator, tc.payload)
			if resp.OK {
				t.Fatalf("expected failure, got %+v", resp)
			}
			if resp.Error != tc.want {
				t.Fatalf("expected error %q, got %q", tc.want, resp.Error)
			}
		})
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
