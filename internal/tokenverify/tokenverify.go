package tokenverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "typ" claim. Access tokens open protected
// routes; refresh tokens are only good for the refresh exchange and must
// never pass an access gate.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrTokenExpired   = errors.New("token_expired")
	ErrSubjectMissing = errors.New("subject_missing")
	ErrNotAccessToken = errors.New("not_access_token")
)

type Parser interface {
	Parse(token string) (*jwt.Token, jwt.MapClaims, error)
}

// Result is the identity an access token proves: the subject, the email
// it was minted for, and any remaining custom claims (the structural
// sub/email/typ claims are stripped from the map).
type Result struct {
	UserID string
	Email  string
	Claims map[string]any
}

// Verify parses and validates an access token. Refresh tokens are
// rejected with ErrNotAccessToken even when their signature and expiry
// check out.
func Verify(parser Parser, token string, nowFn func() time.Time) (*Result, error) {
	if parser == nil {
		return nil, ErrInvalidToken
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	tok, claims, err := parser.Parse(token)
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil || nowFn().After(exp.Time) {
		return nil, ErrTokenExpired
	}
	if typ, _ := claims["typ"].(string); typ != TokenTypeAccess {
		return nil, ErrNotAccessToken
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, ErrSubjectMissing
	}
	filtered := map[string]any{}
	for k, v := range claims {
		if k == "sub" || k == "email" || k == "typ" {
			continue
		}
		filtered[k] = v
	}
	return &Result{UserID: sub, Email: email, Claims: filtered}, nil
}
