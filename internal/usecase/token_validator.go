package usecase

import (
	"context"
	"time"

	repo "github.com/xirothedev/facebook-clone-backend/internal/adapters/postgres"
	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/tokenverify"
)

// TokenValidator is the gate behind protected routes: a token only passes
// when its signature and expiry check out, its user still exists, and the
// user has at least one non-revoked session.
type TokenValidator struct {
	signer JWTSigner
	store  repo.Store
	nowFn  func() time.Time
}

func NewTokenValidator(signer JWTSigner, store repo.Store) *TokenValidator {
	return &TokenValidator{signer: signer, store: store, nowFn: time.Now}
}

// Validate returns the user behind accessToken. Every failure mode,
// including unexpected store errors, collapses into ErrUnauthorized so
// the credential-check path leaks no internal detail.
func (v *TokenValidator) Validate(ctx context.Context, accessToken string) (*domain.User, error) {
	result, err := tokenverify.Verify(v.signer, accessToken, v.nowFn)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := v.store.Users().FindByID(ctx, result.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if _, err := v.store.Sessions().FindActiveByUser(ctx, user.ID); err != nil {
		return nil, ErrUnauthorized
	}

	return user, nil
}
