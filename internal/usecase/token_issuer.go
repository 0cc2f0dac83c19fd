package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/xirothedev/facebook-clone-backend/config"
	repo "github.com/xirothedev/facebook-clone-backend/internal/adapters/postgres"
	"github.com/xirothedev/facebook-clone-backend/internal/domain"
)

// SessionMetadata is what a login knows about the device it came from.
type SessionMetadata struct {
	DeviceName string
	UserAgent  string
	IP         string
}

// TokenIssuer mints the access/refresh pair and owns the session rows the
// refresh side is persisted in.
type TokenIssuer struct {
	cfg      *config.Config
	signer   JWTSigner
	sessions repo.SessionRepository
	nowFn    func() time.Time
}

func NewTokenIssuer(cfg *config.Config, signer JWTSigner, sessions repo.SessionRepository) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, signer: signer, sessions: sessions, nowFn: time.Now}
}

// GenerateTokens signs a short-lived access token and a longer-lived
// refresh token for the given identity. Nothing is persisted here; the
// raw refresh token goes through StoreRefreshToken.
func (i *TokenIssuer) GenerateTokens(userID, email string) (*Tokens, error) {
	access, err := i.signer.SignAccessToken(userID, map[string]interface{}{"email": email}, i.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.signer.SignRefreshToken(userID, uuid.NewString(), i.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(i.cfg.AccessTTL.Seconds()),
	}, nil
}

// StoreRefreshToken hashes the raw refresh token and persists it on a
// session row; the raw token is never stored. When existingSessionID is
// non-empty that row is reused in place with refreshed device metadata,
// otherwise a new session is created.
func (i *TokenIssuer) StoreRefreshToken(ctx context.Context, userID, rawRefreshToken, existingSessionID string, meta SessionMetadata) (*domain.Session, error) {
	now := i.nowFn()
	hashed := HashToken(rawRefreshToken)

	if existingSessionID != "" {
		session, err := i.sessions.FindByID(ctx, existingSessionID)
		if err == nil && session.UserID == userID {
			session.Revoked = false
			session.RefreshTokenHashed = &hashed
			session.DeviceName = meta.DeviceName
			session.UserAgent = meta.UserAgent
			session.IP = meta.IP
			session.LastLoginAt = &now
			session.ExpiresAt = now.Add(i.cfg.SessionTTL)
			if err := i.sessions.Update(ctx, session); err != nil {
				return nil, err
			}
			return session, nil
		}
		// fall through: stale cookie pointing at a foreign or missing row
	}

	session := &domain.Session{
		ID:                 uuid.NewString(),
		UserID:             userID,
		RefreshTokenHashed: &hashed,
		DeviceName:         meta.DeviceName,
		UserAgent:          meta.UserAgent,
		IP:                 meta.IP,
		LastLoginAt:        &now,
		ExpiresAt:          now.Add(i.cfg.SessionTTL),
	}
	if err := i.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GenerateCode produces the 6-digit numeric one-time code sent over the
// email channel. It is not tied to any session.
func (i *TokenIssuer) GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashToken is the single hashing primitive for refresh tokens at rest.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
