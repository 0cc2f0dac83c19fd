package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xirothedev/facebook-clone-backend/config"
	repo "github.com/xirothedev/facebook-clone-backend/internal/adapters/postgres"
	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/password"
	"github.com/xirothedev/facebook-clone-backend/internal/tokenverify"
	pkglog "github.com/xirothedev/facebook-clone-backend/pkg/log"
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Birthday    *time.Time
	Gender      string
}

type LoginResult struct {
	User    domain.User
	Tokens  *Tokens
	Session *domain.Session
}

type Service interface {
	Register(ctx context.Context, traceID string, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, traceID, email, pass, ip, userAgent string) (*LoginResult, error)
	Logout(ctx context.Context, traceID, sessionID string) error
	Refresh(ctx context.Context, traceID, refreshToken string) (*Tokens, error)
	ChangePassword(ctx context.Context, traceID, userID, oldPassword, newPassword string) (*domain.User, error)
	RecoveryAccount(ctx context.Context, traceID, email string) error
	ConfirmRecoveryAccount(ctx context.Context, traceID, email, code, newPassword string) error
	ForgotPassword(ctx context.Context, traceID, email string) error
	VerifyTokenForgotPassword(ctx context.Context, traceID, userID, token, newPassword, email string) error
	GetMe(ctx context.Context, traceID, userID string) (*domain.User, error)
}

type authService struct {
	cfg      *config.Config
	logger   pkglog.Logger
	store    repo.Store
	hasher   *password.Hasher
	issuer   *TokenIssuer
	signer   JWTSigner
	notifier Notifier
	events   EventPublisher
	nowFn    func() time.Time
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, store repo.Store, hasher *password.Hasher, issuer *TokenIssuer, signer JWTSigner, notifier Notifier, events EventPublisher) Service {
	return &authService{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		signer:   signer,
		notifier: notifier,
		events:   events,
		nowFn:    time.Now,
	}
}

// Register creates the account with the given address as primary email.
// The returned user still carries the password hash; the HTTP layer
// redacts it before transmission.
func (s *authService) Register(ctx context.Context, traceID string, in RegisterInput) (*domain.User, error) {
	norm := normalizeEmail(in.Email)
	if err := validateEmail(norm); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().FindByPrimaryEmail(ctx, norm); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ProfileID:      generateProfileID(in.DisplayName),
		DisplayName:    in.DisplayName,
		PasswordHashed: hash,
		Birthday:       in.Birthday,
		Gender:         in.Gender,
		Status:         domain.UserStatusActive,
	}
	email := &domain.Email{Address: norm, Primary: true}
	if err := s.store.Users().CreateWithEmail(ctx, user, email); err != nil {
		return nil, err
	}
	user.Emails = []domain.Email{*email}

	if s.events != nil {
		_ = s.events.UserRegistered(ctx, user.ID, norm)
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials, flags previously-unseen devices by email,
// then creates a fresh session and mints a token pair. A wrong password
// never creates a session.
func (s *authService) Login(ctx context.Context, traceID, email, pass, ip, userAgent string) (*LoginResult, error) {
	norm := normalizeEmail(email)
	user, err := s.store.Users().FindByPrimaryEmail(ctx, norm)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(pass, user.PasswordHashed)
	if err != nil || !ok {
		return nil, ErrUnauthorized
	}

	deviceName := DeviceFingerprint(userAgent)
	known, err := s.store.Sessions().ExistsForDevice(ctx, user.ID, ip, deviceName)
	if err == nil && !known {
		if mailErr := s.notifier.SendDetectOtherDevice(norm, ip, userAgent, deviceName); mailErr != nil {
			s.logger.Warn().Str("trace_id", traceID).Err(mailErr).Msg("new device mail failed")
		}
	}

	tokens, err := s.issuer.GenerateTokens(user.ID, norm)
	if err != nil {
		return nil, err
	}
	session, err := s.issuer.StoreRefreshToken(ctx, user.ID, tokens.RefreshToken, "", SessionMetadata{
		DeviceName: deviceName,
		UserAgent:  userAgent,
		IP:         ip,
	})
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	user.LastLoginAt = &now
	if err := s.store.Users().Update(ctx, user); err != nil {
		s.logger.Warn().Str("trace_id", traceID).Err(err).Msg("last login update failed")
	}

	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Str("device", deviceName).Msg("login")
	return &LoginResult{User: user.Redacted(), Tokens: tokens, Session: session}, nil
}

// Logout revokes the session and clears its stored refresh-token hash.
// Revocation is terminal; calling it again on the same session is a no-op
// that still succeeds.
func (s *authService) Logout(ctx context.Context, traceID, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrNotFound
	}
	session, err := s.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.Revoked {
		return nil
	}
	session.Revoked = true
	session.RefreshTokenHashed = nil
	if err := s.store.Sessions().Update(ctx, session); err != nil {
		return err
	}
	s.logger.Info().Str("trace_id", traceID).Str("session_id", sessionID).Msg("logout")
	return nil
}

// Refresh exchanges a live refresh token for a fresh pair, rotating the
// hash stored on the session row.
func (s *authService) Refresh(ctx context.Context, traceID, refreshToken string) (*Tokens, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrUnauthorized
	}
	tok, claims, err := s.signer.Parse(refreshToken)
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrUnauthorized
	}
	if typ, _ := claims["typ"].(string); typ != tokenverify.TokenTypeRefresh {
		return nil, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.store.Sessions().FindByRefreshHash(ctx, HashToken(refreshToken))
	if err != nil || session.UserID != sub {
		return nil, ErrUnauthorized
	}

	user, err := s.store.Users().FindByID(ctx, sub)
	if err != nil {
		return nil, ErrUnauthorized
	}

	tokens, err := s.issuer.GenerateTokens(user.ID, user.PrimaryEmail())
	if err != nil {
		return nil, err
	}
	if _, err := s.issuer.StoreRefreshToken(ctx, user.ID, tokens.RefreshToken, session.ID, SessionMetadata{
		DeviceName: session.DeviceName,
		UserAgent:  session.UserAgent,
		IP:         session.IP,
	}); err != nil {
		return nil, err
	}
	return tokens, nil
}

// ChangePassword swaps the hash after verifying the old password and
// notifies the account owner. The mail failing does not undo the change.
func (s *authService) ChangePassword(ctx context.Context, traceID, userID, oldPassword, newPassword string) (*domain.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHashed)
	if err != nil || !ok {
		return nil, ErrUnauthorized
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHashed = hash
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	if mailErr := s.notifier.SendNotificationResetPassword(user.PrimaryEmail()); mailErr != nil {
		s.logger.Warn().Str("trace_id", traceID).Err(mailErr).Msg("password change mail failed")
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", userID).Msg("password changed")

	redacted := user.Redacted()
	return &redacted, nil
}

// RecoveryAccount issues a RECOVERY one-time code with a 5-minute window
// and mails it. A new request overwrites whatever code was live before.
func (s *authService) RecoveryAccount(ctx context.Context, traceID, email string) error {
	return s.startCodeFlow(ctx, traceID, email, domain.CodeTypeRecovery)
}

// ForgotPassword mirrors RecoveryAccount on the VERIFICATION purpose.
func (s *authService) ForgotPassword(ctx context.Context, traceID, email string) error {
	return s.startCodeFlow(ctx, traceID, email, domain.CodeTypeVerification)
}

func (s *authService) startCodeFlow(ctx context.Context, traceID, email string, typ domain.CodeType) error {
	norm := normalizeEmail(email)
	user, err := s.store.Users().FindByPrimaryEmail(ctx, norm)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	code, err := s.issuer.GenerateCode()
	if err != nil {
		return err
	}
	now := s.nowFn()
	if err := s.store.Codes().Upsert(ctx, &domain.Code{
		UserID:    user.ID,
		Type:      typ,
		Tokens:    []string{code},
		ExpiresAt: now.Add(s.cfg.CodeTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if mailErr := s.notifier.SendResetPasswordAccount(norm, code); mailErr != nil {
		s.logger.Warn().Str("trace_id", traceID).Err(mailErr).Msg("recovery code mail failed")
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Str("type", string(typ)).Msg("one-time code issued")
	return nil
}

// ConfirmRecoveryAccount consumes a RECOVERY code and sets the new
// password. Repeated confirmations inside the retry window are rejected
// with Conflict before any expiry check runs. On success the row deleted
// is the VERIFICATION-type one, not the RECOVERY row that was matched;
// the RECOVERY row stays live until its expiry.
func (s *authService) ConfirmRecoveryAccount(ctx context.Context, traceID, email, code, newPassword string) error {
	norm := normalizeEmail(email)
	user, err := s.store.Users().FindByPrimaryEmail(ctx, norm)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	now := s.nowFn()

	// Rate limit first: a completed recovery marker younger than the
	// retry window blocks another attempt regardless of code validity.
	if marker, err := s.store.Codes().Find(ctx, user.ID, domain.CodeTypeReactive); err == nil {
		if now.Sub(marker.CreatedAt) < s.cfg.CodeRetryWindow {
			return ErrConflict
		}
	}

	recovery, err := s.store.Codes().Find(ctx, user.ID, domain.CodeTypeRecovery)
	if err != nil || !recovery.Matches(code, now) {
		return ErrUnauthorized
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	err = s.store.InTx(ctx, func(tx repo.Store) error {
		user.PasswordHashed = hash
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		if err := tx.Codes().Delete(ctx, user.ID, domain.CodeTypeVerification); err != nil {
			return err
		}
		return tx.Codes().Upsert(ctx, &domain.Code{
			UserID:    user.ID,
			Type:      domain.CodeTypeReactive,
			Tokens:    []string{},
			ExpiresAt: now.Add(s.cfg.CodeRetryWindow),
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}

	if mailErr := s.notifier.SendNotificationResetPassword(norm); mailErr != nil {
		s.logger.Warn().Str("trace_id", traceID).Err(mailErr).Msg("recovery confirmation mail failed")
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Msg("account recovered")
	return nil
}

// VerifyTokenForgotPassword consumes a VERIFICATION code. No active code
// is NotFound; a live code set that does not contain the token is
// Forbidden.
func (s *authService) VerifyTokenForgotPassword(ctx context.Context, traceID, userID, token, newPassword, email string) error {
	code, err := s.store.Codes().Find(ctx, userID, domain.CodeTypeVerification)
	if err != nil || s.nowFn().After(code.ExpiresAt) {
		return ErrNotFound
	}
	if !code.Matches(token, s.nowFn()) {
		return ErrForbidden
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	err = s.store.InTx(ctx, func(tx repo.Store) error {
		user.PasswordHashed = hash
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return tx.Codes().Delete(ctx, userID, domain.CodeTypeVerification)
	})
	if err != nil {
		return err
	}

	if mailErr := s.notifier.SendNotificationResetPassword(normalizeEmail(email)); mailErr != nil {
		s.logger.Warn().Str("trace_id", traceID).Err(mailErr).Msg("reset confirmation mail failed")
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", userID).Msg("forgot password completed")
	return nil
}

func (s *authService) GetMe(ctx context.Context, traceID, userID string) (*domain.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	redacted := user.Redacted()
	return &redacted, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func validateEmail(email string) error {
	if !strings.Contains(email, "@") || len(email) > 255 {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	return nil
}

func validatePassword(pass string) error {
	if len(pass) < 8 {
		return fmt.Errorf("%w: password under 8 characters", ErrInvalidInput)
	}
	return nil
}

// generateProfileID turns the display name into a public handle with a
// numeric suffix, e.g. "jane.doe.4821937560".
func generateProfileID(displayName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(displayName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), ".") {
				b.WriteByte('.')
			}
		}
	}
	slug := strings.Trim(b.String(), ".")
	if slug == "" {
		slug = "user"
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10_000_000_000))
	if err != nil {
		n = big.NewInt(0)
	}
	return fmt.Sprintf("%s.%010d", slug, n.Int64())
}
