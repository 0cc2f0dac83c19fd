package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	CreateWithEmail(ctx context.Context, user *domain.User, email *domain.Email) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByPrimaryEmail(ctx context.Context, address string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	FindActiveByUser(ctx context.Context, userID string) (*domain.Session, error)
	FindByRefreshHash(ctx context.Context, hash string) (*domain.Session, error)
	ExistsForDevice(ctx context.Context, userID, ip, deviceName string) (bool, error)
	Update(ctx context.Context, session *domain.Session) error
}

type CodeRepository interface {
	Upsert(ctx context.Context, code *domain.Code) error
	Find(ctx context.Context, userID string, typ domain.CodeType) (*domain.Code, error)
	Delete(ctx context.Context, userID string, typ domain.CodeType) error
}

// Store bundles the repositories over one gorm handle. InTx yields a Store
// bound to a transaction; the callback either commits as a unit or rolls
// back entirely.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Codes() CodeRepository
	Posts() PostRepository
	Comments() CommentRepository
	Reactions() ReactionRepository
	Friendships() FriendshipRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

type gormStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) Users() UserRepository             { return &userRepo{db: s.db} }
func (s *gormStore) Sessions() SessionRepository       { return &sessionRepo{db: s.db} }
func (s *gormStore) Codes() CodeRepository             { return &codeRepo{db: s.db} }
func (s *gormStore) Posts() PostRepository             { return &postRepo{db: s.db} }
func (s *gormStore) Comments() CommentRepository       { return &commentRepo{db: s.db} }
func (s *gormStore) Reactions() ReactionRepository     { return &reactionRepo{db: s.db} }
func (s *gormStore) Friendships() FriendshipRepository { return &friendshipRepo{db: s.db} }

func (s *gormStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

type userRepo struct{ db *gorm.DB }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) CreateWithEmail(ctx context.Context, user *domain.User, email *domain.Email) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		email.UserID = user.ID
		return tx.Create(email).Error
	})
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Preload("Emails").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByPrimaryEmail(ctx context.Context, address string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Emails").
		Joins("JOIN emails ON emails.user_id = users.id").
		Where(`emails.address = ? AND emails."primary"`, address).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Omit("Emails", "Sessions", "Codes").Save(user).Error
}

type sessionRepo struct{ db *gorm.DB }

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByUser returns the most recent non-revoked session. Two
// concurrent logins can both hold rows; the newest one wins here.
func (r *sessionRepo) FindActiveByUser(ctx context.Context, userID string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND NOT revoked AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) FindByRefreshHash(ctx context.Context, hash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("refresh_token_hashed = ? AND NOT revoked AND expires_at > ?", hash, time.Now()).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ExistsForDevice(ctx context.Context, userID, ip, deviceName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("user_id = ? AND ip = ? AND device_name = ?", userID, ip, deviceName).
		Count(&count).Error
	return count > 0, err
}

func (r *sessionRepo) Update(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

type codeRepo struct{ db *gorm.DB }

func (r *codeRepo) Upsert(ctx context.Context, code *domain.Code) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			UpdateAll: true,
		}).
		Create(code).Error
}

func (r *codeRepo) Find(ctx context.Context, userID string, typ domain.CodeType) (*domain.Code, error) {
	var code domain.Code
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, typ).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *codeRepo) Delete(ctx context.Context, userID string, typ domain.CodeType) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, typ).
		Delete(&domain.Code{}).Error
}
