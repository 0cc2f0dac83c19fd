package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	repo "github.com/xirothedev/facebook-clone-backend/internal/adapters/postgres"
	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	pkglog "github.com/xirothedev/facebook-clone-backend/pkg/log"
)

type CreatePostInput struct {
	Content  string
	MediaKey *string
	Audience domain.PostAudience
}

type PresignedUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type SocialService interface {
	CreatePost(ctx context.Context, traceID, authorID string, in CreatePostInput) (*domain.Post, error)
	GetPost(ctx context.Context, traceID, viewerID, postID string) (*domain.Post, error)
	ListFeed(ctx context.Context, traceID, viewerID string, limit, offset int) ([]domain.Post, error)
	UpdatePost(ctx context.Context, traceID, authorID, postID string, in CreatePostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, traceID, authorID, postID string) error

	AddComment(ctx context.Context, traceID, authorID, postID, content string, parentID *string) (*domain.Comment, error)
	ListComments(ctx context.Context, traceID, viewerID, postID string, limit, offset int) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, traceID, requesterID, commentID string) error

	React(ctx context.Context, traceID, userID, postID string, kind domain.ReactionKind) error
	Unreact(ctx context.Context, traceID, userID, postID string) error

	SendFriendRequest(ctx context.Context, traceID, requesterID, addresseeID string) (*domain.Friendship, error)
	RespondFriendRequest(ctx context.Context, traceID, addresseeID, requesterID string, accept bool) (*domain.Friendship, error)
	Unfriend(ctx context.Context, traceID, userID, otherID string) error
	BlockUser(ctx context.Context, traceID, userID, otherID string) (*domain.Friendship, error)

	PresignUpload(ctx context.Context, traceID, userID string) (*PresignedUpload, error)
	PresignDownload(ctx context.Context, traceID, key string) (string, error)
}

type socialService struct {
	logger  pkglog.Logger
	store   repo.Store
	storage MediaStorage
	events  EventPublisher
	nowFn   func() time.Time
}

func NewSocialService(logger pkglog.Logger, store repo.Store, storage MediaStorage, events EventPublisher) SocialService {
	return &socialService{logger: logger, store: store, storage: storage, events: events, nowFn: time.Now}
}

func (s *socialService) CreatePost(ctx context.Context, traceID, authorID string, in CreatePostInput) (*domain.Post, error) {
	if strings.TrimSpace(in.Content) == "" && in.MediaKey == nil {
		return nil, fmt.Errorf("%w: post needs content or media", ErrInvalidInput)
	}
	audience := in.Audience
	if audience == "" {
		audience = domain.AudiencePublic
	}
	post := &domain.Post{
		AuthorID: authorID,
		Content:  in.Content,
		MediaKey: in.MediaKey,
		Audience: audience,
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	if s.events != nil {
		_ = s.events.PostCreated(ctx, post.ID, authorID)
	}
	s.logger.Info().Str("trace_id", traceID).Str("post_id", post.ID).Msg("post created")
	return post, nil
}

func (s *socialService) GetPost(ctx context.Context, traceID, viewerID, postID string) (*domain.Post, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.checkVisibility(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *socialService) ListFeed(ctx context.Context, traceID, viewerID string, limit, offset int) ([]domain.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	friendIDs, err := s.store.Friendships().ListFriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors := append(friendIDs, viewerID)
	return s.store.Posts().ListFeed(ctx, viewerID, authors, limit, offset)
}

func (s *socialService) UpdatePost(ctx context.Context, traceID, authorID, postID string, in CreatePostInput) (*domain.Post, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, ErrForbidden
	}
	if in.Content != "" {
		post.Content = in.Content
	}
	if in.MediaKey != nil {
		post.MediaKey = in.MediaKey
	}
	if in.Audience != "" {
		post.Audience = in.Audience
	}
	if err := s.store.Posts().Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *socialService) DeletePost(ctx context.Context, traceID, authorID, postID string) error {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if post.AuthorID != authorID {
		return ErrForbidden
	}
	if err := s.store.Posts().Delete(ctx, postID); err != nil {
		return err
	}
	s.logger.Info().Str("trace_id", traceID).Str("post_id", postID).Msg("post deleted")
	return nil
}

func (s *socialService) AddComment(ctx context.Context, traceID, authorID, postID, content string, parentID *string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrInvalidInput)
	}
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.checkVisibility(ctx, authorID, post); err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.store.Comments().FindByID(ctx, *parentID)
		if err != nil || parent.PostID != postID {
			return nil, ErrNotFound
		}
	}
	comment := &domain.Comment{
		PostID:   postID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *socialService) ListComments(ctx context.Context, traceID, viewerID, postID string, limit, offset int) ([]domain.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.checkVisibility(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByPost(ctx, postID, limit, offset)
}

// DeleteComment allows the comment author or the owner of the post the
// comment hangs on.
func (s *socialService) DeleteComment(ctx context.Context, traceID, requesterID, commentID string) error {
	comment, err := s.store.Comments().FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comment.AuthorID != requesterID {
		post, err := s.store.Posts().FindByID(ctx, comment.PostID)
		if err != nil || post.AuthorID != requesterID {
			return ErrForbidden
		}
	}
	return s.store.Comments().Delete(ctx, commentID)
}

func (s *socialService) React(ctx context.Context, traceID, userID, postID string, kind domain.ReactionKind) error {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.checkVisibility(ctx, userID, post); err != nil {
		return err
	}
	return s.store.Reactions().Upsert(ctx, &domain.Reaction{
		PostID: postID,
		UserID: userID,
		Kind:   kind,
	})
}

func (s *socialService) Unreact(ctx context.Context, traceID, userID, postID string) error {
	return s.store.Reactions().Delete(ctx, postID, userID)
}

// SendFriendRequest fails with Conflict when any relationship row already
// exists between the two users, in either direction.
func (s *socialService) SendFriendRequest(ctx context.Context, traceID, requesterID, addresseeID string) (*domain.Friendship, error) {
	if requesterID == addresseeID {
		return nil, ErrConflict
	}
	if _, err := s.store.Users().FindByID(ctx, addresseeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.store.Friendships().FindPair(ctx, requesterID, addresseeID); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	friendship := &domain.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      domain.FriendshipPending,
	}
	if err := s.store.Friendships().Create(ctx, friendship); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("requester", requesterID).Str("addressee", addresseeID).Msg("friend request sent")
	return friendship, nil
}

// RespondFriendRequest is addressee-only.
func (s *socialService) RespondFriendRequest(ctx context.Context, traceID, addresseeID, requesterID string, accept bool) (*domain.Friendship, error) {
	friendship, err := s.store.Friendships().FindPair(ctx, requesterID, addresseeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if friendship.AddresseeID != addresseeID || friendship.Status != domain.FriendshipPending {
		return nil, ErrForbidden
	}
	if accept {
		friendship.Status = domain.FriendshipAccepted
	} else {
		friendship.Status = domain.FriendshipDeclined
	}
	if err := s.store.Friendships().Update(ctx, friendship); err != nil {
		return nil, err
	}
	return friendship, nil
}

// Unfriend removes the relationship row. A block can only be lifted by
// the user who placed it.
func (s *socialService) Unfriend(ctx context.Context, traceID, userID, otherID string) error {
	friendship, err := s.store.Friendships().FindPair(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if friendship.Status == domain.FriendshipBlocked && friendship.RequesterID != userID {
		return ErrForbidden
	}
	return s.store.Friendships().Delete(ctx, userID, otherID)
}

// BlockUser replaces whatever relationship exists with a BLOCKED row owned
// by the blocker. Blocking overrides pending requests and friendships.
func (s *socialService) BlockUser(ctx context.Context, traceID, userID, otherID string) (*domain.Friendship, error) {
	if userID == otherID {
		return nil, ErrConflict
	}
	if _, err := s.store.Users().FindByID(ctx, otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	existing, err := s.store.Friendships().FindPair(ctx, userID, otherID)
	if err == nil && existing.Status == domain.FriendshipBlocked && existing.RequesterID != userID {
		return nil, ErrForbidden
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	friendship := &domain.Friendship{
		RequesterID: userID,
		AddresseeID: otherID,
		Status:      domain.FriendshipBlocked,
	}
	err = s.store.InTx(ctx, func(tx repo.Store) error {
		if err := tx.Friendships().Delete(ctx, userID, otherID); err != nil {
			return err
		}
		return tx.Friendships().Create(ctx, friendship)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("blocker", userID).Str("blocked", otherID).Msg("user blocked")
	return friendship, nil
}

func (s *socialService) PresignUpload(ctx context.Context, traceID, userID string) (*PresignedUpload, error) {
	key := storageKey()
	url, err := s.storage.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", userID).Str("key", key).Msg("upload presigned")
	return &PresignedUpload{Key: key, URL: url}, nil
}

func (s *socialService) PresignDownload(ctx context.Context, traceID, key string) (string, error) {
	return s.storage.PresignGet(ctx, key)
}

// checkVisibility enforces post audience: FRIENDS needs an accepted
// relation, ONLY_ME is author-only.
func (s *socialService) checkVisibility(ctx context.Context, viewerID string, post *domain.Post) error {
	if post.AuthorID == viewerID || post.Audience == domain.AudiencePublic {
		return nil
	}
	if post.Audience == domain.AudienceOnlyMe {
		return ErrForbidden
	}
	friendship, err := s.store.Friendships().FindPair(ctx, viewerID, post.AuthorID)
	if err != nil || friendship.Status != domain.FriendshipAccepted {
		return ErrForbidden
	}
	return nil
}

func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.NewString())
}
