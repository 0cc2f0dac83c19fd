package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	ListFeed(ctx context.Context, viewerID string, authorIDs []string, limit, offset int) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

type ReactionRepository interface {
	Upsert(ctx context.Context, reaction *domain.Reaction) error
	Delete(ctx context.Context, postID, userID string) error
	ListByPost(ctx context.Context, postID string) ([]domain.Reaction, error)
}

type FriendshipRepository interface {
	Create(ctx context.Context, friendship *domain.Friendship) error
	FindPair(ctx context.Context, a, b string) (*domain.Friendship, error)
	Update(ctx context.Context, friendship *domain.Friendship) error
	Delete(ctx context.Context, a, b string) error
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
}

type postRepo struct{ db *gorm.DB }

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListFeed returns the newest posts authored by any of authorIDs that the
// viewer may see. Audience filtering for ONLY_ME happens here; FRIENDS
// visibility is the caller's concern since authorIDs already came from the
// viewer's friend list.
func (r *postRepo) ListFeed(ctx context.Context, viewerID string, authorIDs []string, limit, offset int) ([]domain.Post, error) {
	var posts []domain.Post
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Where("audience <> ? OR author_id = ?", domain.AudienceOnlyMe, viewerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepo) Update(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Comments", "Reactions").Save(post).Error
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Post{}).Error
}

type commentRepo struct{ db *gorm.DB }

func (r *commentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepo) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{}).Error
}

type reactionRepo struct{ db *gorm.DB }

func (r *reactionRepo) Upsert(ctx context.Context, reaction *domain.Reaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "updated_at"}),
		}).
		Create(reaction).Error
}

func (r *reactionRepo) Delete(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&domain.Reaction{}).Error
}

func (r *reactionRepo) ListByPost(ctx context.Context, postID string) ([]domain.Reaction, error) {
	var reactions []domain.Reaction
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Find(&reactions).Error
	return reactions, err
}

type friendshipRepo struct{ db *gorm.DB }

func (r *friendshipRepo) Create(ctx context.Context, friendship *domain.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

// FindPair looks the relationship up in both directions.
func (r *friendshipRepo) FindPair(ctx context.Context, a, b string) (*domain.Friendship, error) {
	var friendship domain.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", a, b, b, a).
		First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (r *friendshipRepo) Update(ctx context.Context, friendship *domain.Friendship) error {
	return r.db.WithContext(ctx).Save(friendship).Error
}

func (r *friendshipRepo) Delete(ctx context.Context, a, b string) error {
	return r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", a, b, b, a).
		Delete(&domain.Friendship{}).Error
}

func (r *friendshipRepo) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var friendships []domain.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, domain.FriendshipAccepted).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		if f.RequesterID == userID {
			ids = append(ids, f.AddresseeID)
		} else {
			ids = append(ids, f.RequesterID)
		}
	}
	return ids, nil
}
