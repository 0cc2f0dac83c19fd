package domain

import (
	"time"

	"gorm.io/gorm"
)

type PostAudience string

const (
	AudiencePublic  PostAudience = "PUBLIC"
	AudienceFriends PostAudience = "FRIENDS"
	AudienceOnlyMe  PostAudience = "ONLY_ME"
)

type Post struct {
	ID        string         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID  string         `gorm:"type:uuid;index;not null" json:"author_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	MediaKey  *string        `json:"media_key,omitempty"`
	Audience  PostAudience   `gorm:"type:text;not null;default:'PUBLIC'" json:"audience"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author    User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Comments  []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

func (Post) TableName() string { return "posts" }

type Comment struct {
	ID        string    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;index;not null" json:"post_id"`
	AuthorID  string    `gorm:"type:uuid;index;not null" json:"author_id"`
	ParentID  *string   `gorm:"type:uuid" json:"parent_id,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }

type ReactionKind string

const (
	ReactionLike  ReactionKind = "LIKE"
	ReactionLove  ReactionKind = "LOVE"
	ReactionHaha  ReactionKind = "HAHA"
	ReactionWow   ReactionKind = "WOW"
	ReactionSad   ReactionKind = "SAD"
	ReactionAngry ReactionKind = "ANGRY"
)

// Reaction is one user's reaction to a post. Reacting again with a
// different kind replaces the row in place.
type Reaction struct {
	PostID    string       `gorm:"type:uuid;primaryKey" json:"post_id"`
	UserID    string       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Kind      ReactionKind `gorm:"type:text;not null" json:"kind"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Reaction) TableName() string { return "reactions" }

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipDeclined FriendshipStatus = "DECLINED"
	FriendshipBlocked  FriendshipStatus = "BLOCKED"
)

// Friendship is directional: Requester sent the request, Addressee answers
// it. At most one row exists between two users in either direction.
type Friendship struct {
	RequesterID string           `gorm:"type:uuid;primaryKey" json:"requester_id"`
	AddresseeID string           `gorm:"type:uuid;primaryKey" json:"addressee_id"`
	Status      FriendshipStatus `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Friendship) TableName() string { return "friendships" }
