package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	repo "github.com/xirothedev/facebook-clone-backend/internal/adapters/postgres"
	"github.com/xirothedev/facebook-clone-backend/internal/domain"
)

type mockUserRepo struct {
	users      map[string]*domain.User
	next       int
	failUpdate bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}}
}

func (r *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		r.next++
		user.ID = fmt.Sprintf("user-%d", r.next)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *mockUserRepo) CreateWithEmail(ctx context.Context, user *domain.User, email *domain.Email) error {
	if err := r.Create(ctx, user); err != nil {
		return err
	}
	email.UserID = user.ID
	stored := r.users[user.ID]
	stored.Emails = append(stored.Emails, *email)
	return nil
}

func (r *mockUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByPrimaryEmail(_ context.Context, address string) (*domain.User, error) {
	for _, u := range r.users {
		for _, e := range u.Emails {
			if e.Primary && e.Address == address {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	if r.failUpdate {
		return fmt.Errorf("db down")
	}
	if stored, ok := r.users[user.ID]; ok {
		emails := stored.Emails
		cp := *user
		cp.Emails = emails
		r.users[user.ID] = &cp
	}
	return nil
}

type mockSessionRepo struct {
	sessions map[string]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *mockSessionRepo) Create(_ context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *mockSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSessionRepo) FindActiveByUser(_ context.Context, userID string) (*domain.Session, error) {
	var candidates []*domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Revoked && s.ExpiresAt.After(time.Now()) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	cp := *candidates[0]
	return &cp, nil
}

func (r *mockSessionRepo) FindByRefreshHash(_ context.Context, hash string) (*domain.Session, error) {
	for _, s := range r.sessions {
		if s.RefreshTokenHashed != nil && *s.RefreshTokenHashed == hash && !s.Revoked && s.ExpiresAt.After(time.Now()) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSessionRepo) ExistsForDevice(_ context.Context, userID, ip, deviceName string) (bool, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && s.IP == ip && s.DeviceName == deviceName {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockSessionRepo) Update(_ context.Context, session *domain.Session) error {
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

type mockCodeRepo struct {
	codes map[string]*domain.Code
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{codes: map[string]*domain.Code{}}
}

func codeKey(userID string, typ domain.CodeType) string {
	return userID + "/" + string(typ)
}

func (r *mockCodeRepo) Upsert(_ context.Context, code *domain.Code) error {
	cp := *code
	r.codes[codeKey(code.UserID, code.Type)] = &cp
	return nil
}

func (r *mockCodeRepo) Find(_ context.Context, userID string, typ domain.CodeType) (*domain.Code, error) {
	if c, ok := r.codes[codeKey(userID, typ)]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCodeRepo) Delete(_ context.Context, userID string, typ domain.CodeType) error {
	delete(r.codes, codeKey(userID, typ))
	return nil
}

type mockPostRepo struct {
	posts map[string]*domain.Post
	next  int
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: map[string]*domain.Post{}}
}

func (r *mockPostRepo) Create(_ context.Context, post *domain.Post) error {
	if post.ID == "" {
		r.next++
		post.ID = fmt.Sprintf("post-%d", r.next)
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *mockPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPostRepo) ListFeed(_ context.Context, viewerID string, authorIDs []string, limit, offset int) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range r.posts {
		for _, a := range authorIDs {
			if p.AuthorID == a && (p.Audience != domain.AudienceOnlyMe || p.AuthorID == viewerID) {
				out = append(out, *p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *mockPostRepo) Update(_ context.Context, post *domain.Post) error {
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *mockPostRepo) Delete(_ context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

type mockCommentRepo struct {
	comments map[string]*domain.Comment
	next     int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: map[string]*domain.Comment{}}
}

func (r *mockCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		r.next++
		comment.ID = fmt.Sprintf("comment-%d", r.next)
	}
	cp := *comment
	r.comments[comment.ID] = &cp
	return nil
}

func (r *mockCommentRepo) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	if c, ok := r.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCommentRepo) ListByPost(_ context.Context, postID string, limit, offset int) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *mockCommentRepo) Delete(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

type mockReactionRepo struct {
	reactions map[string]*domain.Reaction
}

func newMockReactionRepo() *mockReactionRepo {
	return &mockReactionRepo{reactions: map[string]*domain.Reaction{}}
}

func (r *mockReactionRepo) Upsert(_ context.Context, reaction *domain.Reaction) error {
	cp := *reaction
	r.reactions[reaction.PostID+"/"+reaction.UserID] = &cp
	return nil
}

func (r *mockReactionRepo) Delete(_ context.Context, postID, userID string) error {
	delete(r.reactions, postID+"/"+userID)
	return nil
}

func (r *mockReactionRepo) ListByPost(_ context.Context, postID string) ([]domain.Reaction, error) {
	var out []domain.Reaction
	for _, re := range r.reactions {
		if re.PostID == postID {
			out = append(out, *re)
		}
	}
	return out, nil
}

type mockFriendshipRepo struct {
	friendships map[string]*domain.Friendship
}

func newMockFriendshipRepo() *mockFriendshipRepo {
	return &mockFriendshipRepo{friendships: map[string]*domain.Friendship{}}
}

func pairKey(a, b string) string {
	if a < b {
		return a + "/" + b
	}
	return b + "/" + a
}

func (r *mockFriendshipRepo) Create(_ context.Context, f *domain.Friendship) error {
	cp := *f
	r.friendships[pairKey(f.RequesterID, f.AddresseeID)] = &cp
	return nil
}

func (r *mockFriendshipRepo) FindPair(_ context.Context, a, b string) (*domain.Friendship, error) {
	if f, ok := r.friendships[pairKey(a, b)]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockFriendshipRepo) Update(_ context.Context, f *domain.Friendship) error {
	cp := *f
	r.friendships[pairKey(f.RequesterID, f.AddresseeID)] = &cp
	return nil
}

func (r *mockFriendshipRepo) Delete(_ context.Context, a, b string) error {
	delete(r.friendships, pairKey(a, b))
	return nil
}

func (r *mockFriendshipRepo) ListFriendIDs(_ context.Context, userID string) ([]string, error) {
	var out []string
	for _, f := range r.friendships {
		if f.Status != domain.FriendshipAccepted {
			continue
		}
		if f.RequesterID == userID {
			out = append(out, f.AddresseeID)
		} else if f.AddresseeID == userID {
			out = append(out, f.RequesterID)
		}
	}
	return out, nil
}

type mockStore struct {
	users       *mockUserRepo
	sessions    *mockSessionRepo
	codes       *mockCodeRepo
	posts       *mockPostRepo
	comments    *mockCommentRepo
	reactions   *mockReactionRepo
	friendships *mockFriendshipRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       newMockUserRepo(),
		sessions:    newMockSessionRepo(),
		codes:       newMockCodeRepo(),
		posts:       newMockPostRepo(),
		comments:    newMockCommentRepo(),
		reactions:   newMockReactionRepo(),
		friendships: newMockFriendshipRepo(),
	}
}

func (s *mockStore) Users() repo.UserRepository             { return s.users }
func (s *mockStore) Sessions() repo.SessionRepository       { return s.sessions }
func (s *mockStore) Codes() repo.CodeRepository             { return s.codes }
func (s *mockStore) Posts() repo.PostRepository             { return s.posts }
func (s *mockStore) Comments() repo.CommentRepository       { return s.comments }
func (s *mockStore) Reactions() repo.ReactionRepository     { return s.reactions }
func (s *mockStore) Friendships() repo.FriendshipRepository { return s.friendships }

func (s *mockStore) InTx(_ context.Context, fn func(repo.Store) error) error {
	return fn(s)
}

type mockNotifier struct {
	resetCodes   []string
	resetNotices []string
	deviceAlerts []string
	failSends    bool
}

func (n *mockNotifier) SendResetPasswordAccount(email, code string) error {
	if n.failSends {
		return fmt.Errorf("smtp down")
	}
	n.resetCodes = append(n.resetCodes, email+":"+code)
	return nil
}

func (n *mockNotifier) SendNotificationResetPassword(email string) error {
	if n.failSends {
		return fmt.Errorf("smtp down")
	}
	n.resetNotices = append(n.resetNotices, email)
	return nil
}

func (n *mockNotifier) SendDetectOtherDevice(email, ip, userAgent, deviceName string) error {
	if n.failSends {
		return fmt.Errorf("smtp down")
	}
	n.deviceAlerts = append(n.deviceAlerts, email+":"+deviceName)
	return nil
}
