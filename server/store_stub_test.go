package server_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/storage"
	"socialnet/storage/models"
)

// stubStore is an in-memory Store honoring the same idempotency and
// consistency contract as the mongo-backed manager.
type stubStore struct {
	users map[primitive.ObjectID]*models.User
	posts map[primitive.ObjectID]*models.Post
}

func newStubStore() *stubStore {
	return &stubStore{
		users: make(map[primitive.ObjectID]*models.User),
		posts: make(map[primitive.ObjectID]*models.Post),
	}
}

func (s *stubStore) CreateUser(_ context.Context, username, email, passwordHash string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return models.User{}, storage.ErrEmailExists
		}
	}
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Posts:     []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	s.users[user.ID] = user
	return *user, nil
}

func (s *stubStore) GetUser(_ context.Context, id primitive.ObjectID) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return *user, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *stubStore) CreatePost(_ context.Context, creator primitive.ObjectID, title, description string) (models.Post, error) {
	user, ok := s.users[creator]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	now := time.Now().UTC()
	post := &models.Post{
		ID:          primitive.NewObjectID(),
		Creator:     creator,
		Title:       title,
		Description: description,
		Likes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.posts[post.ID] = post
	user.Posts = append([]primitive.ObjectID{post.ID}, user.Posts...)
	return *post, nil
}

func (s *stubStore) GetPost(_ context.Context, id primitive.ObjectID) (models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	return *post, nil
}

func (s *stubStore) DeletePost(_ context.Context, requester, id primitive.ObjectID) error {
	post, ok := s.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	if post.Creator != requester {
		return storage.ErrForbidden
	}
	delete(s.posts, id)
	owner := s.users[post.Creator]
	for i, ref := range owner.Posts {
		if ref == id {
			owner.Posts = append(owner.Posts[:i], owner.Posts[i+1:]...)
			break
		}
	}
	return nil
}

func (s *stubStore) LikePost(_ context.Context, user, id primitive.ObjectID) (bool, error) {
	post, ok := s.posts[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if post.LikedBy(user) {
		return false, nil
	}
	post.Likes = append(post.Likes, user)
	return true, nil
}

func (s *stubStore) UnlikePost(_ context.Context, user, id primitive.ObjectID) (bool, error) {
	post, ok := s.posts[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	for i, l := range post.Likes {
		if l == user {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) CommentOnPost(_ context.Context, author, id primitive.ObjectID, text string) (string, error) {
	post, ok := s.posts[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	post.Comments = append(post.Comments, comment)
	return comment.ID, nil
}

func (s *stubStore) GetUserPosts(_ context.Context, user primitive.ObjectID) ([]models.Post, error) {
	posts := []models.Post{}
	for _, p := range s.posts {
		if p.Creator == user {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *stubStore) Follow(_ context.Context, follower, target primitive.ObjectID) (bool, error) {
	if follower == target {
		return false, storage.ErrSelfFollow
	}
	targetUser, ok := s.users[target]
	if !ok {
		return false, storage.ErrNotFound
	}
	followerUser, ok := s.users[follower]
	if !ok {
		return false, storage.ErrNotFound
	}
	if followerUser.IsFollowing(target) {
		return false, nil
	}
	followerUser.Following = append(followerUser.Following, target)
	targetUser.Followers = append(targetUser.Followers, follower)
	return true, nil
}

func (s *stubStore) Unfollow(_ context.Context, follower, target primitive.ObjectID) (bool, error) {
	if follower == target {
		return false, storage.ErrSelfFollow
	}
	targetUser, ok := s.users[target]
	if !ok {
		return false, storage.ErrNotFound
	}
	followerUser, ok := s.users[follower]
	if !ok {
		return false, storage.ErrNotFound
	}
	if !followerUser.IsFollowing(target) {
		return false, nil
	}
	for i, f := range followerUser.Following {
		if f == target {
			followerUser.Following = append(followerUser.Following[:i], followerUser.Following[i+1:]...)
			break
		}
	}
	for i, f := range targetUser.Followers {
		if f == follower {
			targetUser.Followers = append(targetUser.Followers[:i], targetUser.Followers[i+1:]...)
			break
		}
	}
	return true, nil
}
