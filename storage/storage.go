package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"socialnet/storage/models"
)

type Manager struct {
	db *mongo.Database
}

func NewManager(dbConnection *mongo.Database) *Manager {
	return &Manager{db: dbConnection}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	usersColl := m.db.Collection("users")
	_, err := usersColl.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	return errors.Wrap(err, "creating email index")
}

func (m *Manager) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	usersColl := m.db.Collection("users")

	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Posts:     []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := usersColl.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrEmailExists
		}
		log.Errorf("Error creating user '%s': %v", email, err)
		return models.User{}, errors.Wrap(err, "inserting user")
	}
	return user, nil
}

func (m *Manager) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	usersColl := m.db.Collection("users")

	var user models.User
	err := usersColl.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		log.Errorf("Error finding user '%s': %v", id.Hex(), err)
		return models.User{}, errors.Wrap(err, "finding user")
	}
	return user, nil
}

func (m *Manager) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	usersColl := m.db.Collection("users")

	var user models.User
	err := usersColl.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		log.Errorf("Error finding user by email: %v", err)
		return models.User{}, errors.Wrap(err, "finding user by email")
	}
	return user, nil
}

// CreatePost inserts the post and prepends its reference to the creator's
// post list as one unit. The post never exists without the owner link.
func (m *Manager) CreatePost(ctx context.Context, creator primitive.ObjectID, title, description string) (models.Post, error) {
	usersColl := m.db.Collection("users")
	postsColl := m.db.Collection("posts")

	now := time.Now().UTC()
	post := models.Post{
		ID:          primitive.NewObjectID(),
		Creator:     creator,
		Title:       title,
		Description: description,
		Likes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := m.withUnit(ctx, func(ctx mongo.SessionContext) error {
		if _, err := postsColl.InsertOne(ctx, post); err != nil {
			log.Errorf("Error inserting post: %v", err)
			return errors.Wrap(err, "inserting post")
		}

		result, err := usersColl.UpdateOne(
			ctx,
			bson.D{{Key: "_id", Value: creator}},
			bson.D{{Key: "$push", Value: bson.D{{Key: "posts", Value: bson.D{
				{Key: "$each", Value: bson.A{post.ID}},
				{Key: "$position", Value: 0},
			}}}}},
		)
		if err != nil {
			log.Errorf("Error linking post to user '%s': %v", creator.Hex(), err)
			return errors.Wrap(err, "linking post to creator")
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (m *Manager) GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	postsColl := m.db.Collection("posts")

	var post models.Post
	err := postsColl.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, ErrNotFound
		}
		log.Errorf("Error finding post '%s': %v", id.Hex(), err)
		return models.Post{}, errors.Wrap(err, "finding post")
	}
	return post, nil
}

// DeletePost removes the post and pulls its reference from the owner's post
// list as one unit. Only the creator may delete.
func (m *Manager) DeletePost(ctx context.Context, requester, id primitive.ObjectID) error {
	usersColl := m.db.Collection("users")
	postsColl := m.db.Collection("posts")

	post, err := m.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.Creator != requester {
		return ErrForbidden
	}

	return m.withUnit(ctx, func(ctx mongo.SessionContext) error {
		result, err := postsColl.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			log.Errorf("Error deleting post '%s': %v", id.Hex(), err)
			return errors.Wrap(err, "deleting post")
		}
		if result.DeletedCount == 0 {
			return ErrNotFound
		}

		_, err = usersColl.UpdateOne(
			ctx,
			bson.D{{Key: "_id", Value: post.Creator}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "posts", Value: id}}}},
		)
		if err != nil {
			log.Errorf("Error unlinking post from user '%s': %v", post.Creator.Hex(), err)
			return errors.Wrap(err, "unlinking post from creator")
		}
		return nil
	})
}

// LikePost adds the user to the post's like set. The $addToSet update is
// atomic, so concurrent likes from the same user cannot double-count.
// Returns false when the user had already liked the post.
func (m *Manager) LikePost(ctx context.Context, user, id primitive.ObjectID) (bool, error) {
	postsColl := m.db.Collection("posts")

	result, err := postsColl.UpdateOne(
		ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "likes", Value: user}}}},
	)
	if err != nil {
		log.Errorf("Error liking post '%s': %v", id.Hex(), err)
		return false, errors.Wrap(err, "liking post")
	}
	if result.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return result.ModifiedCount > 0, nil
}

// UnlikePost removes the user from the post's like set. Returns false when
// the user had not liked the post.
func (m *Manager) UnlikePost(ctx context.Context, user, id primitive.ObjectID) (bool, error) {
	postsColl := m.db.Collection("posts")

	result, err := postsColl.UpdateOne(
		ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "likes", Value: user}}}},
	)
	if err != nil {
		log.Errorf("Error unliking post '%s': %v", id.Hex(), err)
		return false, errors.Wrap(err, "unliking post")
	}
	if result.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return result.ModifiedCount > 0, nil
}

// CommentOnPost appends a comment to the post's embedded comment list and
// returns the generated comment id.
func (m *Manager) CommentOnPost(ctx context.Context, author, id primitive.ObjectID, text string) (string, error) {
	postsColl := m.db.Collection("posts")

	comment := models.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	result, err := postsColl.UpdateOne(
		ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "comments", Value: comment}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: comment.CreatedAt}}},
		},
	)
	if err != nil {
		log.Errorf("Error commenting on post '%s': %v", id.Hex(), err)
		return "", errors.Wrap(err, "commenting on post")
	}
	if result.MatchedCount == 0 {
		return "", ErrNotFound
	}
	return comment.ID, nil
}

// GetUserPosts returns the user's posts newest first. An empty slice is a
// valid result.
func (m *Manager) GetUserPosts(ctx context.Context, user primitive.ObjectID) ([]models.Post, error) {
	postsColl := m.db.Collection("posts")

	cursor, err := postsColl.Find(
		ctx,
		bson.D{{Key: "creator", Value: user}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		log.Errorf("Error finding posts for user '%s': %v", user.Hex(), err)
		return nil, errors.Wrap(err, "finding user posts")
	}

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		log.Errorf("Error reading posts for user '%s': %v", user.Hex(), err)
		return nil, errors.Wrap(err, "reading user posts")
	}
	return posts, nil
}

// Follow records the edge on both sides as one unit. Returns false when the
// follower already follows the target.
func (m *Manager) Follow(ctx context.Context, follower, target primitive.ObjectID) (bool, error) {
	usersColl := m.db.Collection("users")

	if follower == target {
		return false, ErrSelfFollow
	}

	var fresh bool
	err := m.withUnit(ctx, func(ctx mongo.SessionContext) error {
		result, err := usersColl.UpdateOne(
			ctx,
			bson.D{{Key: "_id", Value: target}},
			bson.D{{Key: "$addToSet", Value: bson.D{{Key: "followers", Value: follower}}}},
		)
		if err != nil {
			log.Errorf("Error adding follower to user '%s': %v", target.Hex(), err)
			return errors.Wrap(err, "adding follower")
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		fresh = result.ModifiedCount > 0

		result, err = usersColl.UpdateOne(
			ctx,
			bson.D{{Key: "_id", Value: follower}},
			bson.D{{Key: "$addToSet", Value: bson.D{{Key: "following", Value: target}}}},
		)
		if err != nil {
			log.Errorf("Error adding following to user '%s': %v", follower.Hex(), err)
			return errors.Wrap(err, "adding following")
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return fresh, nil
}

// Unfollow removes the edge on both sides as one unit. Returns false when the
// follower was not following the target.
func (m *Manager) Unfollow(ctx context.Context, follower, target primitive.ObjectID) (bool, error) {
	usersColl := m.db.Collection("users")

	if follower == target {
		return false, ErrSelfFollow
	}

	var fresh bool
	err := m.withUnit(ctx, func(ctx mongo.SessionContext) error {
		result, err := usersColl.UpdateOne(
			ctx,
			bson.D{{Key: "_id", Value: target}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "followers", Value: follower}}}},
		)
		if err != nil {
			log.Errorf("Error removing follower from user '%s': %v", target.Hex(), err)
			return errors.Wrap(err, "removing follower")
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		fresh = result.ModifiedCount > 0

		result, err = usersColl.UpdateOne(
			ctx,
			bson.D{{Key: "_id", Value: follower}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "following", Value: target}}}},
		)
		if err != nil {
			log.Errorf("Error removing following from user '%s': %v", follower.Hex(), err)
			return errors.Wrap(err, "removing following")
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return fresh, nil
}
