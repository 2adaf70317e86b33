package repository

import (
	"context"
	"errors"
	"time"

	"retroboard/models"
	"retroboard/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastSeen(ctx context.Context, id primitive.ObjectID) error
}

type userRepository struct {
	store *store.Store
}

func NewUserRepository(s *store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (*models.User, error) {
		var user models.User
		if err := r.store.Users().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			return nil, err
		}
		return &user, nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("user", email)
	}
	return user, err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.LastSeen = now

	_, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Users().InsertOne(ctx, user)
	})
	if err != nil && store.Classify(err) == store.KindConflict {
		return models.NewConflictError("email already in use")
	}
	return err
}

func (r *userRepository) UpdateLastSeen(ctx context.Context, id primitive.ObjectID) error {
	_, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$set": bson.M{"lastSeen": time.Now().UTC()},
		})
	})
	return err
}
