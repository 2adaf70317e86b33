// Package repository implements the data access layer over the document store.
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines post CRUD and filtering. Mutations that take a
// callerUID enforce that the caller is the post's author; an empty
// callerUID skips the check (admin paths, which are gated upstream).
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*models.Post, error)
	ListByTag(ctx context.Context, tag string) ([]*models.Post, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate, callerUID string) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID, callerUID string) error
	MoveToCategory(ctx context.Context, id primitive.ObjectID, newCategoryID, callerUID string) (*models.Post, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

type postRepository struct {
	store *store.Store
}

func NewPostRepository(s *store.Store) PostRepository {
	return &postRepository{store: s}
}

func (r *postRepository) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	posts, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) ([]*models.Post, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := r.store.Posts().Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var posts []*models.Post
		if err := cursor.All(ctx, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID string) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"category": categoryID})
}

func (r *postRepository) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"tags": tag})
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (*models.Post, error) {
		var post models.Post
		if err := r.store.Posts().FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
			return nil, err
		}
		return &post, nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	return post, err
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.CommentCount = 0
	post.ViewCount = 0
	if post.Tags == nil {
		post.Tags = []string{}
	}

	_, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Posts().InsertOne(ctx, post)
	})
	return err
}

// requireAuthor fetches the post and rejects callers who do not own it.
// The check and the following write are not one atomic unit; the store's
// last-write-wins semantics apply between them.
func (r *postRepository) requireAuthor(ctx context.Context, id primitive.ObjectID, callerUID string) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerUID != "" && post.AuthorID != callerUID {
		return nil, models.NewForbiddenError("only the author can modify this post")
	}
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate, callerUID string) (*models.Post, error) {
	if _, err := r.requireAuthor(ctx, id, callerUID); err != nil {
		return nil, err
	}

	// Only caller-editable fields make it into the update document; id,
	// author and createdAt stay server-controlled.
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}

	_, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Posts().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the post together with its comments and bookmarks in one
// transaction, so no orphaned subdocuments survive.
func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID, callerUID string) error {
	if _, err := r.requireAuthor(ctx, id, callerUID); err != nil {
		return err
	}

	return r.store.InTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.store.Posts().DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return models.NewNotFoundError("post", id.Hex())
		}
		if _, err := r.store.Comments().DeleteMany(sc, bson.M{"postId": id}); err != nil {
			return err
		}
		_, err = r.store.Bookmarks().DeleteMany(sc, bson.M{"postId": id})
		return err
	})
}

func (r *postRepository) MoveToCategory(ctx context.Context, id primitive.ObjectID, newCategoryID, callerUID string) (*models.Post, error) {
	post, err := r.requireAuthor(ctx, id, callerUID)
	if err != nil {
		return nil, err
	}
	if post.Category == newCategoryID {
		return nil, models.NewValidationError("post is already in that category")
	}

	_, err = store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Posts().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"category":  newCategoryID,
			"updatedAt": time.Now().UTC(),
		}})
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Posts().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}})
	})
	return err
}
