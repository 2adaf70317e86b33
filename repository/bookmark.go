package repository

import (
	"context"
	"time"

	"retroboard/models"
	"retroboard/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookmarkRepository interface {
	Add(ctx context.Context, userID string, postID primitive.ObjectID) (*models.Bookmark, error)
	Remove(ctx context.Context, userID string, postID primitive.ObjectID) error
	ListWithPosts(ctx context.Context, userID string) ([]models.BookmarkedPost, error)
}

type bookmarkRepository struct {
	store *store.Store
	posts PostRepository
}

func NewBookmarkRepository(s *store.Store, posts PostRepository) BookmarkRepository {
	return &bookmarkRepository{store: s, posts: posts}
}

func (r *bookmarkRepository) Add(ctx context.Context, userID string, postID primitive.ObjectID) (*models.Bookmark, error) {
	// Make sure the post exists before bookmarking it.
	if _, err := r.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	filter := bson.M{"userId": userID, "postId": postID}
	count, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (int64, error) {
		return r.store.Bookmarks().CountDocuments(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, models.NewConflictError("post already bookmarked")
	}

	bookmark := &models.Bookmark{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}

	_, err = store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Bookmarks().InsertOne(ctx, bookmark)
	})
	if err != nil {
		// The unique (userId, postId) index catches the race the count
		// check above cannot.
		if store.Classify(err) == store.KindConflict {
			return nil, models.NewConflictError("post already bookmarked")
		}
		return nil, err
	}
	return bookmark, nil
}

func (r *bookmarkRepository) Remove(ctx context.Context, userID string, postID primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "postId": postID}
	res, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (int64, error) {
		res, err := r.store.Bookmarks().DeleteOne(ctx, filter)
		if err != nil {
			return 0, err
		}
		return res.DeletedCount, nil
	})
	if err != nil {
		return err
	}
	if res == 0 {
		return models.NewNotFoundError("bookmark", postID.Hex())
	}
	return nil
}

// ListWithPosts resolves each bookmarked post individually and drops
// entries whose post fails to load. One broken post must never block the
// whole list; failures are logged, not surfaced.
func (r *bookmarkRepository) ListWithPosts(ctx context.Context, userID string) ([]models.BookmarkedPost, error) {
	bookmarks, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) ([]models.Bookmark, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := r.store.Bookmarks().Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var bookmarks []models.Bookmark
		if err := cursor.All(ctx, &bookmarks); err != nil {
			return nil, err
		}
		return bookmarks, nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]models.BookmarkedPost, 0, len(bookmarks))
	for _, b := range bookmarks {
		post, err := r.posts.GetByID(ctx, b.PostID)
		if err != nil {
			r.store.Log().Warnw("skipping unresolvable bookmarked post",
				"postId", b.PostID.Hex(), "userId", userID, "error", err)
			continue
		}
		result = append(result, models.BookmarkedPost{Bookmark: b, Post: post})
	}
	return result, nil
}
