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

// CommentRepository maintains the denormalized commentCount on the parent
// post: create and delete run as transactions touching both documents, so
// concurrent comment traffic converges to the correct count.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, id primitive.ObjectID, content, callerUID string) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID, callerUID string) error
}

// commentRepository keeps its single-document calls behind function fields
// so the transactional pairing of comment writes with the parent post's
// counter can be exercised without a live replica set.
type commentRepository struct {
	store *store.Store

	runTxn      func(ctx context.Context, fn func(ctx context.Context) error) error
	findByID    func(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	insert      func(ctx context.Context, comment *models.Comment) error
	remove      func(ctx context.Context, id primitive.ObjectID) (deleted int64, err error)
	adjustCount func(ctx context.Context, postID primitive.ObjectID, delta int, now time.Time) (matched int64, err error)
}

func NewCommentRepository(s *store.Store) CommentRepository {
	r := &commentRepository{store: s}

	r.runTxn = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return s.InTransaction(ctx, func(sc mongo.SessionContext) error {
			return fn(sc)
		})
	}
	r.findByID = func(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
		var comment models.Comment
		if err := s.Comments().FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
			return nil, err
		}
		return &comment, nil
	}
	r.insert = func(ctx context.Context, comment *models.Comment) error {
		_, err := s.Comments().InsertOne(ctx, comment)
		return err
	}
	r.remove = func(ctx context.Context, id primitive.ObjectID) (int64, error) {
		res, err := s.Comments().DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return 0, err
		}
		return res.DeletedCount, nil
	}
	r.adjustCount = func(ctx context.Context, postID primitive.ObjectID, delta int, now time.Time) (int64, error) {
		res, err := s.Posts().UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
			"$inc": bson.M{"commentCount": delta},
			"$set": bson.M{"updatedAt": now},
		})
		if err != nil {
			return 0, err
		}
		return res.MatchedCount, nil
	}

	return r
}

func (r *commentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	comments, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) ([]*models.Comment, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := r.store.Comments().Find(ctx, bson.M{"postId": postID}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var comments []*models.Comment
		if err := cursor.All(ctx, &comments); err != nil {
			return nil, err
		}
		return comments, nil
	})
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (*models.Comment, error) {
		return r.findByID(ctx, id)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("comment", id.Hex())
	}
	return comment, err
}

// Create inserts the comment and bumps the parent post's commentCount and
// updatedAt in the same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	return r.runTxn(ctx, func(ctx context.Context) error {
		matched, err := r.adjustCount(ctx, comment.PostID, 1, now)
		if err != nil {
			return err
		}
		if matched == 0 {
			return models.NewNotFoundError("post", comment.PostID.Hex())
		}
		return r.insert(ctx, comment)
	})
}

func (r *commentRepository) Update(ctx context.Context, id primitive.ObjectID, content, callerUID string) (*models.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerUID != "" && comment.AuthorID != callerUID {
		return nil, models.NewForbiddenError("only the author can edit this comment")
	}

	now := time.Now().UTC()
	_, err = store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		return r.store.Comments().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"content":   content,
			"updatedAt": now,
			"editedAt":  now,
		}})
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete verifies authorship first, then removes the comment and decrements
// the parent's commentCount in one transaction. The authorship read is not
// part of the atomic unit.
func (r *commentRepository) Delete(ctx context.Context, id primitive.ObjectID, callerUID string) error {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if callerUID != "" && comment.AuthorID != callerUID {
		return models.NewForbiddenError("only the author can delete this comment")
	}

	return r.runTxn(ctx, func(ctx context.Context) error {
		deleted, err := r.remove(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return models.NewNotFoundError("comment", id.Hex())
		}
		_, err = r.adjustCount(ctx, comment.PostID, -1, time.Now().UTC())
		return err
	})
}
