package repository

import (
	"context"
	"testing"
	"time"

	"retroboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func passthroughTxn(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func TestCommentCreatePairsInsertWithCounter(t *testing.T) {
	postID := primitive.NewObjectID()

	var order []string
	var gotDelta int
	var gotNow time.Time
	inTxn := false

	r := &commentRepository{
		runTxn: func(ctx context.Context, fn func(context.Context) error) error {
			order = append(order, "txn")
			inTxn = true
			defer func() { inTxn = false }()
			return fn(ctx)
		},
		adjustCount: func(ctx context.Context, pid primitive.ObjectID, delta int, now time.Time) (int64, error) {
			require.True(t, inTxn, "counter update must run inside the transaction")
			assert.Equal(t, postID, pid)
			gotDelta = delta
			gotNow = now
			order = append(order, "adjust")
			return 1, nil
		},
		insert: func(ctx context.Context, comment *models.Comment) error {
			require.True(t, inTxn, "insert must run inside the transaction")
			order = append(order, "insert")
			return nil
		},
	}

	comment := &models.Comment{PostID: postID, Content: "hi", AuthorID: "u1"}
	require.NoError(t, r.Create(context.Background(), comment))

	assert.Equal(t, []string{"txn", "adjust", "insert"}, order)
	assert.Equal(t, 1, gotDelta)
	assert.False(t, comment.ID.IsZero())
	assert.Equal(t, comment.CreatedAt, comment.UpdatedAt)
	assert.Equal(t, comment.CreatedAt, gotNow, "post.updatedAt gets the comment's timestamp")
}

func TestCommentCreateMissingPost(t *testing.T) {
	inserted := false
	r := &commentRepository{
		runTxn: passthroughTxn,
		adjustCount: func(ctx context.Context, pid primitive.ObjectID, delta int, now time.Time) (int64, error) {
			return 0, nil
		},
		insert: func(ctx context.Context, comment *models.Comment) error {
			inserted = true
			return nil
		},
	}

	err := r.Create(context.Background(), &models.Comment{PostID: primitive.NewObjectID()})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.False(t, inserted, "no comment may land on a missing post")
}

func TestCommentDeletePairsRemovalWithCounter(t *testing.T) {
	postID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()

	var order []string
	var gotDelta int

	r := &commentRepository{
		runTxn: func(ctx context.Context, fn func(context.Context) error) error {
			order = append(order, "txn")
			return fn(ctx)
		},
		findByID: func(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: postID, AuthorID: "u1"}, nil
		},
		remove: func(ctx context.Context, id primitive.ObjectID) (int64, error) {
			assert.Equal(t, commentID, id)
			order = append(order, "remove")
			return 1, nil
		},
		adjustCount: func(ctx context.Context, pid primitive.ObjectID, delta int, now time.Time) (int64, error) {
			assert.Equal(t, postID, pid)
			gotDelta = delta
			order = append(order, "adjust")
			return 1, nil
		},
	}

	require.NoError(t, r.Delete(context.Background(), commentID, "u1"))
	assert.Equal(t, []string{"txn", "remove", "adjust"}, order)
	assert.Equal(t, -1, gotDelta)
}

func TestCommentDeleteVanishedComment(t *testing.T) {
	adjusted := false
	r := &commentRepository{
		runTxn: passthroughTxn,
		findByID: func(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: primitive.NewObjectID(), AuthorID: "u1"}, nil
		},
		remove: func(ctx context.Context, id primitive.ObjectID) (int64, error) {
			return 0, nil // deleted concurrently after the authorship read
		},
		adjustCount: func(ctx context.Context, pid primitive.ObjectID, delta int, now time.Time) (int64, error) {
			adjusted = true
			return 1, nil
		},
	}

	err := r.Delete(context.Background(), primitive.NewObjectID(), "u1")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.False(t, adjusted, "counter must not move when nothing was deleted")
}

func TestCommentDeleteAuthorCheck(t *testing.T) {
	txns := 0
	r := &commentRepository{
		runTxn: func(ctx context.Context, fn func(context.Context) error) error {
			txns++
			return fn(ctx)
		},
		findByID: func(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: primitive.NewObjectID(), AuthorID: "owner"}, nil
		},
		remove: func(ctx context.Context, id primitive.ObjectID) (int64, error) {
			return 1, nil
		},
		adjustCount: func(ctx context.Context, pid primitive.ObjectID, delta int, now time.Time) (int64, error) {
			return 1, nil
		},
	}

	err := r.Delete(context.Background(), primitive.NewObjectID(), "intruder")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	assert.Zero(t, txns, "rejected callers never reach the transaction")

	// Empty caller id is the moderation path; the author check is skipped.
	require.NoError(t, r.Delete(context.Background(), primitive.NewObjectID(), ""))
	assert.Equal(t, 1, txns)
}
