package repository

import (
	"context"

	"retroboard/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// clearBatchSize matches the store's batch-write limit.
const clearBatchSize = 500

// BackupStore implements raw collection dump/clear/write for the backup
// service.
type BackupStore struct {
	store *store.Store
}

func NewBackupStore(s *store.Store) *BackupStore {
	return &BackupStore{store: s}
}

func (b *BackupStore) DumpCollection(ctx context.Context, name string) ([]bson.M, error) {
	return store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) ([]bson.M, error) {
		cursor, err := b.store.Collection(name).Find(ctx, bson.M{})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	})
}

// ClearCollection deletes everything in pages of clearBatchSize documents.
func (b *BackupStore) ClearCollection(ctx context.Context, name string) (int64, error) {
	col := b.store.Collection(name)
	var total int64

	for {
		deleted, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (int64, error) {
			opts := options.Find().
				SetLimit(clearBatchSize).
				SetProjection(bson.M{"_id": 1})
			cursor, err := col.Find(ctx, bson.M{}, opts)
			if err != nil {
				return 0, err
			}
			defer cursor.Close(ctx)

			var page []bson.M
			if err := cursor.All(ctx, &page); err != nil {
				return 0, err
			}
			if len(page) == 0 {
				return 0, nil
			}

			ids := make([]interface{}, 0, len(page))
			for _, doc := range page {
				ids = append(ids, doc["_id"])
			}
			res, err := col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
			if err != nil {
				return 0, err
			}
			return res.DeletedCount, nil
		})
		if err != nil {
			return total, err
		}
		if deleted == 0 {
			return total, nil
		}
		total += deleted
	}
}

func (b *BackupStore) WriteDocument(ctx context.Context, name string, id interface{}, doc bson.M, overwrite bool) error {
	_, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (interface{}, error) {
		col := b.store.Collection(name)
		if overwrite {
			opts := options.Replace().SetUpsert(true)
			return col.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
		}
		return col.InsertOne(ctx, doc)
	})
	return err
}
