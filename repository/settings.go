package repository

import (
	"context"
	"errors"
	"time"

	"retroboard/models"
	"retroboard/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository manages the singleton settings document. Every
// category mutation rewrites the whole categories array; the document
// itself is the lock.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
	DeleteCategory(ctx context.Context, id string) (reassigned int64, err error)
}

type settingsRepository struct {
	store *store.Store
}

func NewSettingsRepository(s *store.Store) SettingsRepository {
	return &settingsRepository{store: s}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := store.WithRetry(ctx, store.ReadRetry, func(ctx context.Context) (*models.Settings, error) {
		var settings models.Settings
		if err := r.store.Settings().FindOne(ctx, bson.M{"_id": models.SettingsID}).Decode(&settings); err != nil {
			return nil, err
		}
		return &settings, nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("settings", models.SettingsID)
	}
	return settings, err
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	settings.UpdatedAt = time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = settings.UpdatedAt
	}

	_, err := store.WithRetry(ctx, store.AdminRetry, func(ctx context.Context) (interface{}, error) {
		opts := options.Replace().SetUpsert(true)
		return r.store.Settings().ReplaceOne(ctx, bson.M{"_id": models.SettingsID}, settings, opts)
	})
	return err
}

// DeleteCategory removes a category and reassigns its posts to the first
// remaining category, all inside one transaction. Deleting is refused when
// posts reference the category and no other category exists to take them.
func (r *settingsRepository) DeleteCategory(ctx context.Context, id string) (int64, error) {
	return store.WithRetry(ctx, store.AdminRetry, func(ctx context.Context) (int64, error) {
		return r.deleteCategoryTx(ctx, id)
	})
}

func (r *settingsRepository) deleteCategoryTx(ctx context.Context, id string) (int64, error) {
	var reassigned int64

	err := r.store.InTransaction(ctx, func(sc mongo.SessionContext) error {
		reassigned = 0

		var settings models.Settings
		if err := r.store.Settings().FindOne(sc, bson.M{"_id": models.SettingsID}).Decode(&settings); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.NewNotFoundError("category", id)
			}
			return err
		}

		count, err := r.store.Posts().CountDocuments(sc, bson.M{"category": id})
		if err != nil {
			return err
		}

		remaining, dest, err := planCategoryDelete(settings.Categories, id, count)
		if err != nil {
			return err
		}

		if dest != "" {
			res, err := r.store.Posts().UpdateMany(sc, bson.M{"category": id}, bson.M{"$set": bson.M{
				"category":  dest,
				"updatedAt": time.Now().UTC(),
			}})
			if err != nil {
				return err
			}
			reassigned = res.ModifiedCount
		}

		settings.Categories = remaining
		settings.UpdatedAt = time.Now().UTC()
		_, err = r.store.Settings().ReplaceOne(sc, bson.M{"_id": models.SettingsID}, &settings)
		return err
	})

	return reassigned, err
}

// planCategoryDelete decides what removing a category does before any
// write happens. dest is the id posts in the deleted category move to
// ("" when nothing references it): the first category of the remaining
// array, not whatever order the store returns.
func planCategoryDelete(cats []models.Category, id string, postCount int64) (remaining []models.Category, dest string, err error) {
	found := false
	remaining = make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if c.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return nil, "", models.NewNotFoundError("category", id)
	}

	if postCount > 0 {
		if len(remaining) == 0 {
			return nil, "", models.NewValidationError(
				"cannot delete the last category while posts still reference it")
		}
		dest = remaining[0].ID
	}
	return remaining, dest, nil
}
