package service

import (
	"context"
	"testing"
	"time"

	"retroboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSettingsRepo struct {
	GetFn            func(ctx context.Context) (*models.Settings, error)
	SaveFn           func(ctx context.Context, settings *models.Settings) error
	DeleteCategoryFn func(ctx context.Context, id string) (int64, error)
}

func (s *stubSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	return s.GetFn(ctx)
}

func (s *stubSettingsRepo) Save(ctx context.Context, settings *models.Settings) error {
	return s.SaveFn(ctx, settings)
}

func (s *stubSettingsRepo) DeleteCategory(ctx context.Context, id string) (int64, error) {
	return s.DeleteCategoryFn(ctx, id)
}

func boardWith(cats ...models.Category) *models.Settings {
	s := models.DefaultSettings(time.Now().UTC())
	s.Categories = cats
	return s
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"General", "general"},
		{"Tech Talk", "tech-talk"},
		{"  Show & Tell  ", "show-tell"},
		{"C++ tips!!", "c-tips"},
		{"---", ""},
		{"2024 Goals", "2024-goals"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCategoryAdd(t *testing.T) {
	t.Run("appends and saves", func(t *testing.T) {
		var saved *models.Settings
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return boardWith(models.Category{ID: "general", Name: "General"}), nil
			},
			SaveFn: func(ctx context.Context, settings *models.Settings) error {
				saved = settings
				return nil
			},
		}

		cat, err := NewCategoryService(repo).Add(context.Background(), "Tech Talk", "💻")
		require.NoError(t, err)
		assert.Equal(t, "tech-talk", cat.ID)
		assert.Equal(t, "Tech Talk", cat.Name)
		require.NotNil(t, saved)
		assert.Len(t, saved.Categories, 2)
	})

	t.Run("bootstraps defaults when no settings exist", func(t *testing.T) {
		var saved *models.Settings
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return nil, models.NewNotFoundError("settings", models.SettingsID)
			},
			SaveFn: func(ctx context.Context, settings *models.Settings) error {
				saved = settings
				return nil
			},
		}

		_, err := NewCategoryService(repo).Add(context.Background(), "General", "")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, saved.AllowComments)
		assert.Len(t, saved.Categories, 1)
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return boardWith(models.Category{ID: "tech-talk", Name: "Tech Talk"}), nil
			},
		}

		_, err := NewCategoryService(repo).Add(context.Background(), "Tech! Talk!", "")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("rejects duplicate name case-insensitively", func(t *testing.T) {
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return boardWith(models.Category{ID: "general", Name: "General"}), nil
			},
		}

		_, err := NewCategoryService(repo).Add(context.Background(), "GENERAL", "")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("rejects empty and symbol-only names", func(t *testing.T) {
		svc := NewCategoryService(&stubSettingsRepo{})
		_, err := svc.Add(context.Background(), "   ", "")
		assert.Error(t, err)
		_, err = svc.Add(context.Background(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestCategoryUpdate(t *testing.T) {
	t.Run("renames but keeps the id", func(t *testing.T) {
		var saved *models.Settings
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return boardWith(
					models.Category{ID: "general", Name: "General"},
					models.Category{ID: "tech", Name: "Tech"},
				), nil
			},
			SaveFn: func(ctx context.Context, settings *models.Settings) error {
				saved = settings
				return nil
			},
		}

		cat, err := NewCategoryService(repo).Update(context.Background(), "tech", "Technology & Tools", "🔧")
		require.NoError(t, err)
		assert.Equal(t, "tech", cat.ID)
		assert.Equal(t, "Technology & Tools", cat.Name)
		require.NotNil(t, saved)
		assert.Equal(t, "tech", saved.Categories[1].ID)
	})

	t.Run("rejects a name held by another category", func(t *testing.T) {
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return boardWith(
					models.Category{ID: "general", Name: "General"},
					models.Category{ID: "tech", Name: "Tech"},
				), nil
			},
		}

		_, err := NewCategoryService(repo).Update(context.Background(), "tech", "general", "")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := &stubSettingsRepo{
			GetFn: func(ctx context.Context) (*models.Settings, error) {
				return boardWith(models.Category{ID: "general", Name: "General"}), nil
			},
		}

		_, err := NewCategoryService(repo).Update(context.Background(), "missing", "Whatever", "")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestCategoryReorder(t *testing.T) {
	current := func() *models.Settings {
		return boardWith(
			models.Category{ID: "general", Name: "General"},
			models.Category{ID: "tech", Name: "Tech"},
			models.Category{ID: "random", Name: "Random"},
		)
	}

	t.Run("applies a valid permutation", func(t *testing.T) {
		var saved *models.Settings
		repo := &stubSettingsRepo{
			GetFn:  func(ctx context.Context) (*models.Settings, error) { return current(), nil },
			SaveFn: func(ctx context.Context, settings *models.Settings) error { saved = settings; return nil },
		}

		ordered, err := NewCategoryService(repo).Reorder(context.Background(), []string{"random", "general", "tech"})
		require.NoError(t, err)
		require.Len(t, ordered, 3)
		assert.Equal(t, "random", ordered[0].ID)
		assert.Equal(t, "Random", ordered[0].Name)
		require.NotNil(t, saved)
	})

	t.Run("rejects invalid lists without saving", func(t *testing.T) {
		saves := 0
		repo := &stubSettingsRepo{
			GetFn:  func(ctx context.Context) (*models.Settings, error) { return current(), nil },
			SaveFn: func(ctx context.Context, settings *models.Settings) error { saves++; return nil },
		}
		svc := NewCategoryService(repo)

		for _, ids := range [][]string{
			{"general", "tech"},                    // missing one
			{"general", "tech", "random", "extra"}, // too many
			{"general", "tech", "unknown"},         // unknown id
			{"general", "general", "tech"},         // duplicate
		} {
			_, err := svc.Reorder(context.Background(), ids)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr, "ids=%v", ids)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		}
		assert.Zero(t, saves)
	})
}
