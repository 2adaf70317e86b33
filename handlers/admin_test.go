package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retroboard/cache"
	"retroboard/config"
	"retroboard/models"
	"retroboard/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

func newSettingsHandler(repo *stubSettingsRepo) *Handler {
	log := zap.NewNop().Sugar()
	return New(&config.Config{}, log, cache.New("", log),
		nil, nil, nil, nil, repo, service.NewCategoryService(repo), nil, nil)
}

func putSettingsFlags(h *Handler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/api/admin/settings", h.UpdateSettingsFlags)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// A transient read failure must surface, never be papered over with
// defaults: saving a bootstrapped settings object would replace the real
// document and drop every category in it.
func TestUpdateSettingsFlagsSurfacesReadFailure(t *testing.T) {
	saves := 0
	repo := &stubSettingsRepo{
		GetFn: func(ctx context.Context) (*models.Settings, error) {
			return nil, models.NewUnavailableError(errors.New("no reachable servers"))
		},
		SaveFn: func(ctx context.Context, settings *models.Settings) error {
			saves++
			return nil
		},
	}

	w := putSettingsFlags(newSettingsHandler(repo), `{"allowComments":false}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Zero(t, saves, "nothing may be written after a failed read")
}

func TestUpdateSettingsFlagsPreservesCategories(t *testing.T) {
	var saved *models.Settings
	repo := &stubSettingsRepo{
		GetFn: func(ctx context.Context) (*models.Settings, error) {
			s := models.DefaultSettings(time.Now().UTC())
			s.Categories = []models.Category{
				{ID: "general", Name: "General"},
				{ID: "tech", Name: "Tech"},
			}
			return s, nil
		},
		SaveFn: func(ctx context.Context, settings *models.Settings) error {
			saved = settings
			return nil
		},
	}

	w := putSettingsFlags(newSettingsHandler(repo), `{"allowComments":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.False(t, saved.AllowComments)
	assert.True(t, saved.AllowAnonymousPosting, "untouched flags keep their value")
	assert.Len(t, saved.Categories, 2, "flag updates never touch the category array")
}

func TestUpdateSettingsFlagsBootstrapsWhenAbsent(t *testing.T) {
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

	w := putSettingsFlags(newSettingsHandler(repo), `{"allowAnonymousPosting":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.False(t, saved.AllowAnonymousPosting)
	assert.True(t, saved.AllowComments)
}
