// Package service holds the admin-facing business logic on top of the
// repositories.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"retroboard/models"
	"retroboard/repository"
)

// CategoryService manages the category array inside the singleton settings
// document: slug derivation, duplicate checks, reorder validation and
// delete-with-reassignment.
type CategoryService struct {
	settings repository.SettingsRepository
}

func NewCategoryService(settings repository.SettingsRepository) *CategoryService {
	return &CategoryService{settings: settings}
}

// Slugify derives a category id from its name: lowercase, runs of
// non-alphanumerics collapsed to single hyphens, hyphens trimmed at both
// ends.
func Slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// load fetches settings, bootstrapping the default document when none
// exists yet.
func (s *CategoryService) load(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return models.DefaultSettings(time.Now().UTC()), nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *CategoryService) Add(ctx context.Context, name, icon string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("category name is required")
	}
	id := Slugify(name)
	if id == "" {
		return nil, models.NewValidationError("category name must contain letters or digits")
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range settings.Categories {
		if c.ID == id {
			return nil, models.NewConflictError("a category with id " + id + " already exists")
		}
		if strings.EqualFold(c.Name, name) {
			return nil, models.NewConflictError("a category named " + c.Name + " already exists")
		}
	}

	cat := models.Category{ID: id, Name: name, Icon: icon}
	settings.Categories = append(settings.Categories, cat)

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *CategoryService) Update(ctx context.Context, id, newName, icon string) (*models.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, models.NewValidationError("category name is required")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range settings.Categories {
		if c.ID == id {
			idx = i
			continue
		}
		if strings.EqualFold(c.Name, newName) {
			return nil, models.NewConflictError("a category named " + c.Name + " already exists")
		}
	}
	if idx < 0 {
		return nil, models.NewNotFoundError("category", id)
	}

	// The id is the stable reference posts point at; renames never touch it.
	settings.Categories[idx].Name = newName
	settings.Categories[idx].Icon = icon

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	cat := settings.Categories[idx]
	return &cat, nil
}

// Delete removes a category, moving its posts to the first remaining one.
// It fails without mutating anything when posts reference the category and
// no other category exists to receive them.
func (s *CategoryService) Delete(ctx context.Context, id string) (reassigned int64, err error) {
	return s.settings.DeleteCategory(ctx, id)
}

// Reorder accepts a new ordering for the category ids. The proposed list
// must be a permutation of the current set; anything added, dropped or
// duplicated is rejected before any write.
func (s *CategoryService) Reorder(ctx context.Context, ids []string) ([]models.Category, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	current := make(map[string]models.Category, len(settings.Categories))
	for _, c := range settings.Categories {
		current[c.ID] = c
	}

	if len(ids) != len(settings.Categories) {
		return nil, models.NewValidationError("reorder list must contain every category exactly once")
	}

	seen := make(map[string]bool, len(ids))
	ordered := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		cat, ok := current[id]
		if !ok {
			return nil, models.NewValidationError("unknown category id in reorder list: " + id)
		}
		if seen[id] {
			return nil, models.NewValidationError("duplicate category id in reorder list: " + id)
		}
		seen[id] = true
		ordered = append(ordered, cat)
	}

	settings.Categories = ordered
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return ordered, nil
}
