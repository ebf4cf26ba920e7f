package studio

import (
	"context"
	"strings"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
)

// AllCategories selects templates of every category.
const AllCategories = "All"

// Categories is the gallery's category bar, in display order.
var Categories = []string{AllCategories, "Landing Page", "Dashboard", "E-commerce", "Blog", "Portfolio", "SaaS"}

const defaultSearchLimit = 20

// ListTemplates returns the catalogue filtered by category and a
// case-insensitive query over name and category. The built-in catalogue
// stands in when the backend has none.
func (s *Service) ListTemplates(ctx context.Context, category, query string) ([]models.Template, error) {
	all, err := s.backend.GetAllTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		all = s.fallback
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Template, 0, len(all))
	for _, t := range all {
		if category != "" && category != AllCategories && t.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Category), q) {
			continue
		}
		t.Tags = nonNilSlice(t.Tags)
		out = append(out, t)
	}
	return out, nil
}

// GetTemplate looks id up in the backend, then in the built-in catalogue.
func (s *Service) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	t, err := s.backend.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}
	for i := range s.fallback {
		if s.fallback[i].ID == id {
			fb := s.fallback[i]
			return &fb, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// SearchTemplates runs a full-text query over name, category, description
// and tags.
func (s *Service) SearchTemplates(ctx context.Context, query string, limit int) ([]models.Template, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Template{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	res, err := s.search.SearchTemplates(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}
