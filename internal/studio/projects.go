package studio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/sse"
)

// Naming limits for projects created from a prompt.
const (
	promptNameRunes        = 40
	promptDescriptionRunes = 200
	defaultProjectName     = "My Project"
	blankProjectName       = "Untitled Project"
)

// ProjectFilter narrows the project list by status.
type ProjectFilter string

const (
	FilterAll   ProjectFilter = "all"
	FilterLive  ProjectFilter = "live"
	FilterDraft ProjectFilter = "draft"
)

// ParseProjectFilter maps "" to FilterAll and rejects unknown values.
func ParseProjectFilter(s string) (ProjectFilter, error) {
	switch f := ProjectFilter(strings.ToLower(s)); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterLive, FilterDraft:
		return f, nil
	}
	return "", apperr.Invalid(fmt.Errorf("filter: %q is not all, live or draft", s))
}

func (f ProjectFilter) match(p models.Project) bool {
	switch f {
	case FilterLive:
		return p.Status == models.StatusLive
	case FilterDraft:
		return p.Status != models.StatusLive
	}
	return true
}

// runePrefix returns the first n runes of s and whether s was longer.
func runePrefix(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

// promptProjectName derives a project name from the user's inputs.
func promptProjectName(name, prompt string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	head, cut := runePrefix(prompt, promptNameRunes)
	if cut {
		head += "..."
	}
	if strings.TrimSpace(head) != "" {
		return head
	}
	return defaultProjectName
}

// CreateFromPrompt creates a project described by prompt and marks it as
// building.
func (s *Service) CreateFromPrompt(ctx context.Context, name, prompt string) (*models.Project, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.Invalid(errors.New("prompt: cannot be blank"))
	}
	desc, _ := runePrefix(prompt, promptDescriptionRunes)
	return s.createBuilding(ctx, promptProjectName(name, prompt), desc, strings.TrimSpace(prompt))
}

// CreateFromTemplate starts a building project from a catalogue entry.
func (s *Service) CreateFromTemplate(ctx context.Context, templateID string) (*models.Project, error) {
	t, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Create a %s named %q: %s", t.Category, t.Name, t.Description)
	return s.createBuilding(ctx, t.Name, t.Description, prompt)
}

// CreateChatProject starts an empty building project named after today's
// date.
func (s *Service) CreateChatProject(ctx context.Context) (*models.Project, error) {
	name := "Chat Project " + s.now().Format("1/2/2006")
	return s.createBuilding(ctx, name, "", "")
}

// CreateBlank creates an untitled draft.
func (s *Service) CreateBlank(ctx context.Context) (*models.Project, error) {
	id, err := s.backend.CreateProject(ctx, blankProjectName, "", "")
	if err != nil {
		return nil, err
	}
	s.publishProject(ctx, sse.ProjectCreated, id)
	return s.GetProject(ctx, id)
}

func (s *Service) createBuilding(ctx context.Context, name, description, prompt string) (*models.Project, error) {
	id, err := s.backend.CreateProject(ctx, name, description, prompt)
	if err != nil {
		return nil, err
	}
	s.publishProject(ctx, sse.ProjectCreated, id)
	if err := s.backend.UpdateProjectStatus(ctx, id, models.StatusBuilding); err != nil {
		return nil, fmt.Errorf("studio: mark %s building: %w", id, err)
	}
	return s.GetProject(ctx, id)
}

// GetProject returns the caller's project or ErrNotFound.
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.backend.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// ListProjects returns the caller's projects matching filter whose name
// contains query (case-insensitive), most recently updated first.
func (s *Service) ListProjects(ctx context.Context, filter ProjectFilter, query string) ([]models.Project, error) {
	all, err := s.backend.GetUserProjects(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Project, 0, len(all))
	for _, p := range all {
		if !filter.match(p) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	sortRecent(out)
	return out, nil
}

func sortRecent(ps []models.Project) {
	slices.SortStableFunc(ps, func(a, b models.Project) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}

// UpdateProject renames or re-describes a project.
func (s *Service) UpdateProject(ctx context.Context, id, name, description, prompt string) (*models.Project, error) {
	if err := s.backend.UpdateProject(ctx, id, name, description, prompt); err != nil {
		return nil, err
	}
	s.publishProject(ctx, sse.ProjectUpdated, id)
	return s.GetProject(ctx, id)
}

// SetStatus moves a project to status.
func (s *Service) SetStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error) {
	if err := s.backend.UpdateProjectStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.publishProject(ctx, sse.ProjectUpdated, id)
	return s.GetProject(ctx, id)
}

// TogglePublish flips a live project to draft and anything else to live.
func (s *Service) TogglePublish(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.StatusLive
	if p.Status == models.StatusLive {
		next = models.StatusDraft
	}
	return s.SetStatus(ctx, id, next)
}

// DeleteProject removes a project with its blocks and chat.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.backend.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.chats.Forget(ctx, id)
	s.publishProject(ctx, sse.ProjectDeleted, id)
	return nil
}
