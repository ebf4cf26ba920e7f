package studio

import (
	"context"
	"strings"

	"github.com/starford/webcraft/internal/models"
)

// Dashboard is the home screen's view model.
type Dashboard struct {
	Greeting string                       `json:"greeting"`
	Total    int                          `json:"total"`
	Counts   map[models.ProjectStatus]int `json:"counts"`
	Recent   []models.Project             `json:"recent"`
}

// Dashboard greets the caller by first name and summarises their projects.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	projects, err := s.backend.GetUserProjects(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.backend.GetCallerUserProfile(ctx)
	if err != nil {
		return nil, err
	}

	recent := append([]models.Project{}, projects...)
	sortRecent(recent)

	d := &Dashboard{
		Greeting: greetingName(profile),
		Total:    len(projects),
		Counts: map[models.ProjectStatus]int{
			models.StatusDraft:    0,
			models.StatusBuilding: 0,
			models.StatusLive:     0,
		},
		Recent: recent,
	}
	for _, p := range projects {
		d.Counts[p.Status]++
	}
	return d, nil
}

func greetingName(p *models.UserProfile) string {
	if p != nil {
		if f := strings.Fields(p.DisplayName); len(f) > 0 {
			return f[0]
		}
	}
	return "there"
}
