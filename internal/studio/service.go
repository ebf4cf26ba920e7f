// Package studio implements the page-level flows of the builder: project
// creation and listing, the template gallery, the dashboard, the block
// editor, chat and account settings. Every successful mutation is
// published to the caller's event stream.
package studio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/webcraft/internal/backend"
	"github.com/starford/webcraft/internal/cache"
	"github.com/starford/webcraft/internal/chat"
	"github.com/starford/webcraft/internal/editor"
	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/sse"
)

// Pages persists the block list of each project.
type Pages interface {
	LoadBlocks(ctx context.Context, projectID string) ([]editor.Block, error)
	ReplaceBlocks(ctx context.Context, projectID string, list []editor.Block) error
}

// TemplateSearcher runs full-text queries over the catalogue.
type TemplateSearcher interface {
	SearchTemplates(ctx context.Context, query string, limit int) ([]models.Template, error)
}

// Events receives change notifications.
type Events interface {
	Publish(event sse.Event)
	PublishProjectEvent(owner, kind, projectID string)
}

// Options tunes a Service.
type Options struct {
	// PrefsTTL bounds how long session preferences live in the cache.
	PrefsTTL time.Duration
	// Fallback is listed when the backend holds no templates.
	Fallback []models.Template
	Logger   *slog.Logger
}

// Service coordinates the backend, page storage, chat and events.
type Service struct {
	backend  backend.Backend
	pages    Pages
	search   TemplateSearcher
	chats    *chat.Manager
	prefs    cache.Cache
	events   Events
	fallback []models.Template
	prefsTTL time.Duration
	log      *slog.Logger
	now      func() time.Time

	// pageMu serializes read-modify-write cycles on block pages.
	pageMu sync.Mutex
}

// New creates a Service. events may be nil.
func New(b backend.Backend, pages Pages, search TemplateSearcher, chats *chat.Manager, prefs cache.Cache, events Events, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PrefsTTL <= 0 {
		opts.PrefsTTL = 30 * 24 * time.Hour
	}
	return &Service{
		backend:  b,
		pages:    pages,
		search:   search,
		chats:    chats,
		prefs:    prefs,
		events:   events,
		fallback: opts.Fallback,
		prefsTTL: opts.PrefsTTL,
		log:      opts.Logger,
		now:      time.Now,
	}
}

func (s *Service) publish(ctx context.Context, typ string, data any) {
	if s.events == nil {
		return
	}
	owner, ok := identity.Principal(ctx)
	if !ok {
		return
	}
	s.events.Publish(sse.Event{Owner: owner, Type: typ, Data: data})
}

func (s *Service) publishProject(ctx context.Context, kind, projectID string) {
	if s.events == nil {
		return
	}
	owner, ok := identity.Principal(ctx)
	if !ok {
		return
	}
	s.events.PublishProjectEvent(owner, kind, projectID)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
