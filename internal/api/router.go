package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/ratelimit"
	"github.com/starford/webcraft/internal/storage"
	"github.com/starford/webcraft/internal/studio"
)

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	Studio   *studio.Service
	Verifier *identity.Verifier
	Assets   storage.Provider
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// ChatLimiter, if non-nil, limits chat sends per caller.
	ChatLimiter *ratelimit.Limiter
}

// NewRouter creates a chi router with the public shell at the root and
// the guarded API under /api.
func NewRouter(cfg RouterConfig) chi.Router {
	h := NewHandler(cfg.Studio)
	ah := NewAssetHandler(cfg.Assets)

	r := chi.NewRouter()

	// Public shell.
	r.Get("/", Landing(cfg.Verifier))
	r.Get("/cookies", CookiePolicy)
	r.Get("/assets/{filename}", ah.ServeFile)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Verifier))

		// Projects.
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Post("/projects/chat", h.CreateChatProject)
		r.Post("/projects/from-template/{templateID}", h.CreateFromTemplate)
		r.Get("/projects/{id}", h.GetProject)
		r.Put("/projects/{id}", h.UpdateProject)
		r.Delete("/projects/{id}", h.DeleteProject)
		r.Put("/projects/{id}/status", h.SetStatus)
		r.Post("/projects/{id}/publish", h.TogglePublish)

		// Chat.
		r.Get("/projects/{id}/messages", h.ChatLog)
		r.Get("/projects/{id}/transcript", h.Transcript)
		r.With(ratelimit.Middleware(cfg.ChatLimiter, principalKey, rateLimited)).
			Post("/projects/{id}/transcript", h.SendChat)

		// Editor.
		r.Get("/projects/{id}/blocks", h.LoadPage)
		r.Put("/projects/{id}/blocks", h.SavePage)
		r.Post("/projects/{id}/blocks", h.AddBlock)
		r.Post("/projects/{id}/blocks/reorder", h.ReorderBlock)
		r.Put("/projects/{id}/blocks/{blockID}", h.UpdateBlock)
		r.Delete("/projects/{id}/blocks/{blockID}", h.RemoveBlock)
		r.Post("/projects/{id}/blocks/{blockID}/move", h.MoveBlock)
		r.Get("/projects/{id}/preview", h.Preview)
		r.Get("/blocks/library", h.BlockLibrary)
		r.Get("/blocks/defaults/{type}", h.BlockDefaults)

		// Templates.
		r.Get("/templates", h.ListTemplates)
		r.Get("/templates/categories", h.TemplateCategories)
		r.Get("/templates/search", h.SearchTemplates)
		r.Get("/templates/{id}", h.GetTemplate)

		// Account.
		r.Get("/dashboard", h.Dashboard)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.SaveSettings)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.SaveProfile)
		r.Get("/preferences", h.GetPrefs)
		r.Put("/preferences", h.UpdatePrefs)
		r.Get("/role", h.GetRole)
		r.Put("/role", h.AssignRole)

		// Assets.
		r.Get("/assets", ah.List)
		r.Post("/assets", ah.Upload)
		r.Delete("/assets/{filename}", ah.Delete)

		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	return r
}
