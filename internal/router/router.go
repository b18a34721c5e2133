// Package router sets up all HTTP routes and middleware chains for the
// cardpress API. Read routes are open; mutating routes (saves, uploads,
// generation) sit behind a rate limiter.
package router

import (
	"github.com/go-chi/chi/v5"

	"cardpress/internal/handlers"
	"cardpress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter may be nil to disable rate limiting
// (used by tests).
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check.
	r.Get("/health", api.Health)

	r.Route("/api", func(r chi.Router) {
		// Element registry and binding catalog.
		r.Get("/elements", api.ElementKinds)

		// Classes and students — read-only roster surface.
		r.Get("/classes", api.ClassesList)
		r.Get("/students", api.StudentsList)
		r.Get("/students/{id}", api.StudentGet)

		// Generated cards.
		r.Get("/cards", api.CardsList)

		// Templates.
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", api.TemplatesList)
			r.Get("/{id}", api.TemplateGet)
			r.Get("/{id}/versions", api.TemplateVersions)
			r.Get("/{id}/versions/{version}", api.TemplateVersionGet)
			r.Get("/{id}/preview", api.Preview)

			// Mutating template routes.
			r.Group(func(r chi.Router) {
				if limiter != nil {
					r.Use(limiter.Middleware)
				}
				r.Post("/", api.TemplateCreate)
				r.Put("/{id}", api.TemplateUpdate)
				r.Delete("/{id}", api.TemplateDelete)
				r.Post("/{id}/lock", api.TemplateLock)
				r.Post("/{id}/unlock", api.TemplateUnlock)
				r.Post("/{id}/versions/{version}/restore", api.TemplateRestore)

				// Editor session — all operations mutate in-memory state.
				r.Route("/{id}/editor", func(r chi.Router) {
					r.Post("/", api.EditorOpen)
					r.Get("/", api.EditorState)
					r.Delete("/", api.EditorClose)
					r.Post("/save", api.EditorSave)
					r.Post("/side", api.EditorSwitchSide)
					r.Put("/grid", api.EditorSetGrid)
					r.Post("/enlarged", api.EditorOpenEnlarged)
					r.Post("/enlarged/close", api.EditorCloseEnlarged)

					r.Route("/elements", func(r chi.Router) {
						r.Post("/", api.EditorAddElement)
						r.Post("/{elementID}/move", api.EditorMoveElement)
						r.Post("/{elementID}/resize", api.EditorResizeElement)
						r.Put("/{elementID}/style", api.EditorRestyleElement)
						r.Post("/{elementID}/duplicate", api.EditorDuplicateElement)
						r.Delete("/{elementID}", api.EditorDeleteElement)
					})
				})
			})
		})

		// Composition and batch generation.
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/generate", api.Generate)
			r.Post("/generate/batch", api.GenerateBatch)
			r.Post("/assets", api.AssetUpload)
		})
	})

	return r
}
