package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"go-todo-api/internal/config"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/middleware"
)

// Paths that draw from the stricter per-IP auth bucket.
var authPaths = []string{"/login", "/token", "/register"}

type Handlers struct {
	Auth   *handler.AuthHandler
	Todo   *handler.TodoHandler
	Audit  *handler.AuditHandler
	Docs   *handler.DocsHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authenticator *middleware.SessionAuthenticator, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, authPaths...)

	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", h.Health.Check)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(authenticator.Authenticate)

		api.Post("/register", h.Auth.Register)
		api.Post("/login", h.Auth.Login)
		api.Post("/token", h.Auth.Login)
		api.Post("/token/refresh", h.Auth.Refresh)
		api.Post("/logout", h.Auth.Logout)

		api.Group(func(protected chi.Router) {
			protected.Use(authenticator.RequireAuth)

			protected.Post("/authenticate", h.Auth.Authenticate)
			protected.Get("/me", h.Auth.Me)
			protected.Get("/audit", h.Audit.List)

			protected.Route("/todo", func(todo chi.Router) {
				todo.Get("/", h.Todo.List)
				todo.Get("/search", h.Todo.Search)
				todo.Post("/create", h.Todo.Create)
				todo.Put("/update/{id}", h.Todo.Update)
				todo.Patch("/update/{id}", h.Todo.Update)
				todo.Delete("/delete/{id}", h.Todo.Delete)
				todo.Get("/{id}", h.Todo.Get)
			})
		})
	})

	return r
}
