package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/example/dscommerce/internal/api/middleware"
	"github.com/example/dscommerce/internal/auth"
)

type Options struct {
	CORSOrigins []string
}

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService, opts Options, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Correlate)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(middleware.Logger(log, middleware.LogOpts{
		SkipPaths: []string{"/healthz"},
	}))

	r.Get("/healthz", healthCheckHandler)
	r.Post("/oauth2/token", authHandlers.Token)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(jwtService))

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.GetProducts)
			r.Post("/", handlers.CreateProduct)
			r.Get("/{id}", handlers.GetProduct)
			r.Put("/{id}", handlers.UpdateProduct)
			r.Delete("/{id}", handlers.DeleteProduct)
		})

		// Orders
		r.Get("/orders/{id}", handlers.GetOrder)
	})

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
