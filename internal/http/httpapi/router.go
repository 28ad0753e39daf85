package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/http/handlers"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/middleware"
)

// Options carries the router's middleware configuration.
type Options struct {
	AllowedOrigins  []string
	DefaultLanguage string
	CountryLookup   middleware.CountryLookup
	MaxInflight     int
	Logger          zerolog.Logger
}

// NewRouter assembles the HTTP surface: one blocking generate endpoint, one
// single-shot status endpoint, and health.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.CallerID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Language(opts.DefaultLanguage, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generations", func(r chi.Router) {
		r.With(middleware.Inflight(opts.MaxInflight)).Post("/", app.Generate)
		r.Get("/{provider}/{task_id}", app.Status)
	})

	return r
}
