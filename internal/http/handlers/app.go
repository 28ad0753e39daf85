package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/orchestrator"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// Generator is the slice of the orchestrator the HTTP layer depends on.
type Generator interface {
	Generate(ctx context.Context, in orchestrator.Input) orchestrator.Result
	CheckStatus(ctx context.Context, callerID string, kind providers.Kind, taskID string) orchestrator.Result
}

// App is the handler container; collaborators are injected at construction.
type App struct {
	Generator Generator
	Logger    zerolog.Logger
}

// NewApp wires the handler container.
func NewApp(gen Generator, logger zerolog.Logger) *App {
	return &App{Generator: gen, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"status": "failure", "error_kind": kind, "message": message})
}

// Health reports process liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
