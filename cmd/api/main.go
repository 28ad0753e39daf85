package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/catalog"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/http/handlers"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/http/httpapi"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/infra"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/infra/credentials"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/infra/geoip"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/middleware"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/orchestrator"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers/dashscope"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers/elevenlabs"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers/kling"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers/leonardo"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	registry, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load model catalog")
	}

	// Per-caller credentials come from the database when one is configured;
	// otherwise the service runs single-tenant on env-seeded keys.
	var resolver orchestrator.CredentialResolver
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		resolver = credentials.NewStore(dbpool)
	} else {
		resolver = credentials.NewStatic(map[providers.Kind]string{
			providers.KindDashScope:  cfg.DashScopeAPIKey,
			providers.KindLeonardo:   cfg.LeonardoAPIKey,
			providers.KindKling:      cfg.KlingAPIKey,
			providers.KindElevenLabs: cfg.ElevenLabsAPIKey,
		})
	}

	orch := orchestrator.New(orchestrator.Options{
		Registry: registry,
		Adapters: []providers.Adapter{
			dashscope.NewClient(dashscope.Options{BaseURL: cfg.DashScopeBaseURL, Logger: &logger}),
			leonardo.NewClient(leonardo.Options{BaseURL: cfg.LeonardoBaseURL, Logger: &logger}),
			kling.NewClient(kling.Options{BaseURL: cfg.KlingBaseURL, Logger: &logger}),
			elevenlabs.NewClient(elevenlabs.Options{BaseURL: cfg.ElevenLabsBaseURL, Logger: &logger}),
		},
		Credentials: resolver,
		Policies: orchestrator.Policies{
			Image: orchestrator.PollPolicy{Interval: cfg.ImagePollInterval, MaxAttempts: cfg.ImagePollAttempts, MaxElapsed: cfg.ImagePollBudget},
			Video: orchestrator.PollPolicy{Interval: cfg.VideoPollInterval, MaxAttempts: cfg.VideoPollAttempts, MaxElapsed: cfg.VideoPollBudget},
			Audio: orchestrator.PollPolicy{Interval: cfg.AudioPollInterval, MaxAttempts: cfg.AudioPollAttempts, MaxElapsed: cfg.AudioPollBudget},
		},
		Logger: logger,
	})

	var lookup middleware.CountryLookup
	countryResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if countryResolver != nil {
		lookup = countryResolver.CountryCode
	}

	app := handlers.NewApp(orch, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLanguage: cfg.DefaultLocale,
		CountryLookup:   lookup,
		MaxInflight:     cfg.MaxInflightGenerations,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
