// Package main is the entry point for the YelpCamp server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pkordes/yelp-camp/internal/auth"
	"github.com/pkordes/yelp-camp/internal/config"
	"github.com/pkordes/yelp-camp/internal/flash"
	"github.com/pkordes/yelp-camp/internal/geocode"
	"github.com/pkordes/yelp-camp/internal/handler"
	"github.com/pkordes/yelp-camp/internal/imagestore"
	"github.com/pkordes/yelp-camp/internal/middleware"
	"github.com/pkordes/yelp-camp/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 15 * time.Second

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// The default zerolog logger writes JSON to stderr before setup.
		log.Fatal().Err(err).Msg("configuration error")
	}

	// --- Logger -----------------------------------------------------------
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// run wires the application and serves until a shutdown signal arrives or
// the listener fails. Deferred cleanup runs on every return path.
func run(cfg config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	// --- Storage ----------------------------------------------------------
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}
	defer store.close()
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("database connection established")

	// --- Collaborators ----------------------------------------------------
	images, err := imagestore.NewS3Store(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("configure image store: %w", err)
	}
	geocoder := geocode.NewMapbox(cfg.MapboxToken)
	tokens := auth.NewIssuer(cfg.TokenSecret)
	flashes := flash.NewStore(cfg.SessionSecret, cfg.SecureCookies)

	camps := service.NewCampgroundService(store.camps, store.users, geocoder, images)
	feed := service.NewMapFeedService(store.camps)
	srvHandlers := handler.NewServer(camps, feed, flashes, handler.Options{
		MapboxToken:    cfg.MapboxToken,
		ThumbnailQuery: cfg.ThumbnailQuery,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → RequestLogger →
	// Recoverer → CORS → MaxBodySize → MethodOverride → Authenticate.
	// MethodOverride must run before routing so PUT/DELETE forms match.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadBytes))
	r.Use(middleware.MethodOverride)
	r.Use(middleware.Authenticate(tokens))
	srvHandlers.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Uploads stream through to the image store, so writes get more room
	// than the reads.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	return serve(srv, stop, logger)
}

// serve runs srv until it fails or a value arrives on stop. On stop,
// in-flight requests get up to shutdownTimeout to complete before the
// server is closed.
func serve(srv *http.Server, stop <-chan os.Signal, logger zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// setupLogger configures the global zerolog logger and returns it.
// format "console" switches to human-readable output for local development.
func setupLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	logger = logger.With().Timestamp().Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}
