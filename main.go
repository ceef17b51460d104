package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msomdec/prayerlift/internal/ai"
	"github.com/msomdec/prayerlift/internal/config"
	"github.com/msomdec/prayerlift/internal/handler"
	"github.com/msomdec/prayerlift/internal/repository/sqlite"
	"github.com/msomdec/prayerlift/internal/seed"
	"github.com/msomdec/prayerlift/internal/service"
)

var (
	rootCmd = &cobra.Command{
		Use:          "prayerlift",
		Short:        "Share prayer requests and listen to them read aloud",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users and prayers",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, installs the default logger and opens the
// migrated database.
func setup(ctx context.Context) (*config.Config, *sqlite.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return nil, nil, err
	}
	slog.SetDefault(newLogger(cfg))

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		slog.Error("failed to run migrations", "error", err)
		return nil, nil, err
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)
	return cfg, db, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	case "both":
		return slog.New(slog.NewMultiHandler(
			slog.NewTextHandler(os.Stdout, logOpts),
			slog.NewJSONHandler(os.Stderr, logOpts),
		))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, db, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := seed.Run(cmd.Context(), db, slog.Default())
	if err != nil {
		slog.Error("failed to seed sample data", "error", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d prayers, %d marks into %s\n",
		res.Users, res.Prayers, res.Marks, cfg.DatabasePath)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, db, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	logger := slog.Default()

	store, err := newAudioStore(cmd.Context(), cfg, db, logger)
	if err != nil {
		slog.Error("failed to open audio cache", "backend", cfg.AudioCacheBackend, "error", err)
		return err
	}
	defer store.Close()
	slog.Info("audio cache ready", "backend", cfg.AudioCacheBackend)

	anthropic := ai.NewAnthropicProvider(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AIMaxTokens, cfg.AITimeout)
	composer := ai.NewPrayerComposer(anthropic, cfg.AITimeout, logger)
	if cfg.AnthropicAPIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY not set, generated prayers use the fallback text")
	}

	sessionService := service.NewSessionService(db, service.SessionConfig{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Logger: logger,
	})
	authService := service.NewAuthService(db, sessionService, cfg.BcryptCost)
	prayerService := service.NewPrayerService(db, composer, logger)
	audioService := service.NewAudioService(db.Prayers(), newAudioCache(cfg, store, logger))

	limiter := service.NewTokenBucket(cfg.RateLimitRPS, float64(cfg.RateLimitBurst))
	defer limiter.Close()

	h, err := handler.New(handler.Services{
		Sessions:     sessionService,
		Auth:         authService,
		Prayers:      prayerService,
		Audio:        audioService,
		Limiter:      limiter,
		CookieSecure: cfg.CookieSecure,
	}, logger)
	if err != nil {
		slog.Error("failed to build handler", "error", err)
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		return err
	}
	prayerService.Wait()
	slog.Info("server stopped")
	return nil
}
