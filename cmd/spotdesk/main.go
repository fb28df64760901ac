package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"spotdesk/internal/app"
	"spotdesk/internal/cache"
	"spotdesk/internal/config"
	"spotdesk/internal/covers"
	"spotdesk/internal/handlers"
	"spotdesk/internal/models"
	"spotdesk/internal/repositories"
	"spotdesk/internal/search"
	"spotdesk/internal/services"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	coverL1Items         = 256
	memoryCoverItems     = 1024
	memoryCrashRecords   = 100
	settingsPollInterval = 5 * time.Second
	crashPruneInterval   = 6 * time.Hour
	shutdownTimeout      = 10 * time.Second
	defaultTokenLifetime = 24 * time.Hour
)

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// `spotdesk token [subject]` prints a control API token and exits
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("spotdesk stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envLimit := cfg.SearchLimit
	cfg.SearchLimit = config.GetSettings().SearchLimitOr(envLimit)

	// Cover cache
	var coverCache cache.Cache
	if cfg.ValkeyURL != "" {
		valkey, err := cache.NewValkeyCache(cfg.ValkeyURL)
		if err != nil {
			return fmt.Errorf("failed to connect to valkey: %w", err)
		}
		coverCache = cache.NewMultiLevelCache(valkey, coverL1Items)
		slog.Info("Cover cache backed by Valkey")
	} else {
		coverCache = cache.NewMemoryCache(memoryCoverItems)
		slog.Info("Cover cache kept in memory")
	}
	defer coverCache.Close()

	// Crash log
	var (
		crashes  repositories.CrashRepository
		database *models.Database
		mongoDB  *mongo.Database
	)
	if cfg.MongodbURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		db, err := models.NewDatabase(connectCtx, cfg.MongodbURL, cfg.MongodbDatabase)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close(context.Background())

		if err := db.CreateIndexes(ctx); err != nil {
			slog.Warn("Failed to create crash log indexes", "error", err)
		}
		database, mongoDB = db, db.DB
		crashes = repositories.NewMongoCrashRepository(db)
		slog.Info("Crash log stored in MongoDB", "database", cfg.MongodbDatabase)
	} else {
		crashes = repositories.NewMemoryCrashRepository(memoryCrashRecords)
		slog.Info("Crash log kept in memory")
	}

	catalog := services.NewSpotifyService(services.SpotifyOptions{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RefreshToken: cfg.SpotifyRefreshToken,
		APIURL:       cfg.SpotifyAPIURL,
		TokenURL:     cfg.SpotifyTokenURL,
		Timeout:      cfg.SpotifyTimeout,
		RetryCount:   2,
	})

	inbox := search.NewInbox(repositories.NewCrashRecorder(crashes, version), slog.Default())
	navigator := app.NewNavigator(catalog, app.DefaultStatusLogSize)
	resolver := covers.NewResolver(coverCache, covers.Options{
		Height: cfg.CoverHeight,
		TTL:    cfg.CoverCacheTTL,
	})
	session := search.NewSession(catalog, navigator, inbox, search.SessionOptions{
		Limit:  cfg.SearchLimit,
		Covers: resolver,
		Logger: slog.Default(),
	})

	go inbox.Run(ctx)

	// a limit removed from the file falls back to SEARCH_LIMIT
	config.StartSettingsWatcher(ctx, settingsPollInterval, func(s *config.Settings) {
		session.SetLimit(s.SearchLimitOr(envLimit))
	})
	go pruneCrashes(ctx, crashes)

	if err := session.Open(ctx); err != nil {
		return fmt.Errorf("failed to open search: %w", err)
	}

	healthChecks := map[string]handlers.HealthCheck{
		"spotify": catalog.Health,
		"cache":   coverCache.Health,
	}
	if database != nil {
		healthChecks["database"] = database.Health
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.RegisterRoutes(router, handlers.Handlers{
		Search:     handlers.NewSearchHandler(session),
		Navigation: handlers.NewNavigationHandler(navigator),
		Crashes:    handlers.NewCrashHandler(crashes),
		Admin:      handlers.NewAdminHandler(crashes, mongoDB),
		Health:     handlers.NewHealthHandler(healthChecks),
	}, cfg.ControlAPISecret)

	if !cfg.AuthEnabled() {
		slog.Warn("CONTROL_API_SECRET is not set; the control API is unauthenticated")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Control API listening", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("control API failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// apply whatever arrived after the listener closed
	if n := inbox.Drain(); n > 0 {
		slog.Info("Drained inbox", "functions", n)
	}
	return nil
}

// pruneCrashes trims the crash log to the configured retention
func pruneCrashes(ctx context.Context, crashes repositories.CrashRepository) {
	prune := func() {
		retention := config.GetSettings().CrashRetention()
		if retention == 0 {
			return
		}
		deleted, err := crashes.DeleteOlderThan(ctx, time.Now().Add(-retention))
		if err != nil {
			slog.Warn("Failed to prune crash log", "error", err)
			return
		}
		if deleted > 0 {
			slog.Info("Pruned crash log", "deleted", deleted, "retention", retention)
		}
	}

	prune()
	ticker := time.NewTicker(crashPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

func printToken(args []string) error {
	secret := os.Getenv("CONTROL_API_SECRET")
	if secret == "" {
		return errors.New("CONTROL_API_SECRET is not set")
	}
	subject := "spotdesk"
	if len(args) > 0 {
		subject = args[0]
	}

	token, err := handlers.IssueToken(secret, subject, defaultTokenLifetime)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
