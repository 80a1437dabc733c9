package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"coldchain/cmd"
	"coldchain/internal/adapters/out/postgres/sessionstore"
	"coldchain/internal/adapters/out/postgres/stoprepo"
	"coldchain/internal/core/application/usecases/commands"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	configs := getConfigs(logger)

	db, err := openDatabase(configs)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(configs, db, logger)
	if err != nil {
		logger.Error("failed to build composition root", "error", err)
		os.Exit(1)
	}

	if err = loadManifest(root); err != nil {
		logger.Error("failed to load delivery manifest", "error", err)
		os.Exit(1)
	}

	jobManager := root.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		logger.Error("failed to start scheduled jobs", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	root.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if serveErr := e.Start("0.0.0.0:" + configs.HTTPPort); serveErr != nil {
			logger.Info("http server stopped", "error", serveErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	jobManager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
}

// loadManifest seeds the stops, the stability sessions, and the initial
// route. Restart recovery happens here: persisted countdown records are
// restored before any tick fires.
func loadManifest(root *cmd.CompositionRoot) error {
	handler := root.CreateLoadManifestCommandHandler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return handler.Handle(ctx, commands.NewLoadManifestCommand())
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode,
	)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&stoprepo.StopDTO{}, &sessionstore.SessionRecordDTO{}); err != nil {
		return nil, err
	}

	return db, nil
}

func getConfigs(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Warn("no .env file found, using process environment")
	}

	return cmd.Config{
		HTTPPort:             envOrDefault("HTTP_PORT", "8080"),
		DBHost:               envOrDefault("DB_HOST", "localhost"),
		DBPort:               envOrDefault("DB_PORT", "5432"),
		DBUser:               envOrDefault("DB_USER", "postgres"),
		DBPassword:           envOrDefault("DB_PASSWORD", "postgres"),
		DBName:               envOrDefault("DB_NAME", "coldchain"),
		DBSslMode:            envOrDefault("DB_SSLMODE", "disable"),
		OsrmBaseURL:          envOrDefault("OSRM_BASE_URL", "http://localhost:5000"),
		StabilityBaseURL:     envOrDefault("STABILITY_BASE_URL", "http://localhost:9100"),
		RedisAddr:            envOrDefault("REDIS_ADDR", "localhost:6379"),
		ManifestPath:         envOrDefault("MANIFEST_PATH", "manifest.yaml"),
		TrackingMode:         envOrDefault("TRACKING_MODE", cmd.TrackingModeSimulated),
		TrackerBaseURL:       envOrDefault("TRACKER_BASE_URL", "http://localhost:9200"),
		AssumedSpeedMps:      envFloatOrDefault("ASSUMED_SPEED_MPS", 8.0, logger),
		LegCacheTTLSeconds:   envIntOrDefault("LEG_CACHE_TTL_SECONDS", 3600, logger),
		SimBaseTempC:         envFloatOrDefault("SIM_BASE_TEMP_C", 5.0, logger),
		SimAmplitudeC:        envFloatOrDefault("SIM_AMPLITUDE_C", 4.0, logger),
		SimPeriodSeconds:     envIntOrDefault("SIM_PERIOD_SECONDS", 180, logger),
		ClientTimeoutSeconds: envIntOrDefault("CLIENT_TIMEOUT_SECONDS", 5, logger),
	}
}

func envOrDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int, logger *slog.Logger) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer in environment, using default", "key", key, "value", raw)
		return fallback
	}
	return value
}

func envFloatOrDefault(key string, fallback float64, logger *slog.Logger) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("invalid float in environment, using default", "key", key, "value", raw)
		return fallback
	}
	return value
}
