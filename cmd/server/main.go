package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/streameme/backend/internal/analyzer"
	"github.com/streameme/backend/internal/api"
	"github.com/streameme/backend/internal/config"
	"github.com/streameme/backend/internal/logger"
	"github.com/streameme/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("STREAMEME_CONFIG")
	if configPath == "" {
		configPath = "streameme.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Advanced.LogLevel)

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatal().Err(err).Msg("failed to create directories")
	}

	// Initialize the scratch area for engine invocations
	spool, err := storage.NewSpool(cfg.Storage.TempDirectory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize temp storage")
	}

	// Initialize analysis history
	var history storage.History
	if cfg.Storage.HistoryDB != "" {
		history, err = storage.NewDuckHistory(cfg.Storage.HistoryDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.HistoryDB).Msg("failed to open history database")
		}
	} else {
		history = storage.NewMemoryHistory()
	}

	// Initialize the analysis engine with a concurrency cap. Inference is
	// resource-heavy; the default cap of one serializes all analyses.
	engine := analyzer.Limit(analyzer.NewSubprocessEngine(analyzer.Config{
		PythonPath:   cfg.Engine.PythonPath,
		InferenceDir: cfg.Engine.InferenceDir,
		Script:       cfg.Engine.Script,
		Timeout:      cfg.EngineTimeout(),
		Logger:       log,
	}, spool), cfg.Engine.MaxConcurrent)

	e := echo.New()
	e.HideBanner = true

	api.SetupMiddleware(e)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Engine:       engine,
		History:      history,
		MaxFileBytes: cfg.Storage.MaxFileBytes,
		Version:      Version,
		Logger:       log,
	})
	api.RegisterRoutes(e, handlers)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("config", configPath).
		Str("listen", cfg.GetServerAddr()).
		Str("data_dir", cfg.Storage.DataDirectory).
		Msg("starting server")

	// log.Fatal never returns; the history store must be closed before it.
	serveErr := e.StartServer(s)
	if err := history.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close history store")
	}
	log.Fatal().Err(serveErr).Msg("server stopped")
}
