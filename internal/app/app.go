package app

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"wedding-app-go/internal/auth"
	"wedding-app-go/internal/config"
	"wedding-app-go/internal/db"
	rsvpdomain "wedding-app-go/internal/domain/rsvp"
	"wedding-app-go/internal/repository/inmemory"
	rsvprepo "wedding-app-go/internal/repository/rsvp"
	"wedding-app-go/internal/site"
	"wedding-app-go/internal/transport/httpserver"
	"wedding-app-go/internal/transport/httpserver/handler"
	"wedding-app-go/internal/transport/httpserver/middleware"
	"wedding-app-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, log)
}

func NewWithConfig(cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: initializing storage", "driver", cfg.DB.Driver)
	repo, dbConn, err := openRepository(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: loading site content")
	content, err := site.LoadContent(cfg.Site.ContentPath)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}
	page, err := site.New(content, cfg.RSVP.MaxPartySize, log)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}

	rsvpService := rsvpdomain.NewServiceWithConfig(repo, rsvpdomain.Config{MaxPartySize: cfg.RSVP.MaxPartySize}).
		WithStatsCache(inmemory.NewStatsCache(), cfg.RSVP.StatsCacheTTL)
	admin := middleware.NewAdminAuth(auth.NewAdminTokens(cfg.Admin), log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handler.New(rsvpService, log), admin, page, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func openRepository(cfg config.DBConfig, log logger.Logger) (rsvpdomain.Repository, *gorm.DB, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("app: using in-memory storage, RSVPs are lost on restart")
		return inmemory.NewPartyRepository(), nil, nil
	}

	dbConn, err := db.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		log.Info("db: applying migrations")
		if err := db.Migrate(dbConn); err != nil {
			_ = db.Close(dbConn)
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return rsvprepo.NewGorm(dbConn), dbConn, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	return db.Close(a.db)
}

// Migrate applies the schema for the configured driver without starting the server.
func Migrate(log logger.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	if cfg.DB.Driver == config.DriverMemory {
		log.Info("db: memory driver has no schema")
		return nil
	}

	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	if err := db.Migrate(dbConn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("db: migrations applied")
	return nil
}
