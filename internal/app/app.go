package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/db"
	"github.com/postpilot/postpilot/internal/gallery"
	"github.com/postpilot/postpilot/internal/reddit"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/service"
	"github.com/postpilot/postpilot/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	AuthService    *service.AuthService
	GalleryService *service.GalleryService
	AssetService   *service.AssetService
	RepostService  *service.RepostService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	assetRepository := repository.NewAssetRepository(database)
	repostRepository := repository.NewRepostRepository(database)

	// Storage
	mediaStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Reddit client: log mode when no token is configured (development)
	var redditClient reddit.Client
	if cfg.RedditAccessToken == "" {
		slog.Info("no REDDIT_ACCESS_TOKEN set, reddit client running in log mode")
		redditClient = reddit.NewLogClient()
	} else {
		redditClient = reddit.NewHTTPClient(cfg.RedditAPIURL, cfg.RedditAccessToken, cfg.RedditUserAgent)
	}

	// Services
	eval := gallery.NewEvaluator(cfg.RepostCooldown)
	authService := service.NewAuthService(cfg.APIKeyHash, cfg.JWTSecret, cfg.JWTExpiry)
	assetService := service.NewAssetService(assetRepository, mediaStorage)
	galleryService := service.NewGalleryService(assetRepository, eval, cfg.GalleryPageSize)
	repostService := service.NewRepostService(assetRepository, repostRepository, assetService, redditClient, eval)

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		GalleryService: galleryService,
		AssetService:   assetService,
		RepostService:  repostService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
