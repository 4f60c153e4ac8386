// Package container wires the full dependency graph: config first, then
// infrastructure, then repositories, services and handlers.
package container

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/cover"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/isbn"
	"library-backend/internal/infrastructure/storage"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"

	authorHandler "library-backend/internal/domains/author/handler"
	authorRepo "library-backend/internal/domains/author/repository"
	authorService "library-backend/internal/domains/author/service"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"

	"github.com/rs/zerolog/log"
)

type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Storage    *storage.MinIOStorage
	ISBNClient *isbn.Client
	Covers     *cover.Client

	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface
	UserRepo   userRepo.RepositoryInterface

	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	BulkImport    *bookService.BulkImportService
	UserService   userService.ServiceInterface

	AuthorHandler     *authorHandler.AuthorHandler
	BookHandler       *bookHandler.BookHandler
	BulkImportHandler *bookHandler.BulkImportHandler
	UserHandler       *userHandler.UserHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("Config loaded")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Object storage is optional. Without it the worker stores upstream
	// cover URLs instead of mirrored copies.
	if cfg.MinIO.Endpoint != "" {
		minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("MinIO unavailable, cover mirroring disabled")
		} else {
			c.Storage = minioStorage
		}
	}

	c.ISBNClient = isbn.NewClient(cfg.ISBNService.URL, cfg.ISBNService.Timeout)
	c.Covers = cover.NewClient(
		cfg.OpenLibrary.BaseURL,
		cfg.OpenLibrary.UserAgent,
		cfg.OpenLibrary.RequestsPerSecond,
		cfg.OpenLibrary.Timeout,
	)

	c.AuthorRepo = authorRepo.NewPostgresRepository(db.Pool, c.Cache)
	c.BookRepo = bookRepo.NewPostgresRepository(db.Pool, c.Cache)
	c.UserRepo = userRepo.NewPostgresRepository(db.Pool)

	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo)
	c.BookService = bookService.NewBookService(c.BookRepo, c.AuthorRepo, c.ISBNClient, c.Covers)
	c.BulkImport = bookService.NewBulkImportService(
		c.BookRepo,
		c.AuthorRepo,
		c.ISBNClient,
		c.Covers,
		cfg.Import.Workers,
	)
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)

	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.BulkImportHandler = bookHandler.NewBulkImportHandler(c.BulkImport)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)

	log.Info().Msg("Container initialized")
	return c, nil
}

// Cleanup releases infrastructure connections in reverse order.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if closer, ok := c.Cache.(interface{ Close() error }); ok {
			closer.Close()
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container cleaned up")
}
