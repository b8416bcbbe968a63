package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lespal/lespal_server/internal/cache"
	"github.com/lespal/lespal_server/internal/client"
	"github.com/lespal/lespal_server/internal/config"
	"github.com/lespal/lespal_server/internal/controller"
	"github.com/lespal/lespal_server/internal/repository"
	"github.com/lespal/lespal_server/internal/service"
	"go.uber.org/zap"
)

// Server собирает все зависимости приложения
type Server struct {
	App       *fiber.App
	Scheduler *Scheduler
	Cache     *cache.Store
}

// NewServer строит репозитории, сервисы и HTTP-приложение
func NewServer(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) (*Server, error) {
	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	songRepo := repository.NewSongRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	inviteCodeRepo := repository.NewInviteCodeRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)
	secretRepo := repository.NewSecretRepository(pool)

	// Кеш списков с окном устаревания
	cacheStore := cache.NewStore(cache.DefaultTTL, cfg.CachePath)
	if err := cacheStore.Load(); err != nil {
		logger.Warn("Failed to load cache snapshot", zap.Error(err))
	}

	// Сервисы
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, logger)
	sharingService := service.NewSharingService(inviteCodeRepo, linkRepo, userRepo, logger)
	secretService := service.NewSecretService(secretRepo, linkRepo, userRepo, logger)
	songService := service.NewSongService(songRepo, sharingService, cacheStore, logger)
	lessonService := service.NewLessonService(lessonRepo, sharingService, cacheStore, logger)
	insightsService := service.NewInsightsService(
		songService,
		lessonService,
		secretService,
		client.NewGeminiClient(cfg.GeminiModel),
		logger,
	)

	handlers := controller.NewHandlers(
		authService,
		songService,
		lessonService,
		sharingService,
		secretService,
		insightsService,
		client.NewITunesClient(),
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      "lespal-server",
		ErrorHandler: controller.ErrorHandler(logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	controller.RegisterRoutes(app, handlers, authService)

	return &Server{
		App:       app,
		Scheduler: NewScheduler(inviteCodeRepo, logger),
		Cache:     cacheStore,
	}, nil
}
