// Точка входа Document QA Service.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует региональный кэш (Redis или in-memory), создаёт сервисный
// слой и API handlers, запускает topologymetrics, HTTP-сервер
// с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/docmgmt/document-qa/internal/api/handlers"
	"github.com/docmgmt/document-qa/internal/api/middleware"
	"github.com/docmgmt/document-qa/internal/cache"
	"github.com/docmgmt/document-qa/internal/config"
	"github.com/docmgmt/document-qa/internal/database"
	"github.com/docmgmt/document-qa/internal/repository"
	"github.com/docmgmt/document-qa/internal/server"
	"github.com/docmgmt/document-qa/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Document QA Service запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("DQ_DEPHEALTH_GROUP") == "" {
		logger.Warn("DQ_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. PostgreSQL: миграции схемы + пул подключений
	ctx := context.Background()
	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	pool := db.Pool()

	// 3.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 4. Региональный кэш: Redis при заданном DQ_REDIS_ADDR, иначе in-memory.
	var regionCache cache.RegionCache
	var cacheChecker handlers.ReadinessChecker
	if cfg.RedisAddr != "" {
		// В Redis записи живут до инвалидации (TTL = 0).
		redisCache, cacheErr := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisPassword, 0, logger)
		if cacheErr != nil {
			logger.Error("Ошибка подключения к Redis", slog.String("error", cacheErr.Error()))
			os.Exit(1)
		}
		regionCache = redisCache
		cacheChecker = redisCache
	} else {
		memCache := cache.NewMemoryCache(cfg.MemCacheSize, cfg.MemCacheTTL)
		regionCache = memCache
		cacheChecker = memCache
		logger.Info("DQ_REDIS_ADDR не задан, используется in-memory кэш",
			slog.Int("max_size", cfg.MemCacheSize),
			slog.Duration("ttl", cfg.MemCacheTTL),
		)
	}
	defer regionCache.Close()

	// 5. Repositories
	fileRepo := repository.NewFileRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// 6. Services
	fileSvc := service.NewFileService(fileRepo, regionCache, logger)
	qaSvc := service.NewQAService(fileRepo, regionCache, logger)
	userSvc := service.NewUserService(userRepo, logger)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer, logger)

	// 7. Readiness checkers и handlers
	healthHandler := handlers.NewHealthHandler(db, cacheChecker)

	h := &server.Handlers{
		Health: healthHandler,
		Auth:   handlers.NewAuthHandler(authSvc, logger),
		Files:  handlers.NewFileHandler(fileSvc, cfg.MaxUploadSize, logger),
		Viewer: handlers.NewViewerHandler(fileSvc, logger),
		QA:     handlers.NewQAHandler(qaSvc, logger),
		Admin:  handlers.NewAdminHandler(userSvc, fileSvc, logger),
	}

	// 8. JWT middleware
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLeeway, logger)
	logger.Info("JWT middleware инициализирован", slog.String("issuer", cfg.JWTIssuer))

	// 9. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"document-qa",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseDSN(),
		cfg.DephealthCheckInterval,
		cfg.DephealthIsEntry,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Graceful shutdown фоновых задач
	if dephealthErr == nil {
		dephealthSvc.Stop()
	}

	logger.Info("Document QA Service остановлен")
}
