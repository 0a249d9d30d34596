// Пакет server — HTTP-сервер с маршрутизацией chi и graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на внешнем балансировщике.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/docmgmt/document-qa/internal/api/handlers"
	"github.com/docmgmt/document-qa/internal/api/middleware"
	"github.com/docmgmt/document-qa/internal/config"
	"github.com/docmgmt/document-qa/internal/domain/rbac"
)

// Handlers — набор обработчиков для маршрутизации.
type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Files  *handlers.FileHandler
	Viewer *handlers.ViewerHandler
	QA     *handlers.QAHandler
	Admin  *handlers.AdminHandler
}

// Server — HTTP-сервер Document QA Service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
// jwtAuth применяется ко всем маршрутам, кроме публичных
// (health, metrics, login, registration).
func New(cfg *config.Config, logger *slog.Logger, h *Handlers, jwtAuth *middleware.JWTAuth) *Server {
	router := chi.NewRouter()

	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(JWTAuthWithExclusions(jwtAuth.Middleware(),
		"/health/", "/metrics", "/login", "/registration",
	))

	// Публичные маршруты
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)
	router.Post("/login", h.Auth.Login)
	router.Post("/registration", h.Auth.Register)

	// Чтение — любая аутентифицированная роль
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(rbac.RoleAdmin, rbac.RoleEditor, rbac.RoleViewer))

		r.Get("/fileviewer/{id}", h.Viewer.Download)
		r.Get("/fileviewer/meta/{id}", h.Viewer.Metadata)
		r.Get("/fileviewer/editor/{id}", h.Viewer.ListByEditor)
		r.Get("/fileviewer/filetype", h.Viewer.ListByType)
		r.Get("/fileviewer/keyword", h.Viewer.ListByKeyword)
		r.Post("/qa/ask", h.QA.Ask)
	})

	// Мутации файлов — ADMIN или EDITOR
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(rbac.RoleAdmin, rbac.RoleEditor))

		r.Post("/file/upload", h.Files.Upload)
		r.Put("/file/update/{id}", h.Files.Update)
		r.Delete("/file/delete/{id}", h.Files.Delete)
	})

	// Администрирование — только ADMIN
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(rbac.RoleAdmin))

		r.Get("/admin/users", h.Admin.ListUsers)
		r.Get("/admin/user/{id}", h.Admin.GetUser)
		r.Put("/admin/role", h.Admin.UpdateRole)
		r.Delete("/admin/delete/{id}", h.Admin.DeleteUser)
		r.Get("/admin/cache/stats", h.Admin.CacheStats)
		r.Get("/admin/cache/clear", h.Admin.CacheClear)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// JWTAuthWithExclusions оборачивает middleware, пропуская указанные пути.
// Запросы к путям, начинающимся с любого из excludePrefixes, проходят без middleware.
func JWTAuthWithExclusions(mw func(http.Handler) http.Handler, excludePrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			mw(next).ServeHTTP(w, r)
		})
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
