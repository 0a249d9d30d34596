// Пакет database — PostgreSQL-хранилище сервиса: схема (golang-migrate,
// embedded-миграции), пул подключений pgx и readiness-проверка.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docmgmt/document-qa/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const readinessTimeout = 3 * time.Second

// DB владеет пулом подключений к PostgreSQL.
// Реализует handlers.ReadinessChecker.
type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New приводит схему к актуальной версии и открывает пул подключений.
// Возвращает готовое к работе хранилище либо ошибку — частично
// инициализированное состояние наружу не выходит.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	log := logger.With(slog.String("component", "database"))

	if err := applyMigrations(cfg, log); err != nil {
		return nil, fmt.Errorf("миграции схемы: %w", err)
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info("PostgreSQL готов",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
	)

	return &DB{pool: pool, logger: log}, nil
}

// Pool возвращает пул для репозиториев (DBTX).
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Close закрывает пул подключений.
func (d *DB) Close() {
	d.pool.Close()
}

// CheckReady проверяет доступность PostgreSQL через ping с таймаутом.
// Возвращает статус ("ok", "fail") и сообщение для health endpoint.
func (d *DB) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
	defer cancel()

	if err := d.pool.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	return "ok", "пул подключений активен"
}

// openPool создаёт пул и проверяет подключение ping'ом.
func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("парсинг DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("создание пула подключений: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
	}
	return pool, nil
}

// applyMigrations накатывает embedded-миграции до последней версии.
func applyMigrations(cfg *config.Config, log *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(cfg))
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("Схема актуальна, миграции не требуются")
	case err != nil:
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("Схема БД на актуальной версии",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// migrateURL — тот же DSN, что и у пула, но со схемой pgx5,
// как того требует драйвер golang-migrate.
func migrateURL(cfg *config.Config) string {
	return "pgx5" + strings.TrimPrefix(cfg.DatabaseDSN(), "postgres")
}
