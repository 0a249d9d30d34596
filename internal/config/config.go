// Пакет config — загрузка и валидация конфигурации Document QA Service
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Document QA Service.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration
	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
	// Максимальный размер multipart-загрузки в байтах (по умолчанию 32 MiB)
	MaxUploadSize int64

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Redis (кэш) ---

	// Адрес Redis (host:port). Пустая строка — in-memory кэш вместо Redis.
	RedisAddr     string
	RedisDB       int
	RedisPassword string

	// --- In-memory кэш (fallback при пустом DQ_REDIS_ADDR) ---

	// Максимальное количество записей in-memory кэша
	MemCacheSize int
	// TTL записей in-memory кэша (гигиена ёмкости, не механизм консистентности)
	MemCacheTTL time.Duration

	// --- JWT ---

	// Секрет для подписи HS256 (обязательный)
	JWTSecret string
	// Время жизни access-токена (по умолчанию 1h)
	JWTTTL time.Duration
	// Допустимое отклонение времени при проверке JWT (по умолчанию 30s)
	JWTLeeway time.Duration
	// Issuer токенов
	JWTIssuer string

	// --- Dephealth (topologymetrics) ---

	// Имя группы в метриках dephealth
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Лейбл isentry=yes для всех зависимостей
	DephealthIsEntry bool
}

// DatabaseDSN возвращает DSN подключения к PostgreSQL для pgx.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("DQ_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("DQ_PORT: %w", err)
	}

	logLevel := getEnvDefault("DQ_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("DQ_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("DQ_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DQ_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("DQ_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("DQ_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("DQ_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("DQ_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.MaxUploadSize, err = getEnvInt64("DQ_MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("DQ_MAX_UPLOAD_SIZE: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("DQ_DB_HOST")
	if err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("DQ_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("DQ_DB_PORT: %w", err)
	}
	cfg.DBName, err = getEnvRequired("DQ_DB_NAME")
	if err != nil {
		return nil, err
	}
	cfg.DBUser, err = getEnvRequired("DQ_DB_USER")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword, err = getEnvRequired("DQ_DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("DQ_DB_SSL_MODE", "disable")

	// --- Redis ---

	cfg.RedisAddr = getEnvDefault("DQ_REDIS_ADDR", "")
	cfg.RedisDB, err = getEnvInt("DQ_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("DQ_REDIS_DB: %w", err)
	}
	cfg.RedisPassword = getEnvDefault("DQ_REDIS_PASSWORD", "")

	// --- In-memory кэш ---

	cfg.MemCacheSize, err = getEnvInt("DQ_MEMCACHE_SIZE", 10000)
	if err != nil {
		return nil, fmt.Errorf("DQ_MEMCACHE_SIZE: %w", err)
	}
	cfg.MemCacheTTL, err = getEnvDuration("DQ_MEMCACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DQ_MEMCACHE_TTL: %w", err)
	}

	// --- JWT ---

	cfg.JWTSecret, err = getEnvRequired("DQ_JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL, err = getEnvDuration("DQ_JWT_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DQ_JWT_TTL: %w", err)
	}
	cfg.JWTLeeway, err = getEnvDuration("DQ_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_JWT_LEEWAY: %w", err)
	}
	cfg.JWTIssuer = getEnvDefault("DQ_JWT_ISSUER", "document-qa")

	// --- Dephealth ---

	cfg.DephealthGroup = getEnvDefault("DQ_DEPHEALTH_GROUP", "document-qa")
	cfg.DephealthCheckInterval, err = getEnvDuration("DQ_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthIsEntry, err = getEnvBool("DQ_DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("DQ_DEPHEALTH_ISENTRY: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64-значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
