package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv задаёт минимальный набор обязательных переменных.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DQ_DB_HOST", "localhost")
	t.Setenv("DQ_DB_NAME", "documentqa")
	t.Setenv("DQ_DB_USER", "documentqa")
	t.Setenv("DQ_DB_PASSWORD", "secret")
	t.Setenv("DQ_JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, хотели 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, хотели info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, хотели json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, хотели 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, хотели disable", cfg.DBSSLMode)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, хотели пустую строку", cfg.RedisAddr)
	}
	if cfg.MemCacheSize != 10000 {
		t.Errorf("MemCacheSize = %d, хотели 10000", cfg.MemCacheSize)
	}
	if cfg.MemCacheTTL != 30*time.Minute {
		t.Errorf("MemCacheTTL = %v, хотели 30m", cfg.MemCacheTTL)
	}
	if cfg.JWTTTL != time.Hour {
		t.Errorf("JWTTTL = %v, хотели 1h", cfg.JWTTTL)
	}
	if cfg.JWTLeeway != 30*time.Second {
		t.Errorf("JWTLeeway = %v, хотели 30s", cfg.JWTLeeway)
	}
	if cfg.JWTIssuer != "document-qa" {
		t.Errorf("JWTIssuer = %q, хотели document-qa", cfg.JWTIssuer)
	}
	if cfg.MaxUploadSize != 32<<20 {
		t.Errorf("MaxUploadSize = %d, хотели %d", cfg.MaxUploadSize, 32<<20)
	}
	if cfg.DephealthIsEntry {
		t.Error("DephealthIsEntry должен быть false по умолчанию")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DQ_PORT", "9090")
	t.Setenv("DQ_LOG_LEVEL", "debug")
	t.Setenv("DQ_LOG_FORMAT", "text")
	t.Setenv("DQ_REDIS_ADDR", "redis:6379")
	t.Setenv("DQ_REDIS_DB", "2")
	t.Setenv("DQ_JWT_TTL", "15m")
	t.Setenv("DQ_DEPHEALTH_ISENTRY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, хотели 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, хотели debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, хотели text", cfg.LogFormat)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("RedisAddr = %q, хотели redis:6379", cfg.RedisAddr)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, хотели 2", cfg.RedisDB)
	}
	if cfg.JWTTTL != 15*time.Minute {
		t.Errorf("JWTTTL = %v, хотели 15m", cfg.JWTTTL)
	}
	if !cfg.DephealthIsEntry {
		t.Error("DephealthIsEntry должен быть true")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"без хоста БД", "DQ_DB_HOST"},
		{"без имени БД", "DQ_DB_NAME"},
		{"без пользователя БД", "DQ_DB_USER"},
		{"без пароля БД", "DQ_DB_PASSWORD"},
		{"без JWT-секрета", "DQ_JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.missing, "")

			_, err := Load()
			if err == nil {
				t.Fatal("Load() должен вернуть ошибку")
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("ошибка %q не упоминает %s", err, tt.missing)
			}
		})
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"нечисловой порт", "DQ_PORT", "восемьдесят"},
		{"неизвестный уровень логов", "DQ_LOG_LEVEL", "verbose"},
		{"неизвестный формат логов", "DQ_LOG_FORMAT", "xml"},
		{"некорректная длительность", "DQ_JWT_TTL", "1 час"},
		{"некорректное булево", "DQ_DEPHEALTH_ISENTRY", "да"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatal("Load() должен вернуть ошибку")
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.local",
		DBPort:     5433,
		DBName:     "documentqa",
		DBUser:     "app",
		DBPassword: "pw",
		DBSSLMode:  "require",
	}

	want := "postgres://app:pw@db.local:5433/documentqa?sslmode=require"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, хотели %q", got, want)
	}
}
