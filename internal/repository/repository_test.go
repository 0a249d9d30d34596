package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/docmgmt/document-qa/internal/config"
	"github.com/docmgmt/document-qa/internal/database"
	"github.com/docmgmt/document-qa/internal/domain/model"
	"github.com/docmgmt/document-qa/internal/domain/rbac"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool; очистка — через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("documentqa_test"),
		postgres.WithUsername("documentqa"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("DQ_DB_HOST", host)
	os.Setenv("DQ_DB_PORT", port.Port())
	os.Setenv("DQ_DB_NAME", "documentqa_test")
	os.Setenv("DQ_DB_USER", "documentqa")
	os.Setenv("DQ_DB_PASSWORD", "test-password")
	os.Setenv("DQ_DB_SSL_MODE", "disable")
	os.Setenv("DQ_JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка инициализации БД: %v", err)
	}
	t.Cleanup(db.Close)

	return db.Pool()
}

// createTestUser вставляет пользователя для FK-ссылок файлов.
func createTestUser(t *testing.T, pool *pgxpool.Pool, username, role string) *model.User {
	t.Helper()

	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$argon2id$test",
		Role:         role,
	}
	if err := NewUserRepository(pool).Create(context.Background(), u); err != nil {
		t.Fatalf("Create(user) ошибка: %v", err)
	}
	return u
}

// --- Тесты UserRepository ---

func TestUserRepositoryCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	u := createTestUser(t, pool, "ivanov", rbac.RoleViewer)
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	// Дубликат имени — ErrConflict
	dup := &model.User{
		ID:           uuid.NewString(),
		Username:     "ivanov",
		PasswordHash: "$argon2id$test",
		Role:         rbac.RoleViewer,
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат): ошибка = %v, ожидалась ErrConflict", err)
	}

	// GetByUsername
	got, err := repo.GetByUsername(ctx, "ivanov")
	if err != nil {
		t.Fatalf("GetByUsername() ошибка: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %q, хотели %q", got.ID, u.ID)
	}

	// UpdateRole
	if err := repo.UpdateRole(ctx, u.ID, rbac.RoleEditor); err != nil {
		t.Fatalf("UpdateRole() ошибка: %v", err)
	}
	got, _ = repo.GetByID(ctx, u.ID)
	if got.Role != rbac.RoleEditor {
		t.Errorf("Role = %q, хотели %q", got.Role, rbac.RoleEditor)
	}

	// List
	users, total, err := repo.List(ctx, PageQuery{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Errorf("List() = %d записей (total %d), хотели 1", len(users), total)
	}

	// Delete
	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID после Delete: ошибка = %v, ожидалась ErrNotFound", err)
	}
	if err := repo.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete: ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// --- Тесты FileRepository ---

func TestFileRepositoryCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(pool)

	editor := createTestUser(t, pool, "editor", rbac.RoleEditor)

	desc := "квартальный отчёт"
	f := &model.File{
		ID:          uuid.NewString(),
		Title:       "Отчёт Q1",
		Keyword:     "отчёт финансы бюджет",
		Filename:    "report.txt",
		ContentType: "text/plain",
		Description: &desc,
		Content:     "текст отчёта",
		Data:        []byte("текст отчёта"),
		FileSize:    23,
		EditorID:    editor.ID,
	}

	// Create
	if err := repo.Create(ctx, f); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if f.UploadTime.IsZero() {
		t.Error("UploadTime не установлен")
	}

	// GetByID возвращает и бинарное содержимое
	got, err := repo.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Title != "Отчёт Q1" {
		t.Errorf("Title = %q, хотели %q", got.Title, "Отчёт Q1")
	}
	if string(got.Data) != "текст отчёта" {
		t.Errorf("Data = %q, хотели %q", got.Data, "текст отчёта")
	}
	if got.Description == nil || *got.Description != desc {
		t.Errorf("Description = %v, хотели %q", got.Description, desc)
	}

	// ListByKeyword — подстрока без учёта регистра
	items, total, err := repo.ListByKeyword(ctx, "ФИНАНСЫ", PageQuery{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("ListByKeyword() ошибка: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("ListByKeyword() = %d записей (total %d), хотели 1", len(items), total)
	}
	// Списочные запросы не тянут данные
	if len(items[0].Data) != 0 {
		t.Error("списочный запрос не должен возвращать data")
	}

	// ListByType — подстрока content type
	_, total, err = repo.ListByType(ctx, "text", PageQuery{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("ListByType() ошибка: %v", err)
	}
	if total != 1 {
		t.Errorf("ListByType() total = %d, хотели 1", total)
	}

	// ListByEditor
	_, total, err = repo.ListByEditor(ctx, editor.ID, PageQuery{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("ListByEditor() ошибка: %v", err)
	}
	if total != 1 {
		t.Errorf("ListByEditor() total = %d, хотели 1", total)
	}

	// Update заменяет запись и обновляет upload_time
	prevUpload := f.UploadTime
	f.Title = "Отчёт Q1 (исправленный)"
	time.Sleep(10 * time.Millisecond)
	if err := repo.Update(ctx, f); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if !f.UploadTime.After(prevUpload) {
		t.Error("UploadTime должен обновиться при замене")
	}

	// Delete
	if err := repo.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := repo.GetByID(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID после Delete: ошибка = %v, ожидалась ErrNotFound", err)
	}

	// Вставка от имени удалённого редактора — ErrNotFound (внешний ключ)
	if err := NewUserRepository(pool).Delete(ctx, editor.ID); err != nil {
		t.Fatalf("Delete(editor) ошибка: %v", err)
	}
	stale := *f
	stale.ID = uuid.NewString()
	if err := repo.Create(ctx, &stale); !errors.Is(err, ErrNotFound) {
		t.Errorf("Create с удалённым редактором: ошибка = %v, ожидалась ErrNotFound", err)
	}
}
