package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/docmgmt/document-qa/internal/domain/model"
)

// errRow — pgx.Row, Scan которого всегда возвращает заданную ошибку.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

// errDB — DBTX, отдающий одну и ту же ошибку на любой запрос.
type errDB struct {
	err error
}

func (db errDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, db.err
}

func (db errDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, db.err
}

func (db errDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: db.err}
}

func testFile() *model.File {
	return &model.File{
		ID:          uuid.NewString(),
		Title:       "Отчёт",
		Keyword:     "отчёт",
		Filename:    "report.txt",
		ContentType: "text/plain",
		Content:     "текст",
		Data:        []byte("текст"),
		FileSize:    10,
		EditorID:    uuid.NewString(),
	}
}

// TestFileRepoCreate_EditorGone — вставка файла с editor_id удалённого
// пользователя нарушает внешний ключ и должна выглядеть как ErrNotFound,
// а не как внутренняя ошибка.
func TestFileRepoCreate_EditorGone(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "files_editor_id_fkey"}
	repo := NewFileRepository(errDB{err: fkErr})

	err := repo.Create(context.Background(), testFile())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Create() ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// TestFileRepoUpdate_EditorGone — то же для замены файла.
func TestFileRepoUpdate_EditorGone(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "files_editor_id_fkey"}
	repo := NewFileRepository(errDB{err: fkErr})

	err := repo.Update(context.Background(), testFile())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// TestFileRepoCreate_DuplicateID — нарушение уникальности остаётся конфликтом.
func TestFileRepoCreate_DuplicateID(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: "23505", ConstraintName: "files_pkey"}
	repo := NewFileRepository(errDB{err: uniqueErr})

	err := repo.Create(context.Background(), testFile())
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Create() ошибка = %v, ожидалась ErrConflict", err)
	}
}

// TestBuildOrderBy — whitelist полей сортировки.
func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      string
	}{
		{"по умолчанию", "", "", "ORDER BY upload_time DESC"},
		{"title asc", "title", "asc", "ORDER BY title ASC"},
		{"title ASC верхним регистром", "title", "ASC", "ORDER BY title ASC"},
		{"file_size desc", "file_size", "desc", "ORDER BY file_size DESC"},
		{"id", "id", "asc", "ORDER BY id ASC"},
		{"filename", "filename", "desc", "ORDER BY filename DESC"},
		{"инъекция в sortBy", "title; DROP TABLE files", "asc", "ORDER BY upload_time ASC"},
		{"инъекция в sortOrder", "title", "asc; DROP TABLE files", "ORDER BY title DESC"},
		{"неизвестное поле", "secret_column", "", "ORDER BY upload_time DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildOrderBy(tt.sortBy, tt.sortOrder)
			if got != tt.want {
				t.Errorf("buildOrderBy(%q, %q) = %q, ожидалось %q",
					tt.sortBy, tt.sortOrder, got, tt.want)
			}
		})
	}
}

// TestPageQuery_Offset — смещение страницы.
func TestPageQuery_Offset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{0, 10, 0},
		{1, 10, 10},
		{3, 25, 75},
	}

	for _, tt := range tests {
		pq := PageQuery{Page: tt.page, Size: tt.size}
		if got := pq.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, ожидалось %d", tt.page, tt.size, got, tt.want)
		}
	}
}
