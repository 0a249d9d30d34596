package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/docmgmt/document-qa/internal/domain/model"
)

// fileMetaColumns — столбцы таблицы files без бинарного содержимого.
// Используются во всех списочных SELECT'ах: data подтягивать незачем.
const fileMetaColumns = `id, title, keyword, filename, content_type, description,
	content, file_size, editor_id, upload_time`

// PageQuery — параметры пагинации и сортировки для списочных запросов.
type PageQuery struct {
	// Page — номер страницы (с нуля)
	Page int
	// Size — размер страницы
	Size int
	// SortBy — поле сортировки (whitelist в buildOrderBy)
	SortBy string
	// SortOrder — направление: asc, desc
	SortOrder string
}

// Offset возвращает смещение первой записи страницы.
func (p PageQuery) Offset() int {
	return p.Page * p.Size
}

// FileRepository — доступ к таблице files.
type FileRepository interface {
	// Create вставляет новую запись файла. Заполняет UploadTime из БД.
	Create(ctx context.Context, f *model.File) error
	// GetByID возвращает файл по UUID (включая бинарное содержимое).
	GetByID(ctx context.Context, id string) (*model.File, error)
	// ListByEditor возвращает страницу файлов редактора и общее количество.
	ListByEditor(ctx context.Context, editorID string, pq PageQuery) ([]*model.File, int64, error)
	// ListByType возвращает страницу файлов, чей content_type содержит подстроку
	// (без учёта регистра), и общее количество.
	ListByType(ctx context.Context, typeSubstring string, pq PageQuery) ([]*model.File, int64, error)
	// ListByKeyword возвращает страницу файлов, чей keyword содержит подстроку
	// (без учёта регистра), и общее количество.
	ListByKeyword(ctx context.Context, keywordSubstring string, pq PageQuery) ([]*model.File, int64, error)
	// Update заменяет запись файла целиком (кроме id).
	Update(ctx context.Context, f *model.File) error
	// Delete удаляет запись файла.
	Delete(ctx context.Context, id string) error
}

// fileRepo — реализация FileRepository через pgx.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	query := `
		INSERT INTO files (id, title, keyword, filename, content_type, description,
			content, data, file_size, editor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING upload_time`

	err := r.db.QueryRow(ctx, query,
		f.ID, f.Title, f.Keyword, f.Filename, f.ContentType, f.Description,
		f.Content, f.Data, f.FileSize, f.EditorID,
	).Scan(&f.UploadTime)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: файл с таким ID уже существует", ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: редактор не существует", ErrNotFound)
		}
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	query := fmt.Sprintf(`SELECT %s, data FROM files WHERE id = $1`, fileMetaColumns)

	f := &model.File{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Title, &f.Keyword, &f.Filename, &f.ContentType, &f.Description,
		&f.Content, &f.FileSize, &f.EditorID, &f.UploadTime, &f.Data,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) ListByEditor(ctx context.Context, editorID string, pq PageQuery) ([]*model.File, int64, error) {
	return r.list(ctx, "editor_id = $1", editorID, pq)
}

func (r *fileRepo) ListByType(ctx context.Context, typeSubstring string, pq PageQuery) ([]*model.File, int64, error) {
	return r.list(ctx, "content_type ILIKE $1", "%"+typeSubstring+"%", pq)
}

func (r *fileRepo) ListByKeyword(ctx context.Context, keywordSubstring string, pq PageQuery) ([]*model.File, int64, error) {
	return r.list(ctx, "keyword ILIKE $1", "%"+keywordSubstring+"%", pq)
}

// list выполняет списочный запрос с одним WHERE-условием,
// сортировкой и пагинацией, плюс COUNT(*) с тем же условием.
func (r *fileRepo) list(ctx context.Context, where string, arg any, pq PageQuery) ([]*model.File, int64, error) {
	orderBy := buildOrderBy(pq.SortBy, pq.SortOrder)

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM files WHERE %s %s LIMIT $2 OFFSET $3`,
		fileMetaColumns, where, orderBy,
	)

	rows, err := r.db.Query(ctx, dataQuery, arg, pq.Size, pq.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.File
	for rows.Next() {
		f := &model.File{}
		if err := rows.Scan(
			&f.ID, &f.Title, &f.Keyword, &f.Filename, &f.ContentType, &f.Description,
			&f.Content, &f.FileSize, &f.EditorID, &f.UploadTime,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM files WHERE %s`, where)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}

	return result, total, nil
}

func (r *fileRepo) Update(ctx context.Context, f *model.File) error {
	query := `
		UPDATE files
		SET title = $2, keyword = $3, filename = $4, content_type = $5,
			description = $6, content = $7, data = $8, file_size = $9,
			editor_id = $10, upload_time = now()
		WHERE id = $1
		RETURNING upload_time`

	err := r.db.QueryRow(ctx, query,
		f.ID, f.Title, f.Keyword, f.Filename, f.ContentType,
		f.Description, f.Content, f.Data, f.FileSize, f.EditorID,
	).Scan(&f.UploadTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: редактор не существует", ErrNotFound)
		}
		return fmt.Errorf("ошибка обновления файла: %w", err)
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Допустимое поле сортировки по умолчанию.
const defaultSortColumn = "upload_time"

// buildOrderBy строит ORDER BY с безопасным whitelist полей.
// Предотвращает SQL-инъекции — только разрешённые значения.
func buildOrderBy(sortBy, sortOrder string) string {
	column := defaultSortColumn
	switch sortBy {
	case "id":
		column = "id"
	case "title":
		column = "title"
	case "filename":
		column = "filename"
	case "file_size":
		column = "file_size"
	case defaultSortColumn:
		column = defaultSortColumn
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}
