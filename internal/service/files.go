// files.go — сервис файлов: read-through фасад над региональным кэшем
// и координатор инвалидации на мутациях.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docmgmt/document-qa/internal/cache"
	"github.com/docmgmt/document-qa/internal/domain/model"
	"github.com/docmgmt/document-qa/internal/repository"
)

// Ограничения входных данных файла.
const (
	titleMinLen   = 3
	titleMaxLen   = 150
	keywordMinLen = 3
	keywordMaxLen = 200
)

// Ключи кэша. Параметры сортировки в ключ не входят:
// список кэшируется по странице, сортировка влияет только на запрос к БД.
func metadataKey(id string) string {
	return "metadata:" + id
}

func editorKey(editorID string, pq repository.PageQuery) string {
	return fmt.Sprintf("editor:%s:page:%d:size:%d", editorID, pq.Page, pq.Size)
}

func filetypeKey(fileType string, pq repository.PageQuery) string {
	return fmt.Sprintf("filetype:%s:page:%d:size:%d", fileType, pq.Page, pq.Size)
}

func keywordKey(keyword string, pq repository.PageQuery) string {
	return fmt.Sprintf("keyword:%s:page:%d:size:%d", keyword, pq.Page, pq.Size)
}

// UploadInput — данные загрузки или замены файла.
// Content — извлечённый текст: хэндлер кладёт сюда содержимое
// текстовых файлов, для остальных — пустую строку.
type UploadInput struct {
	Title       string
	Keyword     string
	Description *string
	Filename    string
	ContentType string
	Content     string
	Data        []byte
}

// validate проверяет ограничения DTO.
func (in *UploadInput) validate() error {
	titleLen := utf8.RuneCountInString(in.Title)
	if titleLen < titleMinLen || titleLen > titleMaxLen {
		return fmt.Errorf("%w: длина title должна быть от %d до %d символов",
			ErrValidation, titleMinLen, titleMaxLen)
	}
	keywordLen := utf8.RuneCountInString(in.Keyword)
	if keywordLen < keywordMinLen || keywordLen > keywordMaxLen {
		return fmt.Errorf("%w: длина keyword должна быть от %d до %d символов",
			ErrValidation, keywordMinLen, keywordMaxLen)
	}
	if len(in.Data) == 0 {
		return fmt.Errorf("%w: файл пуст", ErrValidation)
	}
	return nil
}

// FileService — чтение метаданных через региональный кэш
// и мутации файлов с синхронной инвалидацией.
type FileService struct {
	files  repository.FileRepository
	cache  cache.RegionCache
	logger *slog.Logger
}

// NewFileService создаёт сервис файлов.
func NewFileService(files repository.FileRepository, regionCache cache.RegionCache, logger *slog.Logger) *FileService {
	return &FileService{
		files:  files,
		cache:  regionCache,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// cacheGet читает значение региона. Ошибка бэкенда на пути чтения
// не фатальна: логируем и считаем промахом, источник истины — БД.
func (s *FileService) cacheGet(ctx context.Context, region, key string) ([]byte, bool) {
	b, ok, err := s.cache.Get(ctx, region, key)
	if err != nil {
		s.logger.Warn("Ошибка чтения кэша, иду в БД",
			slog.String("region", region),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return b, ok
}

// cacheSet наполняет кэш после промаха. Ошибка записи не фатальна.
func (s *FileService) cacheSet(ctx context.Context, region, key string, value []byte) {
	if err := s.cache.Set(ctx, region, key, value); err != nil {
		s.logger.Warn("Ошибка записи в кэш",
			slog.String("region", region),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// GetMetadata возвращает метаданные файла.
// Сначала регион file_meta, при промахе — PostgreSQL с наполнением кэша.
func (s *FileService) GetMetadata(ctx context.Context, fileID string) (*model.FileMetadata, error) {
	key := metadataKey(fileID)

	if b, ok := s.cacheGet(ctx, cache.RegionFileMeta, key); ok {
		meta := &model.FileMetadata{}
		if err := json.Unmarshal(b, meta); err == nil {
			s.logger.Debug("Кэш hit для метаданных", slog.String("file_id", fileID))
			return meta, nil
		}
		// Битая запись в кэше — перечитываем из БД
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение метаданных файла: %w", err)
	}

	meta := f.Metadata()
	if b, err := json.Marshal(meta); err == nil {
		s.cacheSet(ctx, cache.RegionFileMeta, key, b)
	}

	return meta, nil
}

// GetFileByID возвращает файл целиком, включая бинарное содержимое.
// Не кэшируется: бинарные данные в кэш не кладём.
func (s *FileService) GetFileByID(ctx context.Context, fileID string) (*model.File, error) {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}
	return f, nil
}

// ListByEditor возвращает страницу файлов редактора (регион paged).
func (s *FileService) ListByEditor(ctx context.Context, editorID string, pq repository.PageQuery) (*model.PagedResponse[*model.FileMetadata], error) {
	return s.listCached(ctx, editorKey(editorID, pq), pq, func(ctx context.Context) ([]*model.File, int64, error) {
		return s.files.ListByEditor(ctx, editorID, pq)
	})
}

// ListByType возвращает страницу файлов по подстроке content type (регион paged).
func (s *FileService) ListByType(ctx context.Context, fileType string, pq repository.PageQuery) (*model.PagedResponse[*model.FileMetadata], error) {
	return s.listCached(ctx, filetypeKey(fileType, pq), pq, func(ctx context.Context) ([]*model.File, int64, error) {
		return s.files.ListByType(ctx, fileType, pq)
	})
}

// ListByKeyword возвращает страницу файлов по подстроке keyword (регион paged).
func (s *FileService) ListByKeyword(ctx context.Context, keyword string, pq repository.PageQuery) (*model.PagedResponse[*model.FileMetadata], error) {
	return s.listCached(ctx, keywordKey(keyword, pq), pq, func(ctx context.Context) ([]*model.File, int64, error) {
		return s.files.ListByKeyword(ctx, keyword, pq)
	})
}

// listCached — общий cache-aside путь списочных запросов.
// Пустой результат — NotFound, как и для одиночных метаданных.
func (s *FileService) listCached(
	ctx context.Context,
	key string,
	pq repository.PageQuery,
	fetch func(ctx context.Context) ([]*model.File, int64, error),
) (*model.PagedResponse[*model.FileMetadata], error) {
	if b, ok := s.cacheGet(ctx, cache.RegionPaged, key); ok {
		page := &model.PagedResponse[*model.FileMetadata]{}
		if err := json.Unmarshal(b, page); err == nil {
			s.logger.Debug("Кэш hit для списка", slog.String("key", key))
			return page, nil
		}
	}

	items, total, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("выборка списка файлов: %w", err)
	}
	if total == 0 {
		return nil, ErrNotFound
	}

	metas := make([]*model.FileMetadata, 0, len(items))
	for _, f := range items {
		metas = append(metas, f.Metadata())
	}
	page := model.NewPagedResponse(metas, pq.Page, pq.Size, total)

	if b, err := json.Marshal(page); err == nil {
		s.cacheSet(ctx, cache.RegionPaged, key, b)
	}

	return page, nil
}

// Upload сохраняет новый файл и сбрасывает все регионы кэша.
// Успешная мутация с несброшенным кэшем недопустима, поэтому
// ошибка инвалидации возвращается вызывающему.
func (s *FileService) Upload(ctx context.Context, editorID string, in *UploadInput) (*model.FileMetadata, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	f := &model.File{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Keyword:     in.Keyword,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Description: in.Description,
		Content:     in.Content,
		Data:        in.Data,
		FileSize:    int64(len(in.Data)),
		EditorID:    editorID,
	}

	if err := s.files.Create(ctx, f); err != nil {
		// Запись от имени уже удалённого редактора: токен ещё жив, аккаунта нет.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("создание файла: %w", err)
	}

	if err := s.evictAllRegions(ctx); err != nil {
		return nil, fmt.Errorf("сброс кэша после загрузки: %w", err)
	}

	s.logger.Info("Файл загружен",
		slog.String("file_id", f.ID),
		slog.String("editor_id", editorID),
		slog.Int64("size", f.FileSize),
	)

	return f.Metadata(), nil
}

// Update заменяет содержимое и метаданные файла.
// Разрешено только владельцу: чужой файл — Forbidden, без побочных эффектов.
func (s *FileService) Update(ctx context.Context, actorID, fileID string, in *UploadInput) (*model.FileMetadata, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла для обновления: %w", err)
	}
	if existing.EditorID != actorID {
		return nil, ErrForbidden
	}

	f := &model.File{
		ID:          fileID,
		Title:       in.Title,
		Keyword:     in.Keyword,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Description: in.Description,
		Content:     in.Content,
		Data:        in.Data,
		FileSize:    int64(len(in.Data)),
		EditorID:    existing.EditorID,
	}

	if err := s.files.Update(ctx, f); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление файла: %w", err)
	}

	if err := s.evictAfterChange(ctx, fileID); err != nil {
		return nil, fmt.Errorf("сброс кэша после обновления: %w", err)
	}

	s.logger.Info("Файл обновлён", slog.String("file_id", fileID))

	return f.Metadata(), nil
}

// Delete удаляет файл. Разрешено только владельцу.
func (s *FileService) Delete(ctx context.Context, actorID, fileID string) error {
	existing, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("получение файла для удаления: %w", err)
	}
	if existing.EditorID != actorID {
		return ErrForbidden
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление файла: %w", err)
	}

	if err := s.evictAfterChange(ctx, fileID); err != nil {
		return fmt.Errorf("сброс кэша после удаления: %w", err)
	}

	s.logger.Info("Файл удалён", slog.String("file_id", fileID))

	return nil
}

// evictListings сбрасывает регионы, зависящие от состава хранилища.
// Любая мутация инвалидирует их целиком.
func (s *FileService) evictListings(ctx context.Context) error {
	if err := s.cache.DeleteRegion(ctx, cache.RegionPaged); err != nil {
		return err
	}
	return s.cache.DeleteRegion(ctx, cache.RegionSearch)
}

// evictAllRegions — полный сброс после загрузки нового файла.
func (s *FileService) evictAllRegions(ctx context.Context) error {
	if err := s.evictListings(ctx); err != nil {
		return err
	}
	return s.cache.DeleteRegion(ctx, cache.RegionFileMeta)
}

// evictAfterChange — сброс после обновления или удаления:
// списки целиком плюс точечная инвалидация метаданных файла.
func (s *FileService) evictAfterChange(ctx context.Context, fileID string) error {
	if err := s.evictListings(ctx); err != nil {
		return err
	}
	return s.cache.DeleteKey(ctx, cache.RegionFileMeta, metadataKey(fileID))
}

// ClearCache удаляет все записи всех регионов (админская операция).
func (s *FileService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("очистка кэша: %w", err)
	}
	s.logger.Info("Кэш полностью очищен")
	return nil
}

// CacheKeyCount возвращает количество ключей в кэше (админская операция).
func (s *FileService) CacheKeyCount(ctx context.Context) (int64, error) {
	n, err := s.cache.KeyCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("подсчёт ключей кэша: %w", err)
	}
	return n, nil
}
