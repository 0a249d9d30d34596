// files.go — мутации файлов: загрузка, замена, удаление.
// Все операции требуют роль ADMIN или EDITOR (проверяется middleware),
// владение файлом проверяет сервисный слой.
package handlers

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/docmgmt/document-qa/internal/api/errors"
	"github.com/docmgmt/document-qa/internal/api/middleware"
	"github.com/docmgmt/document-qa/internal/service"
)

// multipartMemoryLimit — сколько байт формы держим в памяти,
// остальное уходит во временные файлы.
const multipartMemoryLimit = 32 << 20

// FileHandler — обработчики /file/*.
type FileHandler struct {
	files         *service.FileService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewFileHandler создаёт обработчик мутаций файлов.
func NewFileHandler(files *service.FileService, maxUploadSize int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:         files,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "file_handler")),
	}
}

// Upload — POST /file/upload. Multipart: part "file" + поля title, keyword,
// description. Возвращает метаданные созданного файла.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	in, ok := h.parseUploadForm(w, r)
	if !ok {
		return
	}

	meta, err := h.files.Upload(r.Context(), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, meta)
}

// Update — PUT /file/update/{id}. Полная замена содержимого и метаданных.
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if uuid.Validate(fileID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID файла")
		return
	}

	in, ok := h.parseUploadForm(w, r)
	if !ok {
		return
	}

	meta, err := h.files.Update(r.Context(), middleware.UserIDFromContext(r.Context()), fileID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// Delete — DELETE /file/delete/{id}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if uuid.Validate(fileID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID файла")
		return
	}

	if err := h.files.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), fileID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseUploadForm разбирает multipart-форму загрузки.
// При ошибке пишет ответ и возвращает ok=false.
func (h *FileHandler) parseUploadForm(w http.ResponseWriter, r *http.Request) (*service.UploadInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		apierrors.ValidationError(w, "Невалидная multipart-форма или превышен размер файла")
		return nil, false
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Отсутствует part \"file\"")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Ошибка чтения загружаемого файла", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Ошибка чтения файла")
		return nil, false
	}

	contentType := detectContentType(header)

	in := &service.UploadInput{
		Title:       r.FormValue("title"),
		Keyword:     r.FormValue("keyword"),
		Filename:    header.Filename,
		ContentType: contentType,
		Content:     extractText(contentType, data),
		Data:        data,
	}
	if desc := r.FormValue("description"); desc != "" {
		in.Description = &desc
	}

	return in, true
}

// detectContentType читает Content-Type из заголовка part'а,
// при его отсутствии — application/octet-stream.
func detectContentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

// extractText извлекает текстовое содержимое для поиска.
// Текстовые типы сохраняются как есть, бинарные — пустая строка.
func extractText(contentType string, data []byte) string {
	if strings.HasPrefix(contentType, "text/") ||
		strings.HasPrefix(contentType, "application/json") ||
		strings.HasPrefix(contentType, "application/xml") {
		return string(data)
	}
	return ""
}
