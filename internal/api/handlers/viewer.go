// viewer.go — чтение файлов и метаданных: /fileviewer/*.
// Метаданные и списки идут через региональный кэш,
// скачивание содержимого — всегда напрямую из хранилища.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/docmgmt/document-qa/internal/api/errors"
	"github.com/docmgmt/document-qa/internal/service"
)

// ViewerHandler — обработчики чтения файлов.
type ViewerHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

// NewViewerHandler создаёт обработчик чтения файлов.
func NewViewerHandler(files *service.FileService, logger *slog.Logger) *ViewerHandler {
	return &ViewerHandler{
		files:  files,
		logger: logger.With(slog.String("component", "viewer_handler")),
	}
}

// Download — GET /fileviewer/{id}. Отдаёт бинарное содержимое файла.
func (h *ViewerHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if uuid.Validate(fileID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID файла")
		return
	}

	f, err := h.files.GetFileByID(r.Context(), fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

// Metadata — GET /fileviewer/meta/{id}. Метаданные файла из кэша.
func (h *ViewerHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if uuid.Validate(fileID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID файла")
		return
	}

	meta, err := h.files.GetMetadata(r.Context(), fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// ListByEditor — GET /fileviewer/editor/{id}. Страница файлов редактора.
func (h *ViewerHandler) ListByEditor(w http.ResponseWriter, r *http.Request) {
	editorID := chi.URLParam(r, "id")
	if uuid.Validate(editorID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID редактора")
		return
	}

	page, err := h.files.ListByEditor(r.Context(), editorID, parsePageQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ListByType — GET /fileviewer/filetype?value=... Страница файлов
// по подстроке content type.
func (h *ViewerHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if value == "" {
		apierrors.ValidationError(w, "Отсутствует параметр value")
		return
	}

	page, err := h.files.ListByType(r.Context(), value, parsePageQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ListByKeyword — GET /fileviewer/keyword?value=... Страница файлов
// по подстроке ключевого слова.
func (h *ViewerHandler) ListByKeyword(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if value == "" {
		apierrors.ValidationError(w, "Отсутствует параметр value")
		return
	}

	page, err := h.files.ListByKeyword(r.Context(), value, parsePageQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
