// Пакет handlers — HTTP-обработчики Document QA Service.
// Обработчики разбирают запрос, вызывают сервисный слой и
// отображают его ошибки в стандартный JSON-формат ошибок.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/docmgmt/document-qa/internal/api/errors"
	"github.com/docmgmt/document-qa/internal/repository"
	"github.com/docmgmt/document-qa/internal/service"
)

// Параметры пагинации по умолчанию.
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// parsePageQuery разбирает query-параметры page/size/sortBy/sortOrder.
// Некорректные значения заменяются значениями по умолчанию.
func parsePageQuery(r *http.Request) repository.PageQuery {
	pq := repository.PageQuery{
		Page:      0,
		Size:      defaultPageSize,
		SortBy:    r.URL.Query().Get("sortBy"),
		SortOrder: r.URL.Query().Get("sortOrder"),
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page >= 0 {
			pq.Page = page
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size >= 1 {
			if size > maxPageSize {
				size = maxPageSize
			}
			pq.Size = size
		}
	}

	return pq
}

// writeServiceError отображает ошибку сервисного слоя в HTTP-ответ.
// Неизвестные ошибки — 500 без деталей (детали остаются в логах).
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Ресурс не найден")
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, "Файл принадлежит другому редактору")
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, "Имя пользователя уже занято")
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, "Неверное имя пользователя или пароль")
	case errors.Is(err, service.ErrInvalidQuestion):
		apierrors.ValidationError(w, "Not a valid Question")
	case errors.Is(err, service.ErrNoResults):
		apierrors.NotFound(w, "No Files found")
	default:
		apierrors.InternalError(w, "Внутренняя ошибка сервиса")
	}
}
