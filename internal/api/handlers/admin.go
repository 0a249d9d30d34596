// admin.go — административные обработчики: управление пользователями
// и операции с кэшем. Все маршруты требуют роль ADMIN.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/docmgmt/document-qa/internal/api/errors"
	"github.com/docmgmt/document-qa/internal/service"
)

// AdminHandler — обработчики /admin/*.
type AdminHandler struct {
	users  *service.UserService
	files  *service.FileService
	logger *slog.Logger
}

// NewAdminHandler создаёт административный обработчик.
func NewAdminHandler(users *service.UserService, files *service.FileService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		files:  files,
		logger: logger.With(slog.String("component", "admin_handler")),
	}
}

// ListUsers — GET /admin/users. Страница пользователей.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), parsePageQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetUser — GET /admin/user/{id}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if uuid.Validate(userID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID пользователя")
		return
	}

	details, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// roleRequest — тело запроса смены роли.
type roleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateRole — PUT /admin/role. Меняет роль пользователя.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Невалидный JSON в теле запроса")
		return
	}
	if uuid.Validate(req.UserID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID пользователя")
		return
	}

	if err := h.users.UpdateRole(r.Context(), req.UserID, req.Role); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser — DELETE /admin/delete/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if uuid.Validate(userID) != nil {
		apierrors.ValidationError(w, "Невалидный UUID пользователя")
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// cacheStatsResponse — ответ /admin/cache/stats.
type cacheStatsResponse struct {
	Keys int64 `json:"keys"`
}

// CacheStats — GET /admin/cache/stats. Количество ключей в кэше.
func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.files.CacheKeyCount(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cacheStatsResponse{Keys: n})
}

// CacheClear — GET /admin/cache/clear. Полная очистка кэша.
func (h *AdminHandler) CacheClear(w http.ResponseWriter, r *http.Request) {
	if err := h.files.ClearCache(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
