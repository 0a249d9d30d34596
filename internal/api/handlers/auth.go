// auth.go — обработчики регистрации и входа.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/docmgmt/document-qa/internal/api/errors"
	"github.com/docmgmt/document-qa/internal/service"
)

// AuthHandler — обработчики /login и /registration.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// credentialsRequest — тело запроса регистрации и входа.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register — POST /registration. Создаёт пользователя с ролью VIEWER.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Невалидный JSON в теле запроса")
		return
	}

	details, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, details)
}

// Login — POST /login. Проверяет пароль и выпускает JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Невалидный JSON в теле запроса")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}
