// qa.go — обработчик вопросов: POST /qa/ask.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/docmgmt/document-qa/internal/api/errors"
	"github.com/docmgmt/document-qa/internal/service"
)

// QAHandler — обработчик поиска по вопросу.
type QAHandler struct {
	qa     *service.QAService
	logger *slog.Logger
}

// NewQAHandler создаёт обработчик QA.
func NewQAHandler(qa *service.QAService, logger *slog.Logger) *QAHandler {
	return &QAHandler{
		qa:     qa,
		logger: logger.With(slog.String("component", "qa_handler")),
	}
}

// questionRequest — тело запроса /qa/ask.
type questionRequest struct {
	Question string `json:"question"`
}

// Ask — POST /qa/ask. Ищет файлы по словам вопроса.
// Пагинация — query-параметры page и size.
func (h *QAHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Невалидный JSON в теле запроса")
		return
	}

	pq := parsePageQuery(r)

	page, err := h.qa.Ask(r.Context(), req.Question, pq.Page, pq.Size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
