package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLevelForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   slog.Level
	}{
		{200, slog.LevelInfo},
		{204, slog.LevelInfo},
		{304, slog.LevelInfo},
		{400, slog.LevelWarn},
		{404, slog.LevelWarn},
		{500, slog.LevelError},
		{503, slog.LevelError},
	}

	for _, tt := range tests {
		if got := levelForStatus(tt.status); got != tt.want {
			t.Errorf("levelForStatus(%d) = %v, ожидалось %v", tt.status, got, tt.want)
		}
	}
}

// TestLoggedResponse_ImplicitOK — Write без явного WriteHeader фиксирует 200.
func TestLoggedResponse_ImplicitOK(t *testing.T) {
	lr := &loggedResponse{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	if _, err := lr.Write([]byte("тело")); err != nil {
		t.Fatalf("Write ошибка: %v", err)
	}

	if lr.status != http.StatusOK {
		t.Errorf("status = %d, ожидалось 200", lr.status)
	}
	if lr.bytes != int64(len("тело")) {
		t.Errorf("bytes = %d, ожидалось %d", lr.bytes, len("тело"))
	}
}

// TestLoggedResponse_DoubleWriteHeader — повторный WriteHeader не
// перетирает уже зафиксированный статус.
func TestLoggedResponse_DoubleWriteHeader(t *testing.T) {
	lr := &loggedResponse{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	lr.WriteHeader(http.StatusNotFound)
	lr.WriteHeader(http.StatusOK)

	if lr.status != http.StatusNotFound {
		t.Errorf("status = %d, ожидалось 404", lr.status)
	}
}

// TestRequestLogger_LogsStatusAndPath — строка лога содержит метод, путь,
// статус и query.
func TestRequestLogger_LogsStatusAndPath(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("нет"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/fileviewer/keyword?value=отчёт", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{
		`"method":"GET"`,
		`"path":"/fileviewer/keyword"`,
		`"status":418`,
		`"query":"value=отчёт"`,
		`"level":"WARN"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("в логе нет %s: %s", want, line)
		}
	}
}
