// logging.go — slog-логирование HTTP-запросов с уровнем по статусу ответа.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// loggedResponse накапливает поля ответа, нужные логу: статус и объём тела.
type loggedResponse struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (lr *loggedResponse) WriteHeader(code int) {
	if lr.wroteHeader {
		return
	}
	lr.status = code
	lr.wroteHeader = true
	lr.ResponseWriter.WriteHeader(code)
}

func (lr *loggedResponse) Write(p []byte) (int, error) {
	if !lr.wroteHeader {
		lr.WriteHeader(http.StatusOK)
	}
	n, err := lr.ResponseWriter.Write(p)
	lr.bytes += int64(n)
	return n, err
}

// Unwrap открывает http.ResponseController доступ к исходному ResponseWriter.
func (lr *loggedResponse) Unwrap() http.ResponseWriter {
	return lr.ResponseWriter
}

// levelForStatus: 5xx — ERROR, 4xx — WARN, остальное — INFO.
func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger логирует каждый запрос после обработки: метод, путь,
// query-параметры списочных эндпоинтов, статус, объём и длительность.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With(slog.String("component", "http"))
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lr := &loggedResponse{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(lr, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", lr.status),
				slog.Int64("bytes", lr.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if q := r.URL.RawQuery; q != "" {
				attrs = append(attrs, slog.String("query", q))
			}
			log.LogAttrs(r.Context(), levelForStatus(lr.status), "HTTP запрос", attrs...)
		}
		return http.HandlerFunc(fn)
	}
}
