// qa.go — наивный поисковый движок "вопрос-ответ":
// слова вопроса становятся подстрочными запросами по ключевым словам файлов,
// результаты сливаются с дедупликацией и пагинируются в памяти.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/docmgmt/document-qa/internal/cache"
	"github.com/docmgmt/document-qa/internal/domain/model"
	"github.com/docmgmt/document-qa/internal/repository"
)

// minTokenLen — минимальная длина слова вопроса; короче — шум.
const minTokenLen = 3

// scanPageSize — размер страницы сканов по ключевому слову.
// Фактически "без ограничения": движок собирает все совпадения в память.
const scanPageSize = 1_000_000

// Prometheus-метрики QA.
var (
	qaQuestionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_qa_questions_total",
		Help: "Общее количество обработанных вопросов.",
	})
	qaDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dq_qa_duration_seconds",
		Help:    "Длительность обработки вопроса.",
		Buckets: prometheus.DefBuckets,
	})
)

// QAService — поиск файлов по словам вопроса.
// Ответы кэшируются в регионе search по хэшу вопроса.
type QAService struct {
	files  repository.FileRepository
	cache  cache.RegionCache
	logger *slog.Logger
}

// NewQAService создаёт QA-сервис.
func NewQAService(files repository.FileRepository, regionCache cache.RegionCache, logger *slog.Logger) *QAService {
	return &QAService{
		files:  files,
		cache:  regionCache,
		logger: logger.With(slog.String("component", "qa_service")),
	}
}

// questionKey строит ключ региона search: FNV-64 хэш текста вопроса
// плюс параметры страницы.
func questionKey(question string, page, size int) string {
	h := fnv.New64a()
	h.Write([]byte(question))
	return fmt.Sprintf("question:%d:page:%d:size:%d", h.Sum64(), page, size)
}

// tokenize разбивает вопрос на ключевые слова:
// split по пробелам, к нижнему регистру, отбрасываем слова короче
// minTokenLen, дедуплицируем. Результат отсортирован — порядок
// сканов детерминирован.
func tokenize(question string) []string {
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(question) {
		word = strings.ToLower(word)
		if utf8.RuneCountInString(word) < minTokenLen {
			continue
		}
		seen[word] = struct{}{}
	}

	tokens := make([]string, 0, len(seen))
	for word := range seen {
		tokens = append(tokens, word)
	}
	sort.Strings(tokens)
	return tokens
}

// Ask ищет файлы по словам вопроса.
// Порядок: кэш → токенизация → сканы по словам → дедупликация
// first-wins по id → пагинация среза в памяти.
func (s *QAService) Ask(ctx context.Context, question string, page, size int) (*model.PagedResponse[*model.FileMetadata], error) {
	start := time.Now()
	qaQuestionsTotal.Inc()
	defer func() {
		qaDuration.Observe(time.Since(start).Seconds())
	}()

	key := questionKey(question, page, size)
	if b, ok, err := s.cache.Get(ctx, cache.RegionSearch, key); err == nil && ok {
		resp := &model.PagedResponse[*model.FileMetadata]{}
		if err := json.Unmarshal(b, resp); err == nil {
			s.logger.Debug("Кэш hit для вопроса", slog.String("key", key))
			return resp, nil
		}
	} else if err != nil {
		s.logger.Warn("Ошибка чтения кэша вопросов", slog.String("error", err.Error()))
	}

	tokens := tokenize(question)
	if len(tokens) == 0 {
		return nil, ErrInvalidQuestion
	}

	// Дедупликация first-wins: файл засчитывается первому слову,
	// которое его нашло, порядок обнаружения сохраняется.
	seen := make(map[string]struct{})
	var matched []*model.FileMetadata

	for _, token := range tokens {
		items, _, err := s.files.ListByKeyword(ctx, token, repository.PageQuery{
			Page: 0,
			Size: scanPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("скан по слову %q: %w", token, err)
		}
		for _, f := range items {
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			matched = append(matched, f.Metadata())
		}
	}

	if len(matched) == 0 {
		return nil, ErrNoResults
	}

	resp := paginate(matched, page, size)

	if b, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cache.RegionSearch, key, b); err != nil {
			s.logger.Warn("Ошибка записи в кэш вопросов", slog.String("error", err.Error()))
		}
	}

	s.logger.Debug("Вопрос обработан",
		slog.Int("tokens", len(tokens)),
		slog.Int("matched", len(matched)),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// paginate вырезает страницу [page*size, page*size+size) из полного
// списка совпадений. Страница за пределами — пустой content
// с корректными метаданными пагинации.
func paginate(all []*model.FileMetadata, page, size int) *model.PagedResponse[*model.FileMetadata] {
	from := page * size
	to := from + size

	var content []*model.FileMetadata
	if from < len(all) {
		if to > len(all) {
			to = len(all)
		}
		content = all[from:to]
	}

	return model.NewPagedResponse(content, page, size, int64(len(all)))
}
