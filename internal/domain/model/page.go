package model

// PagedResponse — страница результатов с метаданными пагинации.
// Нумерация страниц — с нуля.
type PagedResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPagedResponse собирает страницу из содержимого и общего количества.
// totalPages = ceil(totalElements / size); ноль элементов — ноль страниц.
// first = (page == 0); last = (page >= totalPages-1).
func NewPagedResponse[T any](content []T, page, size int, totalElements int64) *PagedResponse[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((totalElements + int64(size) - 1) / int64(size))
	}

	return &PagedResponse[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
