// Пакет model — доменные модели Document QA Service.
package model

import "time"

// File — запись файла в таблице files.
// Хранит бинарное содержимое и извлечённый текст вместе с метаданными.
type File struct {
	// ID — UUID файла (задаётся при загрузке)
	ID string
	// Title — заголовок документа
	Title string
	// Keyword — ключевые слова документа (свободный текст)
	Keyword string
	// Filename — оригинальное имя файла
	Filename string
	// ContentType — MIME-тип файла
	ContentType string
	// Description — описание (опционально)
	Description *string
	// Content — извлечённый plain-text контент
	Content string
	// Data — бинарное содержимое файла
	Data []byte
	// FileSize — размер файла в байтах (len(Data))
	FileSize int64
	// EditorID — UUID редактора-владельца (FK на users)
	EditorID string
	// UploadTime — время загрузки; при замене файла проставляется заново
	UploadTime time.Time
}

// FileMetadata — проекция File без бинарного содержимого.
// Используется во всех читающих ответах, кроме скачивания.
type FileMetadata struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Keyword     string    `json:"keyword"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Description *string   `json:"description,omitempty"`
	Content     string    `json:"content"`
	FileSize    int64     `json:"file_size"`
	EditorID    string    `json:"editor_id"`
	UploadTime  time.Time `json:"upload_time"`
}

// Metadata возвращает проекцию файла без поля Data.
func (f *File) Metadata() *FileMetadata {
	if f == nil {
		return nil
	}
	return &FileMetadata{
		ID:          f.ID,
		Title:       f.Title,
		Keyword:     f.Keyword,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Description: f.Description,
		Content:     f.Content,
		FileSize:    f.FileSize,
		EditorID:    f.EditorID,
		UploadTime:  f.UploadTime,
	}
}
