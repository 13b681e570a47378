package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Сохранённый медиаобъект. Создаётся после успешной загрузки и больше не меняется.
type StoredObject struct {
	ID        string    `json:"id"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	Ext       string    `json:"ext"` // расширение исходного файла, с точкой (".webm") или пусто
}

// Filename — имя, под которым объект отдаётся через /uploads/<filename>.
func (o StoredObject) Filename() string { return o.ID + o.Ext }

// SplitFilename разбирает "<id><ext>" обратно на id и расширение.
func SplitFilename(name string) (id, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}
