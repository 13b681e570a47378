package domain

import (
	"context"
	"io"
)

// Хранилище медиаобъектов (локальный диск или S3/MinIO).
// Объект становится видимым в List только после полной записи.
type ObjectStore interface {
	// Сохранение нового объекта под свежим уникальным id
	Store(ctx context.Context, r io.Reader, originalName string) (StoredObject, error)
	// Все опубликованные объекты, порядок не гарантирован
	List(ctx context.Context) ([]StoredObject, error)
	Stat(ctx context.Context, id string) (int64, error)
	// Поток байт [start, end] включительно
	Open(ctx context.Context, id string, start, end int64) (io.ReadCloser, error)
	Ping(ctx context.Context) error
}

// Append-only журнал публикаций: latest читается без пересканирования хранилища.
type Manifest interface {
	Append(ctx context.Context, obj StoredObject) error
	Latest(ctx context.Context) (StoredObject, error)
	List(ctx context.Context) ([]StoredObject, error)
	Ping(ctx context.Context) error
	Close()
}
