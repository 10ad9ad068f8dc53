package domain

import (
	"context"
	"io"
)

// Хранилище оригиналов загруженных резюме (S3/MinIO)
type BlobPutResult struct {
	StorageKey string
	Size       int64
	SHA256     []byte
}

type BlobObject struct {
	Body         io.ReadCloser
	ContentLen   int64
	ContentRange string // пусто, если диапазон не запрашивался
	ContentType  string
	ETag         string
}

type BlobStorage interface {
	Ping(ctx context.Context) error
	// Сохранение нового файла (ключ адресуется по sha256 содержимого)
	Put(ctx context.Context, r io.Reader, hintName string, mime string) (BlobPutResult, error)
	// Получение контента с поддержкой Range
	Get(ctx context.Context, storageKey, rangeHeader string) (BlobObject, error)
	Delete(ctx context.Context, storageKey string) error
}
