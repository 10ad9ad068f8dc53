// Package s3 хранит оригиналы загруженных резюме в S3/MinIO.
package s3

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// KeyPrefix: префикс контентно-адресуемых ключей.
const KeyPrefix = "resumes/sha256/"

type Storage struct {
	cl     *minio.Client
	bucket string
	log    *zap.Logger
}

var _ domain.BlobStorage = (*Storage)(nil)

func New(cfg Config, log *zap.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, log: log}, nil
}

// EnsureBucket создаёт бакет, если его ещё нет (локальный MinIO из docker-compose).
func (s *Storage) EnsureBucket(ctx context.Context, region string) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.cl.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	s.log.Info("bucket created", zap.String("bucket", s.bucket))
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

// Put загружает поток и возвращает ключ вида "resumes/sha256/<hex>" и размер.
// Одинаковые файлы ложатся в один объект.
func (s *Storage) Put(ctx context.Context, r io.Reader, hintName string, mime string) (domain.BlobPutResult, error) {
	h := sha256.New()
	pr, pw := io.Pipe()
	tee := io.MultiWriter(h, pw)

	// копируем в пайп и считаем sha параллельно
	go func() {
		_, copyErr := io.Copy(tee, r)
		pw.CloseWithError(copyErr)
	}()

	tmpKey := "tmp/" + sanitize(hintName)
	info, err := s.cl.PutObject(ctx, s.bucket, tmpKey, pr, -1, minio.PutObjectOptions{
		ContentType:        mime,
		ContentDisposition: "attachment; filename=" + strconv.Quote(hintName),
	})
	if err != nil {
		return domain.BlobPutResult{}, fmt.Errorf("put object: %w", err)
	}

	sha := h.Sum(nil)
	finalKey := fmt.Sprintf("%s%x", KeyPrefix, sha)
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: finalKey}
	_, err = s.cl.CopyObject(ctx, dst, src)
	if rmErr := s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{}); rmErr != nil {
		s.log.Warn("tmp object not removed", zap.String("key", tmpKey), zap.Error(rmErr))
	}
	if err != nil {
		return domain.BlobPutResult{}, fmt.Errorf("copy object: %w", err)
	}

	s.log.Debug("object stored", zap.String("key", finalKey), zap.Int64("size", info.Size))
	return domain.BlobPutResult{StorageKey: finalKey, Size: info.Size, SHA256: sha}, nil
}

// Get открывает поток для чтения; rangeHeader: "bytes=START-END" (опционально).
// Неподдерживаемый или некорректный Range игнорируется (отдаём объект целиком),
// диапазон за пределами объекта: domain.ErrBadParams.
func (s *Storage) Get(ctx context.Context, storageKey, rangeHeader string) (domain.BlobObject, error) {
	info, err := s.cl.StatObject(ctx, s.bucket, storageKey, minio.StatObjectOptions{})
	if err != nil {
		var er minio.ErrorResponse
		if errors.As(err, &er) && er.Code == "NoSuchKey" {
			return domain.BlobObject{}, domain.ErrNotFound
		}
		return domain.BlobObject{}, err
	}

	out := domain.BlobObject{ContentType: info.ContentType, ETag: info.ETag, ContentLen: info.Size}
	opts := minio.GetObjectOptions{}

	start, end, ok, err := ParseRange(rangeHeader, info.Size)
	if err != nil {
		return domain.BlobObject{}, err
	}
	if ok {
		// SetRange принимает включающие границы [start, end]
		if err := opts.SetRange(start, end); err != nil {
			return domain.BlobObject{}, err
		}
		out.ContentLen = end - start + 1
		out.ContentRange = fmt.Sprintf("bytes %d-%d/%d", start, end, info.Size)
	}

	obj, err := s.cl.GetObject(ctx, s.bucket, storageKey, opts)
	if err != nil {
		return domain.BlobObject{}, err
	}
	out.Body = obj
	return out, nil
}

// ParseRange разбирает одиночный диапазон "bytes=A-B", "bytes=A-", "bytes=-N".
// ok=false: диапазона нет или он не поддерживается (несколько диапазонов, мусор).
func ParseRange(header string, total int64) (start, end int64, ok bool, err error) {
	if !strings.HasPrefix(header, "bytes=") || total <= 0 {
		return 0, 0, false, nil
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return 0, 0, false, nil
	}
	a, b, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false, nil
	}

	switch {
	case a != "":
		s, e := strconv.ParseInt(a, 10, 64)
		if e != nil || s < 0 {
			return 0, 0, false, nil
		}
		if s >= total {
			return 0, 0, false, fmt.Errorf("range start %d beyond size %d: %w", s, total, domain.ErrBadParams)
		}
		end := total - 1
		if b != "" {
			n, e := strconv.ParseInt(b, 10, 64)
			if e != nil || n < s {
				return 0, 0, false, nil
			}
			if n < end {
				end = n
			}
		}
		return s, end, true, nil
	case b != "":
		n, e := strconv.ParseInt(b, 10, 64)
		if e != nil || n <= 0 {
			return 0, 0, false, nil
		}
		if n > total {
			n = total
		}
		return total - n, total - 1, true, nil
	}
	return 0, 0, false, nil
}

func (s *Storage) Delete(ctx context.Context, storageKey string) error {
	return s.cl.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
}

func sanitize(name string) string {
	u := url.PathEscape(name)
	return strings.ReplaceAll(u, "%2F", "_")
}
