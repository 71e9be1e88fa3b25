package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/metrics"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/storage"
)

// Upload categories and their size limits.
const (
	BizUserAvatar = "user_avatar"
	BizAppIcon    = "app_icon"
)

var bizMaxBytes = map[string]int64{
	BizUserAvatar: 1 << 20,
	BizAppIcon:    2 << 20,
}

var allowedExts = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"svg":  true,
	"webp": true,
}

// FileService validates uploads and hands them to the object store.
type FileService struct {
	store   storage.ObjectStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewFileService(store storage.ObjectStore, m *metrics.Metrics, logger *slog.Logger) *FileService {
	return &FileService{store: store, metrics: m, logger: logger}
}

// MaxUploadBytes is the largest size any category accepts.
func MaxUploadBytes() int64 {
	var max int64
	for _, n := range bizMaxBytes {
		if n > max {
			max = n
		}
	}
	return max
}

// Upload stores r under /{biz}/{userID}/{xid}-{name} and returns its
// public URL. size is the declared size of the upload.
func (s *FileService) Upload(ctx context.Context, caller *model.User, biz, filename string, size int64, r io.Reader) (string, error) {
	if err := auth.Authorize(caller, nil, auth.ActionCreate); err != nil {
		return "", err
	}

	limit, ok := bizMaxBytes[biz]
	if !ok {
		return "", apperror.ValidationFailed("biz", "unknown upload type "+biz)
	}
	if size <= 0 {
		return "", apperror.ValidationFailed("file", "file is empty")
	}
	if size > limit {
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("file must be %d KiB or less", limit>>10))
	}

	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !allowedExts[ext] {
		return "", apperror.ValidationFailed("file", "file type is not allowed")
	}

	key := fmt.Sprintf("/%s/%d/%s-%s", biz, caller.ID, xid.New().String(), name)
	// Read one byte past the limit so a body larger than its declared
	// size is caught instead of silently truncated.
	body := &countingReader{r: io.LimitReader(r, limit+1)}
	url, err := s.store.Put(ctx, key, body)
	if err != nil {
		return "", fmt.Errorf("service: storing upload: %w", err)
	}
	if body.n > limit {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error("removing oversized upload",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("file must be %d KiB or less", limit>>10))
	}

	s.metrics.Upload(biz)
	s.logger.Info("file uploaded",
		slog.String("biz", biz),
		slog.String("key", key),
		slog.Int64("userID", caller.ID),
	)
	return url, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
