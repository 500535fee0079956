package asset

import (
	"context"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/storage"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
)

const defaultExt = "jpg"

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Service validates uploads and writes them to the object store.
type Service struct {
	store storage.ObjectStore
}

func NewService(store storage.ObjectStore) *Service {
	return &Service{store: store}
}

// ObjectKey builds "{uid}/{random}.{ext}" from the uploaded filename.
func ObjectKey(uid, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = defaultExt
	}
	return uid + "/" + uuid.NewString() + "." + ext
}

// declaredType returns the part's Content-Type without parameters.
func declaredType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Upload stores one image for uid and returns its URL.
func (s *Service) Upload(ctx context.Context, uid string, fh *multipart.FileHeader) (string, error) {
	if uid == "" {
		return "", apperr.Unauthorized("unauthorized")
	}
	if fh == nil {
		metrics.AssetUploads.WithLabelValues("rejected").Inc()
		return "", apperr.BadRequest("no file uploaded")
	}
	ct := declaredType(fh)
	if !allowedTypes[ct] {
		metrics.AssetUploads.WithLabelValues("rejected").Inc()
		return "", apperr.BadRequest("unsupported file type")
	}

	f, err := fh.Open()
	if err != nil {
		metrics.AssetUploads.WithLabelValues("failed").Inc()
		return "", apperr.Internal(err)
	}
	defer f.Close()

	url, err := s.store.Put(ctx, ObjectKey(uid, fh.Filename), f, fh.Size, ct)
	if err != nil {
		metrics.AssetUploads.WithLabelValues("failed").Inc()
		return "", apperr.Internal(err)
	}
	metrics.AssetUploads.WithLabelValues("stored").Inc()
	return url, nil
}
