package attachment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/id"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultPresignTTL is how long presigned download links stay valid.
const DefaultPresignTTL = 15 * time.Minute

// KeyPrefix is the object-store prefix every attachment key starts with.
const KeyPrefix = "attachments/"

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type Service interface {
	Upload(ctx context.Context, ownerID string, input UploadInput) (*domain.Attachment, error)
	Remove(ctx context.Context, a domain.Attachment) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	store    objectStore
	maxBytes int64
	now      func() time.Time
}

type ServiceDeps struct {
	Store    objectStore
	MaxBytes int64
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{store: deps.Store, maxBytes: deps.MaxBytes, now: deps.Now}
	if s.maxBytes <= 0 {
		s.maxBytes = 10 << 20
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Upload stores the file under attachments/<owner>/<ulid>-<name> and returns
// its metadata. The MIME type is sniffed from the content when the client
// sends none or a generic one.
func (s *service) Upload(ctx context.Context, ownerID string, input UploadInput) (*domain.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(input.Reader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("file exceeds %d bytes: %w", s.maxBytes, domain.ErrBadRequest)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %w", domain.ErrBadRequest)
	}

	safeName := sanitizeFilename(input.Filename)
	attID := id.New()
	key := fmt.Sprintf(KeyPrefix+"%s/%s-%s", ownerID, attID, safeName)
	contentType := detectContentType(input.ContentType, data)
	sum := sha256.Sum256(data)

	url, err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %v: %w", err, domain.ErrDependency)
	}
	return &domain.Attachment{
		AttachmentID: attID,
		Key:          key,
		Name:         safeName,
		Size:         int64(len(data)),
		MimeType:     contentType,
		URL:          url,
		Hash:         hex.EncodeToString(sum[:]),
		UploadedBy:   ownerID,
		CreatedAt:    s.now().UTC(),
	}, nil
}

func (s *service) Remove(ctx context.Context, a domain.Attachment) error {
	if err := s.store.Delete(ctx, a.Key); err != nil {
		return fmt.Errorf("delete attachment: %v: %w", err, domain.ErrDependency)
	}
	return nil
}

func (s *service) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.store.PresignedURL(ctx, key, DefaultPresignTTL)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %v: %w", err, domain.ErrDependency)
	}
	return u, nil
}

func detectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
