package notice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bloodcamp-api/internal/application/attachment"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle   = "title"
	fieldContent = "content"
	fieldLink    = "link"
)

type Service interface {
	Create(ctx context.Context, actorID string, in domain.NoticeInput) (*domain.Notice, error)
	List(ctx context.Context) ([]domain.Notice, error)
	Get(ctx context.Context, noticeID string) (*domain.Notice, error)
	Update(ctx context.Context, noticeID string, req domain.UpdateNoticeRequest) (*domain.Notice, error)
	Delete(ctx context.Context, noticeID string) error
	AddAttachment(ctx context.Context, actorID, noticeID string, in attachment.UploadInput) (*domain.Notice, error)
	RemoveAttachment(ctx context.Context, noticeID, attachmentID string) (*domain.Notice, error)
}

type noticeStore interface {
	Create(ctx context.Context, n *domain.Notice) error
	Get(ctx context.Context, noticeID string) (*domain.Notice, error)
	ListActive(ctx context.Context) ([]domain.Notice, error)
	Update(ctx context.Context, noticeID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, noticeID string) error
	AppendAttachment(ctx context.Context, noticeID string, a domain.Attachment) error
	RemoveAttachment(ctx context.Context, noticeID string, idx int, attachmentID string) error
}

type attachmentStore interface {
	Upload(ctx context.Context, ownerID string, input attachment.UploadInput) (*domain.Attachment, error)
	Remove(ctx context.Context, a domain.Attachment) error
}

type service struct {
	repo        noticeStore
	attachments attachmentStore
	now         func() time.Time
}

type ServiceDeps struct {
	NoticeRepo  noticeStore
	Attachments attachmentStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.NoticeRepo, attachments: deps.Attachments, now: now}
}

func (s *service) Create(ctx context.Context, actorID string, in domain.NoticeInput) (*domain.Notice, error) {
	now := s.now().UTC()
	n := &domain.Notice{
		NoticeID:    id.New(),
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Link:        nonEmpty(in.Link),
		Attachments: []domain.Attachment{},
		IsActive:    true,
		PostedBy:    actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns active notices, newest first.
func (s *service) List(ctx context.Context) ([]domain.Notice, error) {
	notices, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(notices, func(i, j int) bool { return notices[i].CreatedAt.After(notices[j].CreatedAt) })
	return notices, nil
}

func (s *service) Get(ctx context.Context, noticeID string) (*domain.Notice, error) {
	n, err := s.repo.Get(ctx, noticeID)
	if err != nil {
		return nil, err
	}
	if !n.IsActive {
		return nil, fmt.Errorf("notice not found: %w", domain.ErrNotFound)
	}
	return n, nil
}

func (s *service) Update(ctx context.Context, noticeID string, req domain.UpdateNoticeRequest) (*domain.Notice, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates[fieldContent] = *req.Content
	}
	if req.Link != nil {
		// An empty link clears it.
		updates[fieldLink] = nonEmpty(req.Link)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, noticeID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, noticeID)
}

func (s *service) Delete(ctx context.Context, noticeID string) error {
	if _, err := s.Get(ctx, noticeID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, noticeID)
}

func (s *service) AddAttachment(ctx context.Context, actorID, noticeID string, in attachment.UploadInput) (*domain.Notice, error) {
	if _, err := s.Get(ctx, noticeID); err != nil {
		return nil, err
	}
	a, err := s.attachments.Upload(ctx, actorID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AppendAttachment(ctx, noticeID, *a); err != nil {
		if rmErr := s.attachments.Remove(ctx, *a); rmErr != nil {
			slog.Warn("orphaned attachment object", "key", a.Key, "err", rmErr)
		}
		return nil, err
	}
	return s.Get(ctx, noticeID)
}

func (s *service) RemoveAttachment(ctx context.Context, noticeID, attachmentID string) (*domain.Notice, error) {
	n, err := s.Get(ctx, noticeID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(n.Attachments, attachmentID)
	if idx < 0 {
		return nil, fmt.Errorf("attachment not found: %w", domain.ErrNotFound)
	}
	if err := s.repo.RemoveAttachment(ctx, noticeID, idx, attachmentID); err != nil {
		return nil, err
	}
	if err := s.attachments.Remove(ctx, n.Attachments[idx]); err != nil {
		slog.Warn("orphaned attachment object", "key", n.Attachments[idx].Key, "err", err)
	}
	n.Attachments = append(n.Attachments[:idx], n.Attachments[idx+1:]...)
	n.UpdatedAt = s.now().UTC()
	return n, nil
}

func indexOf(atts []domain.Attachment, attachmentID string) int {
	for i, a := range atts {
		if a.AttachmentID == attachmentID {
			return i
		}
	}
	return -1
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
