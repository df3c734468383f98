package form

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
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldLink        = "link"
	fieldDeadline    = "deadline"
)

// View is a form with its open state computed at read time.
type View struct {
	domain.Form
	Open bool `json:"is_open"`
}

type Service interface {
	Create(ctx context.Context, actorID string, in domain.FormInput) (*View, error)
	List(ctx context.Context) ([]View, error)
	Get(ctx context.Context, formID string) (*View, error)
	Update(ctx context.Context, formID string, req domain.UpdateFormRequest) (*View, error)
	Delete(ctx context.Context, formID string) error
	AddAttachment(ctx context.Context, actorID, formID string, in attachment.UploadInput) (*View, error)
	RemoveAttachment(ctx context.Context, formID, attachmentID string) (*View, error)
}

type formStore interface {
	Create(ctx context.Context, f *domain.Form) error
	Get(ctx context.Context, formID string) (*domain.Form, error)
	ListActive(ctx context.Context) ([]domain.Form, error)
	Update(ctx context.Context, formID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, formID string) error
	AppendAttachment(ctx context.Context, formID string, a domain.Attachment) error
	RemoveAttachment(ctx context.Context, formID string, idx int, attachmentID string) error
}

type attachmentStore interface {
	Upload(ctx context.Context, ownerID string, input attachment.UploadInput) (*domain.Attachment, error)
	Remove(ctx context.Context, a domain.Attachment) error
}

type service struct {
	repo        formStore
	attachments attachmentStore
	now         func() time.Time
}

type ServiceDeps struct {
	FormRepo    formStore
	Attachments attachmentStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.FormRepo, attachments: deps.Attachments, now: now}
}

// ParseDeadline accepts RFC 3339 or a bare YYYY-MM-DD date. A bare date means
// the end of that day in UTC.
func ParseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("deadline must be RFC 3339 or YYYY-MM-DD: %w", domain.ErrBadRequest)
	}
	end := d.Add(24*time.Hour - time.Second)
	return &end, nil
}

func (s *service) Create(ctx context.Context, actorID string, in domain.FormInput) (*View, error) {
	var deadline *time.Time
	if in.Deadline != nil {
		var err error
		if deadline, err = ParseDeadline(*in.Deadline); err != nil {
			return nil, err
		}
	}
	now := s.now().UTC()
	f := &domain.Form{
		FormID:      id.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Link:        strings.TrimSpace(in.Link),
		Deadline:    deadline,
		Attachments: []domain.Attachment{},
		IsActive:    true,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return s.view(f), nil
}

// List returns active forms, newest first.
func (s *service) List(ctx context.Context) ([]View, error) {
	forms, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(forms, func(i, j int) bool { return forms[i].CreatedAt.After(forms[j].CreatedAt) })
	views := make([]View, 0, len(forms))
	for i := range forms {
		views = append(views, *s.view(&forms[i]))
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, formID string) (*View, error) {
	f, err := s.active(ctx, formID)
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

func (s *service) Update(ctx context.Context, formID string, req domain.UpdateFormRequest) (*View, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Link != nil {
		if strings.TrimSpace(*req.Link) == "" {
			return nil, fmt.Errorf("link cannot be empty: %w", domain.ErrBadRequest)
		}
		updates[fieldLink] = strings.TrimSpace(*req.Link)
	}
	if req.Deadline != nil {
		// An empty deadline clears it.
		d, err := ParseDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		updates[fieldDeadline] = d
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, formID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, formID)
}

func (s *service) Delete(ctx context.Context, formID string) error {
	if _, err := s.active(ctx, formID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, formID)
}

func (s *service) AddAttachment(ctx context.Context, actorID, formID string, in attachment.UploadInput) (*View, error) {
	if _, err := s.active(ctx, formID); err != nil {
		return nil, err
	}
	a, err := s.attachments.Upload(ctx, actorID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AppendAttachment(ctx, formID, *a); err != nil {
		if rmErr := s.attachments.Remove(ctx, *a); rmErr != nil {
			slog.Warn("orphaned attachment object", "key", a.Key, "err", rmErr)
		}
		return nil, err
	}
	return s.Get(ctx, formID)
}

func (s *service) RemoveAttachment(ctx context.Context, formID, attachmentID string) (*View, error) {
	f, err := s.active(ctx, formID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, a := range f.Attachments {
		if a.AttachmentID == attachmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("attachment not found: %w", domain.ErrNotFound)
	}
	if err := s.repo.RemoveAttachment(ctx, formID, idx, attachmentID); err != nil {
		return nil, err
	}
	if err := s.attachments.Remove(ctx, f.Attachments[idx]); err != nil {
		slog.Warn("orphaned attachment object", "key", f.Attachments[idx].Key, "err", err)
	}
	f.Attachments = append(f.Attachments[:idx], f.Attachments[idx+1:]...)
	f.UpdatedAt = s.now().UTC()
	return s.view(f), nil
}

func (s *service) active(ctx context.Context, formID string) (*domain.Form, error) {
	f, err := s.repo.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !f.IsActive {
		return nil, fmt.Errorf("form not found: %w", domain.ErrNotFound)
	}
	return f, nil
}

func (s *service) view(f *domain.Form) *View {
	return &View{Form: *f, Open: f.IsOpen(s.now())}
}
