package donor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/eligibility"
	"github.com/bloodcamp-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName       = "name"
	fieldEmail      = "email"
	fieldPhone      = "phone"
	fieldBloodGroup = "blood_group"
	fieldAge        = "age"
	fieldGender     = "gender"
	fieldRollNo     = "roll_no"
	fieldBranch     = "branch"
	fieldYear       = "year"
)

const dateLayout = "2006-01-02"

// View is a donor with its eligibility computed at read time.
type View struct {
	domain.Donor
	eligibility.Result
}

type Service interface {
	Create(ctx context.Context, actorID string, req domain.CreateDonorRequest) (*View, error)
	Get(ctx context.Context, donorID string) (*View, error)
	List(ctx context.Context, f domain.DonorFilter, limit int, cursor string) ([]View, string, error)
	Update(ctx context.Context, donorID string, req domain.UpdateDonorRequest) (*View, error)
	Delete(ctx context.Context, donorID string) error
	RecordDonation(ctx context.Context, donorID string) (*View, error)
	Eligibility(ctx context.Context, donorID string) (eligibility.Result, error)
}

type donorStore interface {
	Create(ctx context.Context, d *domain.Donor) error
	Get(ctx context.Context, donorID string) (*domain.Donor, error)
	List(ctx context.Context, f domain.DonorFilter, now time.Time, limit int32, cursor string) ([]domain.Donor, string, error)
	Update(ctx context.Context, donorID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, donorID string) error
	RecordDonation(ctx context.Context, donorID string, expectedVersion int64, at time.Time) error
}

type service struct {
	repo   donorStore
	minAge int
	now    func() time.Time
}

type ServiceDeps struct {
	DonorRepo donorStore
	MinAge    int // defaults to domain.DonorMinAgeRecord
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.DonorRepo, minAge: deps.MinAge, now: deps.Now}
	if s.minAge <= 0 {
		s.minAge = domain.DonorMinAgeRecord
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, actorID string, req domain.CreateDonorRequest) (*View, error) {
	now := s.now().UTC()
	if err := s.checkAge(req.Age); err != nil {
		return nil, err
	}
	if !domain.ValidBloodGroup(req.BloodGroup) {
		return nil, fmt.Errorf("invalid blood group %q: %w", req.BloodGroup, domain.ErrBadRequest)
	}
	var last *time.Time
	if req.LastDonation != nil && *req.LastDonation != "" {
		t, err := time.Parse(dateLayout, *req.LastDonation)
		if err != nil {
			return nil, fmt.Errorf("last_donation must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
		}
		if t.After(now) {
			return nil, fmt.Errorf("last_donation cannot be in the future: %w", domain.ErrBadRequest)
		}
		last = &t
	}
	d := &domain.Donor{
		DonorID:      id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		BloodGroup:   req.BloodGroup,
		Age:          req.Age,
		Gender:       req.Gender,
		RollNo:       req.RollNo,
		Branch:       req.Branch,
		Year:         req.Year,
		LastDonation: last,
		IsActive:     true,
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.view(d, now), nil
}

func (s *service) Get(ctx context.Context, donorID string) (*View, error) {
	d, err := s.active(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return s.view(d, s.now()), nil
}

func (s *service) List(ctx context.Context, f domain.DonorFilter, limit int, cursor string) ([]View, string, error) {
	if f.BloodGroup != "" && !domain.ValidBloodGroup(f.BloodGroup) {
		return nil, "", fmt.Errorf("invalid blood group %q: %w", f.BloodGroup, domain.ErrBadRequest)
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	now := s.now()
	donors, next, err := s.repo.List(ctx, f, now, int32(limit), cursor)
	if err != nil {
		return nil, "", err
	}
	views := make([]View, 0, len(donors))
	for i := range donors {
		views = append(views, *s.view(&donors[i], now))
	}
	return views, next, nil
}

func (s *service) Update(ctx context.Context, donorID string, req domain.UpdateDonorRequest) (*View, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates[fieldEmail] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.BloodGroup != nil {
		if !domain.ValidBloodGroup(*req.BloodGroup) {
			return nil, fmt.Errorf("invalid blood group %q: %w", *req.BloodGroup, domain.ErrBadRequest)
		}
		updates[fieldBloodGroup] = *req.BloodGroup
	}
	if req.Age != nil {
		if err := s.checkAge(*req.Age); err != nil {
			return nil, err
		}
		updates[fieldAge] = *req.Age
	}
	if req.Gender != nil {
		updates[fieldGender] = *req.Gender
	}
	if req.RollNo != nil {
		updates[fieldRollNo] = *req.RollNo
	}
	if req.Branch != nil {
		updates[fieldBranch] = *req.Branch
	}
	if req.Year != nil {
		updates[fieldYear] = *req.Year
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, donorID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, donorID)
}

func (s *service) Delete(ctx context.Context, donorID string) error {
	if _, err := s.active(ctx, donorID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, donorID)
}

// RecordDonation stores a donation made now. It fails with ErrConflict when
// the donor is still in the cooldown window or another recording won the race.
func (s *service) RecordDonation(ctx context.Context, donorID string) (*View, error) {
	d, err := s.active(ctx, donorID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if res := eligibility.Evaluate(d.LastDonation, now); !res.Eligible {
		return nil, fmt.Errorf("donor not eligible for another %d days: %w", res.DaysRemaining, domain.ErrConflict)
	}
	if err := s.repo.RecordDonation(ctx, donorID, d.Version, now); err != nil {
		return nil, err
	}
	eligibility.RecordDonation(d, now)
	d.Version++
	d.UpdatedAt = now
	return s.view(d, now), nil
}

func (s *service) Eligibility(ctx context.Context, donorID string) (eligibility.Result, error) {
	d, err := s.active(ctx, donorID)
	if err != nil {
		return eligibility.Result{}, err
	}
	return eligibility.Evaluate(d.LastDonation, s.now()), nil
}

func (s *service) active(ctx context.Context, donorID string) (*domain.Donor, error) {
	d, err := s.repo.Get(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, fmt.Errorf("donor not found: %w", domain.ErrNotFound)
	}
	return d, nil
}

func (s *service) checkAge(age int) error {
	if age < s.minAge || age > domain.DonorMaxAge {
		return fmt.Errorf("donor age must be between %d and %d: %w", s.minAge, domain.DonorMaxAge, domain.ErrBadRequest)
	}
	return nil
}

func (s *service) view(d *domain.Donor, now time.Time) *View {
	return &View{Donor: *d, Result: eligibility.Evaluate(d.LastDonation, now)}
}
