package adminrequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/id"
	"github.com/bloodcamp-api/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// DynamoDB attribute names used in the profile update map.
const (
	fieldName         = "name"
	fieldRollNo       = "roll_no"
	fieldBranch       = "branch"
	fieldYear         = "year"
	fieldPhone        = "phone"
	fieldPasswordHash = "password_hash"
)

type Service interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AdminRequest, error)
	Submit(ctx context.Context, req domain.SubmitAdminRequest) (*domain.AdminRequest, error)
	List(ctx context.Context, status string) ([]domain.AdminRequest, error)
	Get(ctx context.Context, requestID string) (*domain.AdminRequest, error)
	Approve(ctx context.Context, requestID, reviewerID string) (*domain.AdminRequest, error)
	Reject(ctx context.Context, requestID, reviewerID string) (*domain.AdminRequest, error)
}

type requestStore interface {
	Create(ctx context.Context, req *domain.AdminRequest) error
	Get(ctx context.Context, requestID string) (*domain.AdminRequest, error)
	GetPendingByEmail(ctx context.Context, email string) (*domain.AdminRequest, error)
	ListByStatus(ctx context.Context, status string) ([]domain.AdminRequest, error)
	SetOTP(ctx context.Context, requestID string, c *domain.OTPChallenge) error
	MarkEmailVerified(ctx context.Context, requestID, code string) error
	RecordOTPFailure(ctx context.Context, requestID, code string) error
	SaveProfile(ctx context.Context, requestID string, profile map[string]interface{}) error
	Approve(ctx context.Context, requestID, reviewerID string, admin *domain.Admin, at time.Time) error
	Reject(ctx context.Context, requestID, email, reviewerID string, at time.Time) error
}

type adminLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	repo      requestStore
	adminRepo adminLookup
	mailer    mailer
	smsSender smsSender
	now       func() time.Time
}

type ServiceDeps struct {
	RequestRepo requestStore
	AdminRepo   adminLookup
	Mailer      mailer
	SMSSender   smsSender
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      deps.RequestRepo,
		adminRepo: deps.AdminRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
		now:       now,
	}
}

// SendOTP opens (or reuses) the pending request for email and sends it a code.
func (s *service) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.ensureNotAdmin(ctx, email); err != nil {
		return err
	}
	now := s.now().UTC()

	req, err := s.repo.GetPendingByEmail(ctx, email)
	isNew := false
	if errors.Is(err, domain.ErrNotFound) {
		isNew = true
		req = &domain.AdminRequest{
			RequestID: id.New(),
			Email:     email,
			Status:    domain.RequestStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else if err != nil {
		return err
	}

	code, err := otp.Generate(req, now)
	if err != nil {
		return err
	}
	if isNew {
		err = s.repo.Create(ctx, req)
	} else {
		err = s.repo.SetOTP(ctx, req.RequestID, req.OTP)
	}
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your admin request verification code is %s. It expires in %d minutes.\n", code, int(otp.TTL/time.Minute))
	if err := s.mailer.SendEmail(email, "Admin request verification", body); err != nil {
		return fmt.Errorf("send verification email: %v: %w", err, domain.ErrDependency)
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, in domain.VerifyOTPRequest) (*domain.AdminRequest, error) {
	req, err := s.repo.GetPendingByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if err := otp.Check(req, in.OTP, s.now()); err != nil {
		if errors.Is(err, otp.ErrMismatch) {
			ferr := s.repo.RecordOTPFailure(ctx, req.RequestID, req.OTP.Code)
			if ferr != nil && !errors.Is(ferr, domain.ErrConflict) {
				return nil, ferr
			}
		}
		return nil, err
	}
	if err := s.repo.MarkEmailVerified(ctx, req.RequestID, in.OTP); err != nil {
		return nil, err
	}
	otp.Clear(req)
	req.EmailVerified = true
	return req, nil
}

// Submit stores the applicant profile on the verified pending request.
func (s *service) Submit(ctx context.Context, in domain.SubmitAdminRequest) (*domain.AdminRequest, error) {
	req, err := s.repo.GetPendingByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if !req.EmailVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrForbidden)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	profile := map[string]interface{}{
		fieldName:         in.Name,
		fieldRollNo:       in.RollNo,
		fieldBranch:       in.Branch,
		fieldYear:         in.Year,
		fieldPhone:        in.Phone,
		fieldPasswordHash: string(hash),
	}
	if err := s.repo.SaveProfile(ctx, req.RequestID, profile); err != nil {
		return nil, err
	}
	req.Name = in.Name
	req.RollNo = in.RollNo
	req.Branch = in.Branch
	req.Year = in.Year
	req.Phone = in.Phone
	req.PasswordHash = string(hash)
	req.UpdatedAt = s.now().UTC()
	return req, nil
}

// List returns requests in status, newest first. An empty status means pending.
func (s *service) List(ctx context.Context, status string) ([]domain.AdminRequest, error) {
	if status == "" {
		status = domain.RequestStatusPending
	}
	switch status {
	case domain.RequestStatusPending, domain.RequestStatusApproved, domain.RequestStatusRejected:
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrBadRequest)
	}
	reqs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (s *service) Get(ctx context.Context, requestID string) (*domain.AdminRequest, error) {
	return s.repo.Get(ctx, requestID)
}

// Approve promotes the applicant to a normal admin and records the reviewer.
func (s *service) Approve(ctx context.Context, requestID, reviewerID string) (*domain.AdminRequest, error) {
	req, err := s.reviewable(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.EmailVerified {
		return nil, fmt.Errorf("applicant email not verified: %w", domain.ErrBadRequest)
	}
	if !req.ProfileComplete() {
		return nil, fmt.Errorf("applicant profile incomplete: %w", domain.ErrBadRequest)
	}
	if err := s.ensureNotAdmin(ctx, req.Email); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	admin := &domain.Admin{
		AdminID:      id.New(),
		Name:         req.Name,
		Email:        req.Email,
		RollNo:       req.RollNo,
		Branch:       req.Branch,
		Year:         req.Year,
		Phone:        req.Phone,
		PasswordHash: req.PasswordHash,
		Role:         domain.AdminRoleNormal,
		Enable:       true,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	if err := s.repo.Approve(ctx, requestID, reviewerID, admin, at); err != nil {
		return nil, err
	}
	markReviewed(req, domain.RequestStatusApproved, reviewerID, at)
	slog.Info("admin request approved", "request_id", requestID, "reviewer", reviewerID, "admin_id", admin.AdminID)

	s.notify(ctx, req, "Your admin request was approved",
		fmt.Sprintf("Hi %s,\n\nYour admin request has been approved. You can now log in with your email and password.\n", req.Name),
		"Your blood camp admin request was approved. Log in with your email and password.")
	return req, nil
}

func (s *service) Reject(ctx context.Context, requestID, reviewerID string) (*domain.AdminRequest, error) {
	req, err := s.reviewable(ctx, requestID)
	if err != nil {
		return nil, err
	}
	at := s.now().UTC()
	if err := s.repo.Reject(ctx, requestID, req.Email, reviewerID, at); err != nil {
		return nil, err
	}
	markReviewed(req, domain.RequestStatusRejected, reviewerID, at)
	slog.Info("admin request rejected", "request_id", requestID, "reviewer", reviewerID)

	s.notify(ctx, req, "Your admin request was rejected",
		fmt.Sprintf("Hi %s,\n\nYour admin request has been reviewed and was not approved.\n", req.Name),
		"Your blood camp admin request was reviewed and not approved.")
	return req, nil
}

func (s *service) reviewable(ctx context.Context, requestID string) (*domain.AdminRequest, error) {
	req, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, fmt.Errorf("admin request already %s: %w", req.Status, domain.ErrConflict)
	}
	return req, nil
}

func (s *service) ensureNotAdmin(ctx context.Context, email string) error {
	_, err := s.adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return fmt.Errorf("email already belongs to an admin: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// notify emails the applicant and, when a phone number is on file, texts them
// the short sms message. Failures are logged only; the decision is already stored.
func (s *service) notify(ctx context.Context, req *domain.AdminRequest, subject, body, sms string) {
	var g errgroup.Group
	g.Go(func() error {
		if err := s.mailer.SendEmail(req.Email, subject, body); err != nil {
			return fmt.Errorf("email: %w", err)
		}
		return nil
	})
	if req.Phone != "" && s.smsSender != nil {
		g.Go(func() error {
			if err := s.smsSender.SendSMS(ctx, req.Phone, sms); err != nil {
				return fmt.Errorf("sms: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("admin request notification failed", "request_id", req.RequestID, "err", err)
	}
}

func markReviewed(req *domain.AdminRequest, status, reviewerID string, at time.Time) {
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	req.UpdatedAt = at
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
