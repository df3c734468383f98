package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/authz"
	"github.com/bloodcamp-api/internal/pkg/id"
	"github.com/bloodcamp-api/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	VerifySignup(ctx context.Context, req domain.VerifyOTPRequest) (string, *domain.User, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error)
	RequestLoginOTP(ctx context.Context, email string) error
	LoginWithOTP(ctx context.Context, req domain.VerifyOTPRequest) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Save(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetOTP(ctx context.Context, userID string, c *domain.OTPChallenge) error
	MarkVerified(ctx context.Context, userID, code string) error
	ConsumeOTP(ctx context.Context, userID, code string) error
	RecordOTPFailure(ctx context.Context, userID, code string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenSigner interface {
	Sign(subject, kind string) (string, error)
}

type service struct {
	repo        userStore
	mailer      mailer
	jwtProvider tokenSigner
	now         func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	Mailer      mailer
	JWTProvider tokenSigner
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        deps.UserRepo,
		mailer:      deps.Mailer,
		jwtProvider: deps.JWTProvider,
		now:         now,
	}
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers an unverified user and emails a verification code. Signing
// up again before verifying refreshes the name, password and code.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	email := NormalizeEmail(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	u, err := s.repo.GetByEmail(ctx, email)
	isNew := false
	switch {
	case err == nil && u.Verified:
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case err == nil:
		u.Name = req.Name
		u.PasswordHash = string(hash)
		u.UpdatedAt = now
	case errors.Is(err, domain.ErrNotFound):
		isNew = true
		u = &domain.User{
			UserID:       id.New(),
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hash),
			Enable:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	default:
		return nil, err
	}

	code, err := otp.Generate(u, now)
	if err != nil {
		return nil, err
	}
	if isNew {
		err = s.repo.Create(ctx, u)
	} else {
		err = s.repo.Save(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(u, code, "Verify your email"); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) VerifySignup(ctx context.Context, req domain.VerifyOTPRequest) (string, *domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return "", nil, err
	}
	if u.Verified {
		return "", nil, fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	if err := s.checkCode(ctx, u, req.OTP); err != nil {
		return "", nil, err
	}
	if err := s.repo.MarkVerified(ctx, u.UserID, req.OTP); err != nil {
		return "", nil, err
	}
	otp.Clear(u)
	u.Verified = true
	return s.issue(u)
}

// ResendOTP re-issues the signup code of an unverified user.
func (s *service) ResendOTP(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if u.Verified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	return s.reissue(ctx, u, "Your new verification code")
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err := loginAllowed(u); err != nil {
		return "", nil, err
	}
	return s.issue(u)
}

// RequestLoginOTP emails a passwordless login code to a verified user.
func (s *service) RequestLoginOTP(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if err := loginAllowed(u); err != nil {
		return err
	}
	return s.reissue(ctx, u, "Your login code")
}

func (s *service) LoginWithOTP(ctx context.Context, req domain.VerifyOTPRequest) (string, *domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return "", nil, err
	}
	if err := loginAllowed(u); err != nil {
		return "", nil, err
	}
	if err := s.checkCode(ctx, u, req.OTP); err != nil {
		return "", nil, err
	}
	if err := s.repo.ConsumeOTP(ctx, u.UserID, req.OTP); err != nil {
		return "", nil, err
	}
	otp.Clear(u)
	return s.issue(u)
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func loginAllowed(u *domain.User) error {
	if !u.Verified {
		return fmt.Errorf("email not verified: %w", domain.ErrForbidden)
	}
	if !u.Enable {
		return fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return nil
}

// checkCode verifies candidate against u's challenge and counts a wrong guess
// towards otp.MaxAttempts.
func (s *service) checkCode(ctx context.Context, u *domain.User, candidate string) error {
	err := otp.Check(u, candidate, s.now())
	if errors.Is(err, otp.ErrMismatch) {
		ferr := s.repo.RecordOTPFailure(ctx, u.UserID, u.OTP.Code)
		if ferr != nil && !errors.Is(ferr, domain.ErrConflict) {
			return ferr
		}
	}
	return err
}

func (s *service) reissue(ctx context.Context, u *domain.User, subject string) error {
	code, err := otp.Generate(u, s.now())
	if err != nil {
		return err
	}
	if err := s.repo.SetOTP(ctx, u.UserID, u.OTP); err != nil {
		return err
	}
	return s.sendCode(u, code, subject)
}

func (s *service) sendCode(u *domain.User, code, subject string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour code is %s. It expires in %d minutes.\n", u.Name, code, int(otp.TTL/time.Minute))
	if err := s.mailer.SendEmail(u.Email, subject, body); err != nil {
		return fmt.Errorf("send verification email: %v: %w", err, domain.ErrDependency)
	}
	return nil
}

func (s *service) issue(u *domain.User) (string, *domain.User, error) {
	token, err := s.jwtProvider.Sign(u.UserID, string(authz.KindUser))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
