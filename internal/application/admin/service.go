package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/authz"
	"github.com/bloodcamp-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Admin, error)
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Admin, string, error)
	ChangeRole(ctx context.Context, actorID, targetID, role string) (*domain.Admin, error)
	Delete(ctx context.Context, actorID, targetID string) error
	EnsureSuperAdmin(ctx context.Context, name, email, password string) error
}

type adminStore interface {
	Create(ctx context.Context, a *domain.Admin) error
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	ListPage(ctx context.Context, limit int32, cursor string) ([]domain.Admin, string, error)
	CountByRole(ctx context.Context, role string) (int, error)
	UpdateRole(ctx context.Context, adminID, role string) error
	Delete(ctx context.Context, adminID, email string) error
}

type tokenSigner interface {
	Sign(subject, kind string) (string, error)
}

type service struct {
	repo        adminStore
	jwtProvider tokenSigner
	now         func() time.Time
}

type ServiceDeps struct {
	AdminRepo   adminStore
	JWTProvider tokenSigner
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.AdminRepo, jwtProvider: deps.JWTProvider, now: now}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Admin, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if !a.Enable {
		return "", nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	token, err := s.jwtProvider.Sign(a.AdminID, string(authz.KindAdmin))
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

func (s *service) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	return s.repo.Get(ctx, adminID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Admin, string, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListPage(ctx, int32(limit), cursor)
}

// ChangeRole sets target's role. The last main admin cannot be demoted.
func (s *service) ChangeRole(ctx context.Context, actorID, targetID, role string) (*domain.Admin, error) {
	if role != domain.AdminRoleNormal && role != domain.AdminRoleMain {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	if err := s.requireMain(ctx, actorID); err != nil {
		return nil, err
	}
	target, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}
	if target.Role == domain.AdminRoleMain {
		if err := s.guardLastMain(ctx, "cannot demote the last super admin"); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	slog.Info("admin role changed", "actor", actorID, "target", targetID, "role", role)
	target.Role = role
	target.UpdatedAt = s.now().UTC()
	return target, nil
}

func (s *service) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return fmt.Errorf("cannot delete your own account: %w", domain.ErrBadRequest)
	}
	if err := s.requireMain(ctx, actorID); err != nil {
		return err
	}
	target, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == domain.AdminRoleMain {
		if err := s.guardLastMain(ctx, "cannot delete the last super admin"); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, targetID, target.Email); err != nil {
		return err
	}
	slog.Info("admin deleted", "actor", actorID, "target", targetID)
	return nil
}

// EnsureSuperAdmin seeds a main admin from configuration when none exists.
// An existing admin with the same email is promoted instead.
func (s *service) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		slog.Warn("super admin bootstrap skipped: email or password not configured")
		return nil
	}
	n, err := s.repo.CountByRole(ctx, domain.AdminRoleMain)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		slog.Info("promoting existing admin to super admin", "admin_id", existing.AdminID)
		return s.repo.UpdateRole(ctx, existing.AdminID, domain.AdminRoleMain)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	a := &domain.Admin{
		AdminID:      id.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.AdminRoleMain,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	slog.Info("super admin created", "admin_id", a.AdminID, "email", email)
	return nil
}

func (s *service) requireMain(ctx context.Context, actorID string) error {
	actor, err := s.repo.Get(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != domain.AdminRoleMain || !actor.Enable {
		return fmt.Errorf("super admin privileges required: %w", domain.ErrForbidden)
	}
	return nil
}

// guardLastMain fails with ErrConflict when at most one main admin remains.
// Two concurrent demotions can still both pass this check.
func (s *service) guardLastMain(ctx context.Context, msg string) error {
	n, err := s.repo.CountByRole(ctx, domain.AdminRoleMain)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
