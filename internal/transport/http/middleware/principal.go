package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/authz"
)

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type adminGetter interface {
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
}

// StoreResolver resolves principals against the users and admins tables, so
// role changes and disabled accounts take effect on the next request.
type StoreResolver struct {
	users  userGetter
	admins adminGetter
}

func NewStoreResolver(users userGetter, admins adminGetter) *StoreResolver {
	return &StoreResolver{users: users, admins: admins}
}

func (s *StoreResolver) Resolve(ctx context.Context, subject, kind string) (*authz.Principal, error) {
	switch authz.Kind(kind) {
	case authz.KindUser:
		u, err := s.users.Get(ctx, subject)
		if err != nil {
			return nil, err
		}
		if !u.Verified || !u.Enable {
			return nil, fmt.Errorf("user %s inactive: %w", subject, domain.ErrUnauthorized)
		}
		return &authz.Principal{ID: u.UserID, Name: u.Name, Email: u.Email, Kind: authz.KindUser}, nil
	case authz.KindAdmin:
		a, err := s.admins.Get(ctx, subject)
		if err != nil {
			return nil, err
		}
		if !a.Enable {
			return nil, fmt.Errorf("admin %s disabled: %w", subject, domain.ErrUnauthorized)
		}
		return &authz.Principal{
			ID:    a.AdminID,
			Name:  a.Name,
			Email: a.Email,
			Kind:  authz.KindAdmin,
			Role:  authz.AdminRole(a.Role),
		}, nil
	default:
		return nil, errors.New("unknown principal kind")
	}
}
