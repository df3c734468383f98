package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bloodcamp-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	t table
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{t: table{client: client, name: tableName}}
}

// Create inserts a new user and claims its email in one transaction. It fails
// with ErrConflict if the id or the email is taken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	in, err := createWithEmailInput(r.t.name, "user_id", u.UserID, u.Email, u)
	if err != nil {
		return err
	}
	return r.t.transact(ctx, in, "email already registered")
}

// Save overwrites the whole user document.
func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	return r.t.put(ctx, u, nil)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return getItem[domain.User](ctx, r.t, strKey("user_id", userID), "user")
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := queryIndex[domain.User](ctx, r.t, "email-index", "email", email, nil)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return &users[0], nil
}

func (r *UserRepo) SetOTP(ctx context.Context, userID string, c *domain.OTPChallenge) error {
	return r.t.setOTP(ctx, strKey("user_id", userID), "user_id", c)
}

// MarkVerified consumes the challenge holding code and flags the user verified.
func (r *UserRepo) MarkVerified(ctx context.Context, userID, code string) error {
	return r.t.consumeOTP(ctx, strKey("user_id", userID), code, map[string]interface{}{fieldVerified: true})
}

// ConsumeOTP clears the challenge holding code without other changes.
func (r *UserRepo) ConsumeOTP(ctx context.Context, userID, code string) error {
	return r.t.consumeOTP(ctx, strKey("user_id", userID), code, map[string]interface{}{})
}

// RecordOTPFailure counts a wrong guess against the challenge whose code is code.
func (r *UserRepo) RecordOTPFailure(ctx context.Context, userID, code string) error {
	return r.t.recordOTPFailure(ctx, strKey("user_id", userID), code)
}
