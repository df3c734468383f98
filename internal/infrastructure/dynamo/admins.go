package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
)

// AdminRepo provides typed DynamoDB operations for the admins table.
type AdminRepo struct {
	t table
}

func NewAdminRepo(client *dynamodb.Client, tableName string) *AdminRepo {
	return &AdminRepo{t: table{client: client, name: tableName}}
}

// Create inserts an admin and claims its email in one transaction.
func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	in, err := createWithEmailInput(r.t.name, "admin_id", a.AdminID, a.Email, a)
	if err != nil {
		return err
	}
	return r.t.transact(ctx, in, "email already belongs to an admin")
}

func (r *AdminRepo) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	return getItem[domain.Admin](ctx, r.t, strKey("admin_id", adminID), "admin")
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	admins, err := queryIndex[domain.Admin](ctx, r.t, "email-index", "email", email, nil)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, fmt.Errorf("admin not found: %w", domain.ErrNotFound)
	}
	return &admins[0], nil
}

// ListPage returns a page of admins ordered by table scan order.
func (r *AdminRepo) ListPage(ctx context.Context, limit int32, cursor string) ([]domain.Admin, string, error) {
	return scanPage[domain.Admin](ctx, r.t, "admin_id", limit, notGuard("admin_id"), cursor)
}

// CountByRole counts enabled admins holding role.
func (r *AdminRepo) CountByRole(ctx context.Context, role string) (int, error) {
	p := dynamodb.NewQueryPaginator(r.t.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.t.name),
		IndexName:              aws.String("role-index"),
		KeyConditionExpression: aws.String("#r = :r"),
		FilterExpression:       aws.String("#e = :t"),
		ExpressionAttributeNames: map[string]string{
			"#r": fieldRole,
			"#e": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: role},
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		Select: types.SelectCount,
	})
	total := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
	}
	return total, nil
}

func (r *AdminRepo) UpdateRole(ctx context.Context, adminID, role string) error {
	return r.t.update(ctx, strKey("admin_id", adminID), map[string]interface{}{
		fieldRole:      role,
		fieldUpdatedAt: time.Now().UTC(),
	}, exists("admin_id"))
}

// Delete removes the admin and frees its email for reuse.
func (r *AdminRepo) Delete(ctx context.Context, adminID, email string) error {
	return r.t.transact(ctx, r.deleteInput(adminID, email), "admin already deleted")
}

func (r *AdminRepo) deleteInput(adminID, email string) *dynamodb.TransactWriteItemsInput {
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.t.name),
				Key:                 strKey("admin_id", adminID),
				ConditionExpression: aws.String("attribute_exists(admin_id)"),
			}},
			releaseEmail(r.t.name, "admin_id", email),
		},
	}
}
