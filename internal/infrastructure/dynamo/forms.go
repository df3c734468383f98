package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bloodcamp-api/internal/domain"
)

// FormRepo provides typed DynamoDB operations for the forms table.
type FormRepo struct {
	t table
}

func NewFormRepo(client *dynamodb.Client, tableName string) *FormRepo {
	return &FormRepo{t: table{client: client, name: tableName}}
}

func (r *FormRepo) Create(ctx context.Context, f *domain.Form) error {
	return r.t.put(ctx, f, aws.String("attribute_not_exists(form_id)"))
}

func (r *FormRepo) Get(ctx context.Context, formID string) (*domain.Form, error) {
	return getItem[domain.Form](ctx, r.t, strKey("form_id", formID), "form")
}

// ListActive returns every active form in scan order.
func (r *FormRepo) ListActive(ctx context.Context) ([]domain.Form, error) {
	return scanAll[domain.Form](ctx, r.t, activeCond())
}

func (r *FormRepo) Update(ctx context.Context, formID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, strKey("form_id", formID), updates, activeCond())
}

func (r *FormRepo) SoftDelete(ctx context.Context, formID string) error {
	return r.Update(ctx, formID, map[string]interface{}{fieldIsActive: false})
}

// AppendAttachment adds a to an active form.
func (r *FormRepo) AppendAttachment(ctx context.Context, formID string, a domain.Attachment) error {
	return r.t.appendAttachment(ctx, strKey("form_id", formID), a)
}

// RemoveAttachment drops the attachment at idx if it is still attachmentID.
// A concurrent change to the list makes it fail with ErrConflict.
func (r *FormRepo) RemoveAttachment(ctx context.Context, formID string, idx int, attachmentID string) error {
	return r.t.removeAttachment(ctx, strKey("form_id", formID), idx, attachmentID)
}
