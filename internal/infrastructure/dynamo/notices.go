package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bloodcamp-api/internal/domain"
)

// NoticeRepo provides typed DynamoDB operations for the notices table.
type NoticeRepo struct {
	t table
}

func NewNoticeRepo(client *dynamodb.Client, tableName string) *NoticeRepo {
	return &NoticeRepo{t: table{client: client, name: tableName}}
}

func (r *NoticeRepo) Create(ctx context.Context, n *domain.Notice) error {
	return r.t.put(ctx, n, aws.String("attribute_not_exists(notice_id)"))
}

func (r *NoticeRepo) Get(ctx context.Context, noticeID string) (*domain.Notice, error) {
	return getItem[domain.Notice](ctx, r.t, strKey("notice_id", noticeID), "notice")
}

// ListActive returns every active notice in scan order.
func (r *NoticeRepo) ListActive(ctx context.Context) ([]domain.Notice, error) {
	return scanAll[domain.Notice](ctx, r.t, activeCond())
}

func (r *NoticeRepo) Update(ctx context.Context, noticeID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, strKey("notice_id", noticeID), updates, activeCond())
}

func (r *NoticeRepo) SoftDelete(ctx context.Context, noticeID string) error {
	return r.Update(ctx, noticeID, map[string]interface{}{fieldIsActive: false})
}

// AppendAttachment adds a to an active notice.
func (r *NoticeRepo) AppendAttachment(ctx context.Context, noticeID string, a domain.Attachment) error {
	return r.t.appendAttachment(ctx, strKey("notice_id", noticeID), a)
}

// RemoveAttachment drops the attachment at idx if it is still attachmentID.
// A concurrent change to the list makes it fail with ErrConflict.
func (r *NoticeRepo) RemoveAttachment(ctx context.Context, noticeID string, idx int, attachmentID string) error {
	return r.t.removeAttachment(ctx, strKey("notice_id", noticeID), idx, attachmentID)
}
