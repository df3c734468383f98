package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
)

// appendAttachment adds a to the attachments list of an active item.
func (t table) appendAttachment(ctx context.Context, key map[string]types.AttributeValue, a domain.Attachment) error {
	av, err := attributevalue.Marshal([]domain.Attachment{a})
	if err != nil {
		return fmt.Errorf("marshal attachment: %w", err)
	}
	ue := &updateExpr{
		Names: map[string]string{"#att": fieldAttachments, "#upd": fieldUpdatedAt},
		Values: map[string]types.AttributeValue{
			":new":   av,
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":upd":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	}
	return t.updateItem(ctx, key,
		"SET #att = list_append(if_not_exists(#att, :empty), :new), #upd = :upd", ue, activeCond())
}

// removeAttachment drops the element at idx, provided it still holds attachmentID.
func (t table) removeAttachment(ctx context.Context, key map[string]types.AttributeValue, idx int, attachmentID string) error {
	ue := &updateExpr{
		Names: map[string]string{"#att": fieldAttachments, "#aid": "attachment_id", "#upd": fieldUpdatedAt},
		Values: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: attachmentID},
			":upd": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	}
	cond := activeCond()
	cond.text += fmt.Sprintf(" AND #att[%d].#aid = :aid", idx)
	return t.updateItem(ctx, key, fmt.Sprintf("REMOVE #att[%d] SET #upd = :upd", idx), ue, cond)
}
