package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
)

// Email uniqueness is held by guard items stored next to the entities they
// protect. A guard's partition key is emailGuardPrefix+address and it carries
// the owning entity id. Guards have no email attribute, so they never appear
// in email-index or the other GSIs; table scans must filter them out.
const (
	emailGuardPrefix = "email#"
	fieldOwnerID     = "owner_id"
)

func emailGuardKey(pk, email string) map[string]types.AttributeValue {
	return strKey(pk, emailGuardPrefix+email)
}

// notGuard filters guard items out of a scan keyed on pk.
func notGuard(pk string) *expr {
	return &expr{
		text:   "NOT begins_with(#gpk, :gprefix)",
		names:  map[string]string{"#gpk": pk},
		values: map[string]types.AttributeValue{":gprefix": &types.AttributeValueMemberS{Value: emailGuardPrefix}},
	}
}

// putNew inserts item into tableName provided no item with the same pk exists.
func putNew(tableName, pk string, item interface{}) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal %s item: %w", tableName, err)
	}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(tableName),
		Item:                av,
		ConditionExpression: aws.String(fmt.Sprintf("attribute_not_exists(%s)", pk)),
	}}, nil
}

// claimEmail reserves email in tableName for ownerID. It fails the enclosing
// transaction when the address is already claimed.
func claimEmail(tableName, pk, email, ownerID string) types.TransactWriteItem {
	item := emailGuardKey(pk, email)
	item[fieldOwnerID] = &types.AttributeValueMemberS{Value: ownerID}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(tableName),
		Item:                item,
		ConditionExpression: aws.String(fmt.Sprintf("attribute_not_exists(%s)", pk)),
	}}
}

// releaseEmail frees the guard on email in tableName.
func releaseEmail(tableName, pk, email string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(tableName),
		Key:       emailGuardKey(pk, email),
	}}
}

// createWithEmailInput builds the transaction that inserts an entity together
// with the guard on its email.
func createWithEmailInput(tableName, pk, ownerID, email string, item interface{}) (*dynamodb.TransactWriteItemsInput, error) {
	put, err := putNew(tableName, pk, item)
	if err != nil {
		return nil, err
	}
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{put, claimEmail(tableName, pk, email, ownerID)},
	}, nil
}

// transact runs in and reports a cancelled transaction as domain.ErrConflict.
func (t table) transact(ctx context.Context, in *dynamodb.TransactWriteItemsInput, msg string) error {
	_, err := t.client.TransactWriteItems(ctx, in)
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	}
	return err
}
