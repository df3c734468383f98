package dynamo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// updateExpr is a SET expression with its placeholder maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// expr is a condition or filter expression with its own placeholders.
type expr struct {
	text   string
	names  map[string]string
	values map[string]types.AttributeValue
}

// exists is the condition that the item with primary key pk is present.
func exists(pk string) *expr {
	return &expr{text: fmt.Sprintf("attribute_exists(%s)", pk)}
}

// merge folds e's placeholders into names and values and returns its text.
func (e *expr) merge(names map[string]string, values map[string]types.AttributeValue) *string {
	if e == nil {
		return nil
	}
	for k, v := range e.names {
		names[k] = v
	}
	for k, v := range e.values {
		values[k] = v
	}
	return aws.String(e.text)
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (*updateExpr, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := &updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

// table bundles the client and table name every repo needs.
type table struct {
	client *dynamodb.Client
	name   string
}

func (t table) put(ctx context.Context, item interface{}, cond *string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", t.name, err)
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(t.name),
		Item:                av,
		ConditionExpression: cond,
	})
	return mapConditionErr(err, "item already exists")
}

func getItem[T any](ctx context.Context, t table, key map[string]types.AttributeValue, what string) (*T, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	}
	var v T
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// queryIndex returns every item whose index attribute equals value,
// optionally narrowed by filter.
func queryIndex[T any](ctx context.Context, t table, index, attr, value string, filter *expr) ([]T, error) {
	names := map[string]string{"#a": attr}
	values := map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#a = :v"),
		FilterExpression:       filter.merge(names, values),
	}
	input.ExpressionAttributeNames = names
	input.ExpressionAttributeValues = values
	var items []T
	p := dynamodb.NewQueryPaginator(t.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []T
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// scanAll returns every item matching filter across all scan pages.
func scanAll[T any](ctx context.Context, t table, filter *expr) ([]T, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(t.name)}
	if filter != nil {
		input.ExpressionAttributeNames = map[string]string{}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{}
		input.FilterExpression = filter.merge(input.ExpressionAttributeNames, input.ExpressionAttributeValues)
	}
	var items []T
	p := dynamodb.NewScanPaginator(t.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []T
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// scanPage returns one page of a filtered scan.
// cursor is a base64-encoded primary key value used as ExclusiveStartKey;
// the returned cursor is empty when there are no more pages.
func scanPage[T any](ctx context.Context, t table, pk string, limit int32, filter *expr, cursor string) ([]T, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.name),
		Limit:     aws.Int32(limit),
	}
	if filter != nil {
		input.ExpressionAttributeNames = map[string]string{}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{}
		input.FilterExpression = filter.merge(input.ExpressionAttributeNames, input.ExpressionAttributeValues)
		if len(input.ExpressionAttributeNames) == 0 {
			input.ExpressionAttributeNames = nil
		}
		if len(input.ExpressionAttributeValues) == 0 {
			input.ExpressionAttributeValues = nil
		}
	}
	if cursor != "" {
		id, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey(pk, id)
	}
	out, err := t.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var items []T
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, "", err
	}
	next := ""
	if v, ok := out.LastEvaluatedKey[pk].(*types.AttributeValueMemberS); ok {
		next = encodeCursor(v.Value)
	}
	return items, next, nil
}

func (t table) update(ctx context.Context, key map[string]types.AttributeValue, updates map[string]interface{}, cond *expr) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	return t.updateItem(ctx, key, ue.Expr, ue, cond)
}

// updateItem runs an update expression text whose placeholders live in ue, plus cond.
func (t table) updateItem(ctx context.Context, key map[string]types.AttributeValue, text string, ue *updateExpr, cond *expr) error {
	_, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       key,
		UpdateExpression:          aws.String(text),
		ConditionExpression:       cond.merge(ue.Names, ue.Values),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return mapConditionErr(err, "item changed or missing")
}

// mapConditionErr turns a failed ConditionExpression into domain.ErrConflict.
func mapConditionErr(err error, msg string) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	}
	return err
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
