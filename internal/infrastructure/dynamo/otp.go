package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/otp"
)

const fieldAttempts = "attempts"

// otpCondition matches the stored challenge code while it still has attempts left.
func otpCondition(code string) *expr {
	return &expr{
		text: "#otp.#code = :code AND (attribute_not_exists(#otp.#att) OR #otp.#att < :maxatt)",
		names: map[string]string{
			"#otp":  fieldOTP,
			"#code": "code",
			"#att":  fieldAttempts,
		},
		values: map[string]types.AttributeValue{
			":code":   &types.AttributeValueMemberS{Value: code},
			":maxatt": &types.AttributeValueMemberN{Value: strconv.Itoa(otp.MaxAttempts)},
		},
	}
}

// otpFailureInput bumps the attempt counter of the challenge holding code.
// ADD only works on top-level attributes, so the nested counter uses SET with
// if_not_exists. The condition also refuses once the cap is reached.
func (t table) otpFailureInput(key map[string]types.AttributeValue, code string) *dynamodb.UpdateItemInput {
	cond := otpCondition(code)
	cond.values[":zero"] = &types.AttributeValueMemberN{Value: "0"}
	cond.values[":one"] = &types.AttributeValueMemberN{Value: "1"}
	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       key,
		UpdateExpression:          aws.String("SET #otp.#att = if_not_exists(#otp.#att, :zero) + :one"),
		ConditionExpression:       aws.String(cond.text),
		ExpressionAttributeNames:  cond.names,
		ExpressionAttributeValues: cond.values,
	}
}

// recordOTPFailure counts one wrong guess against the challenge holding code.
// A challenge that was replaced or already exhausted yields domain.ErrConflict.
func (t table) recordOTPFailure(ctx context.Context, key map[string]types.AttributeValue, code string) error {
	_, err := t.client.UpdateItem(ctx, t.otpFailureInput(key, code))
	return mapConditionErr(err, "verification code replaced or exhausted")
}

// setOTP overwrites the challenge stored on an item.
func (t table) setOTP(ctx context.Context, key map[string]types.AttributeValue, pk string, c *domain.OTPChallenge) error {
	return t.update(ctx, key, map[string]interface{}{
		fieldOTP:       c,
		fieldUpdatedAt: time.Now().UTC(),
	}, exists(pk))
}

// consumeOTP removes the challenge and applies set in a single write that only
// succeeds while the stored code still equals code. A replayed code racing the
// first consumer gets domain.ErrConflict.
func (t table) consumeOTP(ctx context.Context, key map[string]types.AttributeValue, code string, set map[string]interface{}) error {
	set[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(set)
	if err != nil {
		return err
	}
	err = t.updateItem(ctx, key, ue.Expr+" REMOVE #otp", ue, otpCondition(code))
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("verification code already used: %w", domain.ErrConflict)
	}
	return err
}
