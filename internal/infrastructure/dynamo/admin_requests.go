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

// AdminRequestRepo provides typed DynamoDB operations for the admin_requests
// table. Approval also writes to the admins table in the same transaction.
type AdminRequestRepo struct {
	t           table
	adminsTable string
}

func NewAdminRequestRepo(client *dynamodb.Client, tableName, adminsTable string) *AdminRequestRepo {
	return &AdminRequestRepo{t: table{client: client, name: tableName}, adminsTable: adminsTable}
}

// pendingCond holds while the request is still awaiting review.
func pendingCond() *expr {
	return &expr{
		text:   "#st = :pending",
		names:  map[string]string{"#st": fieldStatus},
		values: map[string]types.AttributeValue{":pending": &types.AttributeValueMemberS{Value: domain.RequestStatusPending}},
	}
}

func pendingVerifiedCond() *expr {
	cond := pendingCond()
	cond.text += " AND #ev = :true"
	cond.names["#ev"] = fieldEmailVerified
	cond.values[":true"] = &types.AttributeValueMemberBOOL{Value: true}
	return cond
}

// Create inserts a pending request and claims its email, so only one open
// request per address can exist.
func (r *AdminRequestRepo) Create(ctx context.Context, req *domain.AdminRequest) error {
	in, err := createWithEmailInput(r.t.name, "request_id", req.RequestID, req.Email, req)
	if err != nil {
		return err
	}
	return r.t.transact(ctx, in, "an admin request for this email is already open")
}

func (r *AdminRequestRepo) Get(ctx context.Context, requestID string) (*domain.AdminRequest, error) {
	return getItem[domain.AdminRequest](ctx, r.t, strKey("request_id", requestID), "admin request")
}

// GetPendingByEmail returns the open request for email, if any.
func (r *AdminRequestRepo) GetPendingByEmail(ctx context.Context, email string) (*domain.AdminRequest, error) {
	reqs, err := queryIndex[domain.AdminRequest](ctx, r.t, "email-index", "email", email, pendingCond())
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("admin request not found: %w", domain.ErrNotFound)
	}
	return &reqs[0], nil
}

// ListByStatus returns every request in status via the status-index GSI.
func (r *AdminRequestRepo) ListByStatus(ctx context.Context, status string) ([]domain.AdminRequest, error) {
	return queryIndex[domain.AdminRequest](ctx, r.t, "status-index", fieldStatus, status, nil)
}

func (r *AdminRequestRepo) SetOTP(ctx context.Context, requestID string, c *domain.OTPChallenge) error {
	return r.t.setOTP(ctx, strKey("request_id", requestID), "request_id", c)
}

// MarkEmailVerified consumes the challenge holding code and flags the email verified.
func (r *AdminRequestRepo) MarkEmailVerified(ctx context.Context, requestID, code string) error {
	return r.t.consumeOTP(ctx, strKey("request_id", requestID), code, map[string]interface{}{fieldEmailVerified: true})
}

// SaveProfile stores the applicant's profile while the request is pending and verified.
func (r *AdminRequestRepo) SaveProfile(ctx context.Context, requestID string, profile map[string]interface{}) error {
	profile[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, strKey("request_id", requestID), profile, pendingVerifiedCond())
}

// Approve marks the request approved and creates admin atomically. The
// admin's email is claimed in the admins table and the request's claim is
// released. It fails with ErrConflict when the request is no longer pending
// and verified, or the admin id or email is already taken.
func (r *AdminRequestRepo) Approve(ctx context.Context, requestID, reviewerID string, admin *domain.Admin, at time.Time) error {
	in, err := r.approveInput(requestID, reviewerID, admin, at)
	if err != nil {
		return err
	}
	return r.t.transact(ctx, in, "admin request already reviewed or email taken")
}

func (r *AdminRequestRepo) approveInput(requestID, reviewerID string, admin *domain.Admin, at time.Time) (*dynamodb.TransactWriteItemsInput, error) {
	review, err := r.reviewUpdate(requestID, domain.RequestStatusApproved, reviewerID, at, pendingVerifiedCond())
	if err != nil {
		return nil, err
	}
	put, err := putNew(r.adminsTable, "admin_id", admin)
	if err != nil {
		return nil, err
	}
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			review,
			put,
			claimEmail(r.adminsTable, "admin_id", admin.Email, admin.AdminID),
			releaseEmail(r.t.name, "request_id", admin.Email),
		},
	}, nil
}

// Reject marks a pending request rejected and releases its email claim.
func (r *AdminRequestRepo) Reject(ctx context.Context, requestID, email, reviewerID string, at time.Time) error {
	in, err := r.rejectInput(requestID, email, reviewerID, at)
	if err != nil {
		return err
	}
	return r.t.transact(ctx, in, "admin request already reviewed")
}

func (r *AdminRequestRepo) rejectInput(requestID, email, reviewerID string, at time.Time) (*dynamodb.TransactWriteItemsInput, error) {
	review, err := r.reviewUpdate(requestID, domain.RequestStatusRejected, reviewerID, at, pendingCond())
	if err != nil {
		return nil, err
	}
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{review, releaseEmail(r.t.name, "request_id", email)},
	}, nil
}

func (r *AdminRequestRepo) reviewUpdate(requestID, status, reviewerID string, at time.Time, cond *expr) (types.TransactWriteItem, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:     status,
		fieldReviewedBy: reviewerID,
		fieldReviewedAt: at,
		fieldUpdatedAt:  at,
	})
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(r.t.name),
		Key:                       strKey("request_id", requestID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       cond.merge(ue.Names, ue.Values),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}}, nil
}

// RecordOTPFailure counts a wrong guess against the challenge whose code is code.
func (r *AdminRequestRepo) RecordOTPFailure(ctx context.Context, requestID, code string) error {
	return r.t.recordOTPFailure(ctx, strKey("request_id", requestID), code)
}
