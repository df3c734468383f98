package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/eligibility"
)

// DonorRepo provides typed DynamoDB operations for the donors table.
// last_donation is stored as unix seconds so eligibility can be filtered server-side.
type DonorRepo struct {
	t table
}

func NewDonorRepo(client *dynamodb.Client, tableName string) *DonorRepo {
	return &DonorRepo{t: table{client: client, name: tableName}}
}

func activeCond() *expr {
	return &expr{
		text:   "#act = :active",
		names:  map[string]string{"#act": fieldIsActive},
		values: map[string]types.AttributeValue{":active": &types.AttributeValueMemberBOOL{Value: true}},
	}
}

// donorFilter builds the listing filter: active donors, optionally only those
// whose cooldown has passed at now.
func donorFilter(f domain.DonorFilter, now time.Time) *expr {
	e := activeCond()
	if f.EligibleOnly {
		e.text += " AND (attribute_not_exists(#ld) OR #ld <= :cutoff)"
		e.names["#ld"] = fieldLastDonation
		e.values[":cutoff"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(eligibility.Cutoff(now).Unix(), 10)}
	}
	return e
}

func (r *DonorRepo) Create(ctx context.Context, d *domain.Donor) error {
	return r.t.put(ctx, d, aws.String("attribute_not_exists(donor_id)"))
}

func (r *DonorRepo) Get(ctx context.Context, donorID string) (*domain.Donor, error) {
	return getItem[domain.Donor](ctx, r.t, strKey("donor_id", donorID), "donor")
}

// List returns active donors matching f. Filtering by blood group queries the
// blood_group-index and returns every match in one page.
func (r *DonorRepo) List(ctx context.Context, f domain.DonorFilter, now time.Time, limit int32, cursor string) ([]domain.Donor, string, error) {
	if f.BloodGroup != "" {
		donors, err := queryIndex[domain.Donor](ctx, r.t, "blood_group-index", "blood_group", f.BloodGroup, donorFilter(f, now))
		return donors, "", err
	}
	return scanPage[domain.Donor](ctx, r.t, "donor_id", limit, donorFilter(f, now), cursor)
}

// Update applies a partial update to an active donor.
func (r *DonorRepo) Update(ctx context.Context, donorID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, strKey("donor_id", donorID), updates, activeCond())
}

func (r *DonorRepo) SoftDelete(ctx context.Context, donorID string) error {
	return r.Update(ctx, donorID, map[string]interface{}{fieldIsActive: false})
}

// RecordDonation stores a donation at `at` only if the donor is still active and
// its version equals expectedVersion, bumping the version. A concurrent
// recording that already bumped the version makes this call fail with ErrConflict.
func (r *DonorRepo) RecordDonation(ctx context.Context, donorID string, expectedVersion int64, at time.Time) error {
	_, err := r.t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.t.name),
		Key:       strKey("donor_id", donorID),
		UpdateExpression: aws.String(
			"SET #ld = :ld, #upd = :upd, #ver = #ver + :one ADD #cnt :one"),
		ConditionExpression: aws.String("#ver = :ver AND #act = :active"),
		ExpressionAttributeNames: map[string]string{
			"#ld":  fieldLastDonation,
			"#upd": fieldUpdatedAt,
			"#ver": fieldVersion,
			"#cnt": fieldDonationCount,
			"#act": fieldIsActive,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ld":     &types.AttributeValueMemberN{Value: strconv.FormatInt(at.Unix(), 10)},
			":upd":    &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
			":one":    &types.AttributeValueMemberN{Value: "1"},
			":ver":    &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err := mapConditionErr(err, "donor changed concurrently"); err != nil {
		return fmt.Errorf("record donation: %w", err)
	}
	return nil
}
