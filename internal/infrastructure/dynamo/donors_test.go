package dynamo

import (
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/eligibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonorFilter_ActiveOnly(t *testing.T) {
	e := donorFilter(domain.DonorFilter{}, time.Now())
	assert.Equal(t, "#act = :active", e.text)
	assert.NotContains(t, e.values, ":cutoff")
}

func TestDonorFilter_EligibleOnlyUsesCutoffSeconds(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	e := donorFilter(domain.DonorFilter{EligibleOnly: true}, now)

	assert.Contains(t, e.text, "attribute_not_exists(#ld) OR #ld <= :cutoff")
	assert.Equal(t, fieldLastDonation, e.names["#ld"])
	cutoff, ok := e.values[":cutoff"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(eligibility.Cutoff(now).Unix(), 10), cutoff.Value)
}

func TestDonorFilter_MergesWithoutClobbering(t *testing.T) {
	names := map[string]string{"#a": "blood_group"}
	values := map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: "O+"}}
	text := donorFilter(domain.DonorFilter{EligibleOnly: true}, time.Now()).merge(names, values)

	require.NotNil(t, text)
	assert.Equal(t, "blood_group", names["#a"])
	assert.Len(t, names, 3)
	assert.Len(t, values, 3)
}
