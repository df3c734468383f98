package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/bloodcamp-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSpecs_IndexesMatchRepoQueries(t *testing.T) {
	specs := tableSpecs(config.DynamoTables{
		Users: "u", Admins: "a", AdminRequests: "r", Donors: "d", Notices: "n", Forms: "f",
	})
	require.Len(t, specs, 6)

	indexes := map[string][]string{}
	for _, s := range specs {
		in := s.input()
		assert.Equal(t, s.name, aws.ToString(in.TableName))
		assert.Len(t, in.AttributeDefinitions, 1+len(s.indexed))
		for _, g := range in.GlobalSecondaryIndexes {
			indexes[s.name] = append(indexes[s.name], aws.ToString(g.IndexName))
		}
	}
	assert.Equal(t, []string{"email-index"}, indexes["u"])
	assert.Equal(t, []string{"email-index", "role-index"}, indexes["a"])
	assert.Equal(t, []string{"email-index", "status-index"}, indexes["r"])
	assert.Equal(t, []string{"blood_group-index"}, indexes["d"])
	assert.Empty(t, indexes["n"])
	assert.Empty(t, indexes["f"])
}

func TestGSI_SortKey(t *testing.T) {
	g := gsi("x-index", "x", "y")
	require.Len(t, g.KeySchema, 2)
	assert.Equal(t, "y", aws.ToString(g.KeySchema[1].AttributeName))
}
