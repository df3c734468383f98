package s3infra

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/bloodcamp-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, "https://camp.s3.ap-south-1.amazonaws.com",
		defaultBaseURL(&config.Config{S3BucketName: "camp", AWSRegion: "ap-south-1"}))
	assert.Equal(t, "http://localhost:4566/camp",
		defaultBaseURL(&config.Config{S3BucketName: "camp", AWSEndpointURL: "http://localhost:4566/"}))
}

func TestStore_URL(t *testing.T) {
	s := NewStore(nil, &config.Config{S3BucketName: "camp", S3PublicBaseURL: "https://cdn.example.org"})
	assert.Equal(t, "https://cdn.example.org/attachments/a1/01H-camp%20poster.pdf",
		s.URL("attachments/a1/01H-camp poster.pdf"))
}

func TestNewClient_ReturnsClient(t *testing.T) {
	c, err := NewClient(context.Background(), &config.Config{
		AWSRegion: "ap-south-1", AWSEndpointURL: "http://localhost:4566",
		AWSAccessKeyID: "test", AWSSecretKey: "test",
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Options().UsePathStyle)
	assert.Equal(t, "http://localhost:4566", aws.ToString(c.Options().BaseEndpoint))
}
