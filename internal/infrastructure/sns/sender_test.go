package sns

import (
	"context"
	"testing"

	"github.com/bloodcamp-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_DisabledLogsOnly(t *testing.T) {
	s, err := NewSender(&config.Config{SNSEnabled: false})
	require.NoError(t, err)
	assert.IsType(t, logSender{}, s)
	assert.NoError(t, s.SendSMS(context.Background(), "+919800000000", "approved"))
}
