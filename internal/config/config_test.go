package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresGatewayKeys(t *testing.T) {
	t.Setenv("PUBLIC_KEY", "")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingGatewayKeys)

	t.Setenv("PUBLIC_KEY", "rzp_test_abc")
	_, err = Load()
	require.ErrorIs(t, err, ErrMissingGatewayKeys)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PUBLIC_KEY", "rzp_test_abc")
	t.Setenv("SECRET_KEY", " s3cret ")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("RECEIPTS_WORKERS", "nope")
	t.Setenv("RAZORPAY_CURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 4, cfg.ReceiptsWorkers)
	assert.Empty(t, cfg.WebhookSecret)
}
