package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	conf := Default()
	require.NotNil(t, conf)

	assert.Equal(t, "0.0.0.0:4000", conf.RESTListenAddress)
	assert.Equal(t, 30*time.Second, conf.StopTimeout)

	assert.Equal(t, 365*24*time.Hour, conf.Reconciler.PlanDuration)
	assert.Equal(t, 8, conf.Reconciler.MigratorNumWorkers)
	assert.Equal(t, 30*time.Second, conf.Reconciler.ConsultCacheTTL)

	assert.Equal(t, "https://api.mercadopago.com", conf.Payment.Url)
	assert.Equal(t, 30*time.Second, conf.Payment.RequestTimeout)

	assert.Equal(t, "dedicart", conf.Storage.Bucket)
	assert.False(t, conf.Redis.Enabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DEDICART_RECONCILER_PLAN_DURATION", "720h")
	t.Setenv("DEDICART_PAYMENT_WEBHOOK_SECRET", "whsec_env")

	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 720*time.Hour, conf.Reconciler.PlanDuration)
	assert.Equal(t, "whsec_env", conf.Payment.WebhookSecret)
}
