package telemetry_test

import (
	"testing"

	"github.com/fazamuttaqien/cards/config"
	"github.com/fazamuttaqien/cards/pkg/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger_Level(t *testing.T) {
	cfg := &config.Config{SERVICE_NAME: "cards", LOG_LEVEL: "warn"}

	log := telemetry.NewZapLogger(cfg, nil)
	require.NotNil(t, log)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewZapLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{SERVICE_NAME: "cards", LOG_LEVEL: "verbose", DEV_MODE: true}

	log := telemetry.NewZapLogger(cfg, nil)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewResource_CarriesServiceAttributes(t *testing.T) {
	cfg := &config.Config{SERVICE_NAME: "cards", SERVICE_VERSION: "1.2.3", ENVIRONMENT: "test"}

	// Host detectors may report partial errors inside sandboxes; the resource is still usable.
	res, _ := telemetry.NewResource(cfg)
	require.NotNil(t, res)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "1.2.3", attrs["service.version"])
	assert.Equal(t, "test", attrs["deployment.environment"])
}
