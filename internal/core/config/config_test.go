package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidateZeroValue(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateNegativeTimeout(t *testing.T) {
	cfg := Config{DefaultResponseTimeout: -time.Second}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateNegativeQueueHint(t *testing.T) {
	cfg := Config{ExtensionQueueCapacityHint: -1}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateBadMetricsPort(t *testing.T) {
	cfg := Config{MetricsPort: 70000}
	require.Error(t, cfg.Validate())

	cfg = Config{MetricsPort: -1}
	require.Error(t, cfg.Validate())
}

func TestConfigString(t *testing.T) {
	cfg := Config{DefaultResponseTimeout: 5 * time.Second}
	assert.Contains(t, cfg.String(), "DefaultResponseTimeout")
}

func TestValidateConfigNilPointer(t *testing.T) {
	require.Error(t, ValidateConfig(nil))
}

func TestValidateConfigValid(t *testing.T) {
	cfg := &Config{DefaultResponseTimeout: time.Second, MetricsEnabled: true, MetricsPort: 9090}
	require.NoError(t, ValidateConfig(cfg))
}
