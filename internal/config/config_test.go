package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, Duration(DefaultReadTimeout), cfg.Server.ReadTimeout)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
	assert.Equal(t, DefaultBridgeCapacity, cfg.Bridge.Capacity)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestEngineConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*EngineConfig)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *EngineConfig) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *EngineConfig) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "metrics port out of range",
			mutate:  func(c *EngineConfig) { c.Metrics.Port = -1 },
			wantErr: "metrics.port",
		},
		{
			name: "metrics port conflicts with server port",
			mutate: func(c *EngineConfig) {
				c.Metrics.Port = c.Server.Port
			},
			wantErr: "conflicts",
		},
		{
			name: "metrics disabled ignores metrics port",
			mutate: func(c *EngineConfig) {
				c.Metrics.Enabled = false
				c.Metrics.Port = -1
			},
		},
		{
			name:    "negative body limit",
			mutate:  func(c *EngineConfig) { c.Server.MaxBodyBytes = -1 },
			wantErr: "maxBodyBytes",
		},
		{
			name:    "zero bridge capacity",
			mutate:  func(c *EngineConfig) { c.Bridge.Capacity = 0 },
			wantErr: "bridge.capacity",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *EngineConfig) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(configReader(`
server:
  readTimeout: "45s"
  writeTimeout: "1m30s"
`))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout.Duration())
}

func TestDuration_MarshalJSON(t *testing.T) {
	t.Parallel()

	d := Duration(5 * time.Second)

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(data))

	var parsed Duration
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Equal(t, d, parsed)
}

func TestDuration_UnmarshalJSON_Empty(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, Duration(0), d)

	require.NoError(t, d.UnmarshalJSON([]byte(`""`)))
	assert.Equal(t, Duration(0), d)
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	t.Parallel()

	var d Duration
	assert.Error(t, d.UnmarshalJSON([]byte(`"forever"`)))
}
