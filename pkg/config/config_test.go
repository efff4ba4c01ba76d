package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifiprov/wifiprov-go/internal/appdir"
	"github.com/wifiprov/wifiprov-go/pkg/config"
	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:3333", cfg.Server.Addr())

	bc, err := cfg.Broadcast.Netif()
	require.NoError(t, err)
	assert.Equal(t, connection.DefaultBroadcastConfig(), bc)

	mc := cfg.Connection.Manager()
	assert.Equal(t, 30*time.Second, mc.ConnectTimeout)
	assert.Equal(t, connection.MaxRetry, mc.MaxRetry)
	assert.Equal(t, connection.DefaultBackoffConfig(), mc.Backoff)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 4444
connection:
  timeout: 10s
storage:
  engine: sqlite
  path: /tmp/creds.db
simulator:
  networks:
    - name: HomeNet
      secret: secret123
    - name: Cafe
      unreachable: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4444, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset fields keep defaults")
	assert.Equal(t, 10*time.Second, cfg.Connection.Timeout)
	assert.Equal(t, config.EngineSQLite, cfg.Storage.Engine)
	assert.Equal(t, "/tmp/creds.db", cfg.Storage.Path)
	require.Len(t, cfg.Simulator.Networks, 2)
	assert.True(t, cfg.Simulator.Networks[1].Unreachable)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "server: [port"))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, `
server:
  port: 0
storage:
  engine: floppy
`))
		require.Error(t, err)
		assert.ErrorContains(t, err, "invalid server port")
		assert.ErrorContains(t, err, "floppy")
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
		is      error
	}{
		{
			name:    "broadcast ssid too long",
			mutate:  func(c *config.Config) { c.Broadcast.SSID = "an-access-point-name-that-is-too-long" },
			wantErr: "broadcast",
		},
		{
			name:    "broadcast address",
			mutate:  func(c *config.Config) { c.Broadcast.Address = "not-a-prefix" },
			wantErr: "broadcast.address",
		},
		{
			name:    "backoff order",
			mutate:  func(c *config.Config) { c.Connection.BackoffMax = time.Millisecond },
			wantErr: "backoff",
		},
		{
			name:    "log level",
			mutate:  func(c *config.Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "trace bound below one record",
			mutate:  func(c *config.Config) { c.Log.TraceMaxSize = 100 },
			wantErr: "log.trace_max_size",
		},
		{
			name: "simulated network name",
			mutate: func(c *config.Config) {
				c.Simulator.Networks = []config.SimulatedNetwork{{Secret: "x"}}
			},
			is: credential.ErrEmptyName,
		},
		{
			name: "simulated network address",
			mutate: func(c *config.Config) {
				c.Simulator.Networks = []config.SimulatedNetwork{{Name: "HomeNet", Address: "999.1.1.1"}}
			},
			wantErr: "simulator.networks[0].address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDefaultConfigFileMatchesDefault(t *testing.T) {
	path := writeConfig(t, string(appdir.DefaultConfigYAML()))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
