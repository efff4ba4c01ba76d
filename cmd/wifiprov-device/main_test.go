package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifiprov/wifiprov-go/pkg/config"
	"github.com/wifiprov/wifiprov-go/pkg/kvstore"
	"github.com/wifiprov/wifiprov-go/pkg/log"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
)

func TestNetworkFlags(t *testing.T) {
	var n networkFlags
	require.NoError(t, n.Set("HomeNet=secret123"))
	require.NoError(t, n.Set("Cafe"))
	require.NoError(t, n.Set("Odd=a=b"))
	assert.Error(t, n.Set("=secret"))

	assert.Equal(t, networkFlags{
		{Name: "HomeNet", Secret: "secret123"},
		{Name: "Cafe"},
		{Name: "Odd", Secret: "a=b"},
	}, n)
	assert.Equal(t, "HomeNet,Cafe,Odd", n.String())
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	err := applyOverrides(cfg, Options{
		Port:     4444,
		Engine:   config.EngineMemory,
		LogLevel: "debug",
		Trace:    "/tmp/x.plog",
		Networks: networkFlags{{Name: "HomeNet", Secret: "secret123"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4444, cfg.Server.Port)
	assert.Equal(t, config.EngineMemory, cfg.Storage.Engine)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/x.plog", cfg.Log.Trace)
	assert.Len(t, cfg.Simulator.Networks, 1)

	assert.Error(t, applyOverrides(config.Default(), Options{Engine: "tape"}))
	assert.Error(t, applyOverrides(config.Default(), Options{Port: 70000}))
}

func TestOpenEngine(t *testing.T) {
	dir := t.TempDir()

	engine, err := openEngine(config.StorageConfig{Engine: config.EngineFile, Path: filepath.Join(dir, "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &kvstore.FileEngine{}, engine)

	engine, err = openEngine(config.StorageConfig{Engine: config.EngineSQLite, Path: filepath.Join(dir, "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &kvstore.SQLiteEngine{}, engine)

	engine, err = openEngine(config.StorageConfig{Engine: config.EngineMemory})
	require.NoError(t, err)
	assert.IsType(t, &kvstore.MemoryEngine{}, engine)

	_, err = openEngine(config.StorageConfig{Engine: "tape"})
	assert.Error(t, err)
}

func TestOpenTrace(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	events, closeTrace, err := openTrace("", 0, logger)
	require.NoError(t, err)
	assert.IsType(t, &log.SlogAdapter{}, events)
	closeTrace()

	path := filepath.Join(t.TempDir(), "sub", "device.plog")
	events, closeTrace, err = openTrace(path, config.DefaultTraceMaxSize, logger)
	require.NoError(t, err)
	events.Log(log.Event{Timestamp: time.Now(), Layer: log.LayerLink, Category: log.CategoryState})
	closeTrace()

	r, err := log.NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, log.LayerLink, ev.Layer)
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogging(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNewSimulator(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sim := newSimulator(config.SimulatorConfig{
		AssociationDelay: time.Millisecond,
		Networks: []config.SimulatedNetwork{
			{Name: "HomeNet", Secret: "secret123", Address: "10.1.2.3"},
		},
	}, logger)
	defer sim.Close()

	require.NoError(t, sim.ConfigureStation("HomeNet", "secret123"))
	require.NoError(t, sim.Start())
	require.NoError(t, sim.RequestConnect())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sim.Events():
			if ev.Type == netif.EventAddressAcquired {
				assert.Equal(t, "10.1.2.3", ev.Addr.String())
				return
			}
		case <-deadline:
			t.Fatal("no address acquired")
		}
	}
}
