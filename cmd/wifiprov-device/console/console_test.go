package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifiprov/wifiprov-go/pkg/bootstrap"
	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/kvstore"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
	"github.com/wifiprov/wifiprov-go/pkg/persistence"
)

func newTestTarget(t *testing.T) *Target {
	t.Helper()

	sim := netif.NewSimulator(netif.SimulatorConfig{AssociationDelay: time.Millisecond})
	t.Cleanup(func() { sim.Close() })
	manager := connection.NewManager(sim, connection.Config{ConnectTimeout: time.Second})
	t.Cleanup(func() { manager.Close() })

	store := persistence.NewCredentialStore(kvstore.NewMemoryEngine(), nil)
	device, err := bootstrap.New(bootstrap.Config{
		Store:         store,
		Link:          manager,
		ServerAddress: "127.0.0.1:0",
	})
	require.NoError(t, err)
	require.NoError(t, device.Start(context.Background()))
	t.Cleanup(func() { device.Stop() })

	return &Target{Device: device, Manager: manager, Simulator: sim, Store: store}
}

func TestConsoleStatus(t *testing.T) {
	var out bytes.Buffer
	c := &Console{out: &out}
	target := newTestTarget(t)

	assert.False(t, c.Execute(target, "status"))
	assert.Contains(t, out.String(), "Mode:        BROADCAST")
	assert.Contains(t, out.String(), "Server:      127.0.0.1:")
}

func TestConsoleStoredAndReset(t *testing.T) {
	var out bytes.Buffer
	c := &Console{out: &out}
	target := newTestTarget(t)

	c.Execute(target, "stored")
	assert.Contains(t, out.String(), "No stored credential")

	require.NoError(t, target.Store.Write(credential.Credential{Name: "HomeNet", Secret: "secret123"}))
	out.Reset()
	c.Execute(target, "stored")
	assert.Equal(t, "HomeNet / *********\n", out.String())

	out.Reset()
	c.Execute(target, "reset")
	assert.Contains(t, out.String(), "cleared")
	_, err := target.Store.Read()
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestConsoleNetworks(t *testing.T) {
	var out bytes.Buffer
	c := &Console{out: &out}
	target := newTestTarget(t)

	c.Execute(target, "add HomeNet secret123")
	assert.Contains(t, out.String(), "Network HomeNet available")

	_, err := target.Manager.Connect(context.Background(), "HomeNet", "secret123")
	require.NoError(t, err)

	out.Reset()
	c.Execute(target, "add")
	assert.Contains(t, out.String(), "Usage: add")

	out.Reset()
	c.Execute(target, "remove HomeNet")
	assert.Contains(t, out.String(), "Network HomeNet removed")

	out.Reset()
	c.Execute(target, "drop")
	assert.Contains(t, out.String(), "Link dropped (BEACON_TIMEOUT)")
	assert.Eventually(t, func() bool {
		return target.Manager.State() != connection.StateConnected
	}, time.Second, 5*time.Millisecond)
}

func TestConsoleDispatch(t *testing.T) {
	var out bytes.Buffer
	c := &Console{out: &out}
	target := newTestTarget(t)

	assert.False(t, c.Execute(target, "   "))
	assert.Empty(t, out.String())

	assert.False(t, c.Execute(target, "frobnicate"))
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	assert.True(t, c.Execute(target, "quit"))
	assert.True(t, c.Execute(target, "Q"))
}
