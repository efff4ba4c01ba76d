package bootstrap_test

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wifiprov/wifiprov-go/pkg/bootstrap"
	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/discovery"
	discoverymocks "github.com/wifiprov/wifiprov-go/pkg/discovery/mocks"
	"github.com/wifiprov/wifiprov-go/pkg/kvstore"
	kvmocks "github.com/wifiprov/wifiprov-go/pkg/kvstore/mocks"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
	netifmocks "github.com/wifiprov/wifiprov-go/pkg/netif/mocks"
	"github.com/wifiprov/wifiprov-go/pkg/persistence"
	"github.com/wifiprov/wifiprov-go/pkg/provisioning"
)

func newManager(t *testing.T, iface netif.Interface) *connection.Manager {
	t.Helper()
	m := connection.NewManager(iface, connection.Config{
		ConnectTimeout: 2 * time.Second,
		Backoff:        connection.BackoffConfig{Initial: time.Millisecond, Max: 2 * time.Millisecond},
	})
	t.Cleanup(func() { m.Close() })
	return m
}

func newSimulator(t *testing.T) *netif.Simulator {
	t.Helper()
	sim := netif.NewSimulator(netif.SimulatorConfig{AssociationDelay: 2 * time.Millisecond})
	t.Cleanup(func() { sim.Close() })
	sim.AddNetwork("HomeNet", netif.Network{Secret: "secret123"})
	return sim
}

// newStore returns a store over a fresh memory engine, optionally seeded.
func newStore(t *testing.T, seed *credential.Credential) *persistence.CredentialStore {
	t.Helper()
	engine := kvstore.NewMemoryEngine()
	if seed != nil {
		seedStore := persistence.NewCredentialStore(engine, nil)
		require.NoError(t, seedStore.Init())
		require.NoError(t, seedStore.Write(*seed))
	}
	return persistence.NewCredentialStore(engine, nil)
}

func startDevice(t *testing.T, cfg bootstrap.Config) *bootstrap.Device {
	t.Helper()
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = "127.0.0.1:0"
	}
	dev, err := bootstrap.New(cfg)
	require.NoError(t, err)
	require.NoError(t, dev.Start(context.Background()))
	t.Cleanup(func() { dev.Stop() })
	return dev
}

func provision(t *testing.T, addr net.Addr, name, secret string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	_, err = conn.Write([]byte(`{"wifi_name":"` + name + `"}`))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, string(provisioning.ResponseNameAccepted.Line()), line)

	_, err = conn.Write([]byte(`{"wifi_password":"` + secret + `"}`))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestStartWithoutCredentialsEntersBroadcast(t *testing.T) {
	iface := netifmocks.NewMockInterface(t)
	iface.EXPECT().Events().Return((<-chan netif.Event)(make(chan netif.Event)))
	iface.EXPECT().Stop().Return(nil).Once()
	iface.EXPECT().ConfigureBroadcast(connection.DefaultBroadcastConfig()).Return(nil).Once()
	iface.EXPECT().Start().Return(nil).Once()
	// No ConfigureStation or RequestConnect: a station attempt fails the mock.

	adv := discoverymocks.NewMockAdvertiser(t)
	adv.EXPECT().Advertise(mock.Anything, mock.MatchedBy(func(info *discovery.ServiceInfo) bool {
		return info.BroadcastName == connection.BroadcastSSID && info.Port != 0
	})).Return(nil).Once()
	adv.EXPECT().Stop().Return(nil)

	dev := startDevice(t, bootstrap.Config{
		Store:      newStore(t, nil),
		Link:       newManager(t, iface),
		Advertiser: adv,
	})

	assert.Equal(t, bootstrap.ModeBroadcast, dev.Mode())
	require.NotNil(t, dev.ServerAddr())
	_, ok := dev.Active()
	assert.False(t, ok)
}

func TestStartStorageFatal(t *testing.T) {
	engine := kvmocks.NewMockEngine(t)
	engine.EXPECT().Open(persistence.Namespace).Return(kvstore.ErrCorrupt).Times(2)
	engine.EXPECT().Erase().Return(nil).Once()

	dev, err := bootstrap.New(bootstrap.Config{
		Store: persistence.NewCredentialStore(engine, nil),
		Link:  newManager(t, newSimulator(t)),
	})
	require.NoError(t, err)

	err = dev.Start(context.Background())
	assert.ErrorIs(t, err, persistence.ErrStorageFatal)
	assert.Equal(t, bootstrap.ModeIdle, dev.Mode())
	assert.Nil(t, dev.ServerAddr())
}

func TestStartWithStoredCredentials(t *testing.T) {
	sim := newSimulator(t)
	stored := credential.Credential{Name: "HomeNet", Secret: "secret123"}

	dev := startDevice(t, bootstrap.Config{
		Store: newStore(t, &stored),
		Link:  newManager(t, sim),
	})

	assert.Equal(t, bootstrap.ModeStation, dev.Mode())
	active, ok := dev.Active()
	require.True(t, ok)
	assert.Equal(t, stored, active)
	assert.Equal(t, netif.ModeStation, sim.Mode())
	assert.Nil(t, dev.ServerAddr(), "server only runs in broadcast mode by default")
}

func TestStartServeAlways(t *testing.T) {
	stored := credential.Credential{Name: "HomeNet", Secret: "secret123"}

	dev := startDevice(t, bootstrap.Config{
		Store:       newStore(t, &stored),
		Link:        newManager(t, newSimulator(t)),
		ServeAlways: true,
	})

	assert.Equal(t, bootstrap.ModeStation, dev.Mode())
	assert.NotNil(t, dev.ServerAddr())
}

func TestStartStoredNetworkUnreachable(t *testing.T) {
	sim := newSimulator(t)
	stored := credential.Credential{Name: "HomeNet", Secret: "changed"}

	dev := startDevice(t, bootstrap.Config{
		Store: newStore(t, &stored),
		Link:  newManager(t, sim),
	})

	assert.Equal(t, bootstrap.ModeBroadcast, dev.Mode())
	assert.Equal(t, 1+connection.MaxRetry, sim.ConnectRequests())
	_, up := sim.Broadcast()
	assert.True(t, up)
	assert.NotNil(t, dev.ServerAddr())
}

func TestProvisioningSwitchesToStation(t *testing.T) {
	sim := newSimulator(t)
	store := newStore(t, nil)

	adv := discoverymocks.NewMockAdvertiser(t)
	adv.EXPECT().Advertise(mock.Anything, mock.Anything).Return(nil).Once()
	adv.EXPECT().Stop().Return(nil)

	var mu sync.Mutex
	var provisioned []credential.Credential

	dev := startDevice(t, bootstrap.Config{
		Store:      store,
		Link:       newManager(t, sim),
		Advertiser: adv,
		OnProvisioned: func(c credential.Credential) {
			mu.Lock()
			defer mu.Unlock()
			provisioned = append(provisioned, c)
		},
	})

	line := provision(t, dev.ServerAddr(), "HomeNet", "secret123")
	assert.Equal(t, string(provisioning.ResponseSaved.Line()), line)

	assert.Equal(t, bootstrap.ModeStation, dev.Mode())
	assert.Equal(t, netif.ModeStation, sim.Mode())

	mu.Lock()
	assert.Equal(t, []credential.Credential{{Name: "HomeNet", Secret: "secret123"}}, provisioned)
	mu.Unlock()

	saved, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", saved.Name)
}

func TestFailedProvisioningRestoresBroadcast(t *testing.T) {
	sim := newSimulator(t)

	dev := startDevice(t, bootstrap.Config{
		Store: newStore(t, nil),
		Link:  newManager(t, sim),
	})

	line := provision(t, dev.ServerAddr(), "HomeNet", "wrong")
	assert.Equal(t, string(provisioning.ResponseConnectFailed.Line()), line)

	assert.Equal(t, bootstrap.ModeBroadcast, dev.Mode())
	cfg, up := sim.Broadcast()
	assert.True(t, up)
	assert.Equal(t, connection.BroadcastSSID, cfg.SSID)

	// The device can still be provisioned afterwards.
	line = provision(t, dev.ServerAddr(), "HomeNet", "secret123")
	assert.Equal(t, string(provisioning.ResponseSaved.Line()), line)
}

func TestDeviceLifecycle(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		_, err := bootstrap.New(bootstrap.Config{})
		assert.ErrorIs(t, err, bootstrap.ErrNoStore)

		_, err = bootstrap.New(bootstrap.Config{Store: newStore(t, nil)})
		assert.ErrorIs(t, err, bootstrap.ErrNoLink)
	})

	t.Run("start twice", func(t *testing.T) {
		dev := startDevice(t, bootstrap.Config{
			Store: newStore(t, nil),
			Link:  newManager(t, newSimulator(t)),
		})
		assert.ErrorIs(t, dev.Start(context.Background()), bootstrap.ErrAlreadyStarted)
	})

	t.Run("stop", func(t *testing.T) {
		dev := startDevice(t, bootstrap.Config{
			Store: newStore(t, nil),
			Link:  newManager(t, newSimulator(t)),
		})
		addr := dev.ServerAddr()
		require.NotNil(t, addr)

		require.NoError(t, dev.Stop())
		require.NoError(t, dev.Stop())
		assert.Equal(t, bootstrap.ModeIdle, dev.Mode())
		assert.Nil(t, dev.ServerAddr())

		_, err := net.DialTimeout("tcp", addr.String(), 200*time.Millisecond)
		assert.Error(t, err)
	})

	t.Run("mode strings", func(t *testing.T) {
		assert.Equal(t, "IDLE", bootstrap.ModeIdle.String())
		assert.Equal(t, "STATION", bootstrap.ModeStation.String())
		assert.Equal(t, "BROADCAST", bootstrap.ModeBroadcast.String())
		assert.Equal(t, "UNKNOWN", bootstrap.Mode(42).String())
	})
}
