package connection

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
	"github.com/wifiprov/wifiprov-go/pkg/netif/mocks"
)

var fastBackoff = BackoffConfig{Initial: time.Millisecond, Max: 2 * time.Millisecond}

func newTestSimulator(t *testing.T) *netif.Simulator {
	t.Helper()
	sim := netif.NewSimulator(netif.SimulatorConfig{AssociationDelay: 2 * time.Millisecond})
	t.Cleanup(func() { sim.Close() })
	return sim
}

func newTestManager(t *testing.T, iface netif.Interface, timeout time.Duration) *Manager {
	t.Helper()
	m := NewManager(iface, Config{ConnectTimeout: timeout, Backoff: fastBackoff})
	t.Cleanup(func() { m.Close() })
	return m
}

// stateRecorder collects state transitions from OnStateChange.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(_, newState State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, newState)
}

func (r *stateRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestConnectSuccess(t *testing.T) {
	sim := newTestSimulator(t)
	sim.AddNetwork("HomeNet", netif.Network{Secret: "secret123", Addr: netip.MustParseAddr("10.1.1.7")})
	m := newTestManager(t, sim, time.Second)

	rec := &stateRecorder{}
	m.OnStateChange(rec.record)

	got, err := m.Connect(context.Background(), "HomeNet", "secret123")
	require.NoError(t, err)

	assert.Equal(t, credential.Credential{Name: "HomeNet", Secret: "secret123"}, got)
	assert.Equal(t, StateConnected, m.State())
	assert.Zero(t, m.RetryCount())
	assert.Equal(t, AttemptConnected, m.LastAttempt().Status)

	addr, ok := m.Address()
	assert.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.1.1.7"), addr)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []State{StateConnecting, StateConnected}, rec.snapshot())
	assert.Equal(t, 1, sim.ConnectRequests())
}

func TestConnectRetriesExhausted(t *testing.T) {
	sim := newTestSimulator(t)
	sim.AddNetwork("HomeNet", netif.Network{Secret: "secret123"})
	timeout := 5 * time.Second
	m := newTestManager(t, sim, timeout)

	start := time.Now()
	_, err := m.Connect(context.Background(), "HomeNet", "wrong-secret")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Less(t, elapsed, timeout, "exhaustion must end the attempt before the timeout")

	assert.Equal(t, StateFailed, m.State())
	attempt := m.LastAttempt()
	assert.Equal(t, AttemptFailed, attempt.Status)
	assert.Equal(t, MaxRetry, attempt.RetriesUsed)
	assert.Equal(t, 1+MaxRetry, sim.ConnectRequests())
	assert.False(t, sim.IsStarted(), "interface must be stopped after failure")
}

func TestConnectTimeout(t *testing.T) {
	iface := mocks.NewMockInterface(t)
	events := make(chan netif.Event)
	iface.EXPECT().Events().Return((<-chan netif.Event)(events))
	iface.EXPECT().Stop().Return(nil).Times(2)
	iface.EXPECT().ConfigureStation("Silent", "").Return(nil)
	iface.EXPECT().Start().Return(nil)

	timeout := 50 * time.Millisecond
	m := newTestManager(t, iface, timeout)

	start := time.Now()
	_, err := m.Connect(context.Background(), "Silent", "")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.ErrorIs(t, err, ErrConnectTimeout)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+time.Second)
	assert.Equal(t, StateFailed, m.State())
}

func TestConnectResetsRetries(t *testing.T) {
	sim := newTestSimulator(t)
	sim.AddNetwork("HomeNet", netif.Network{Secret: "secret123"})
	m := newTestManager(t, sim, 5*time.Second)

	_, err := m.Connect(context.Background(), "HomeNet", "wrong")
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, MaxRetry, m.LastAttempt().RetriesUsed)

	_, err = m.Connect(context.Background(), "HomeNet", "secret123")
	require.NoError(t, err)
	assert.Zero(t, m.RetryCount())

	// A failure after a success starts from an empty budget.
	_, err = m.Connect(context.Background(), "HomeNet", "wrong")
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, MaxRetry, m.LastAttempt().RetriesUsed)
}

func TestConnectInvalidCredential(t *testing.T) {
	iface := mocks.NewMockInterface(t)
	iface.EXPECT().Events().Return((<-chan netif.Event)(make(chan netif.Event)))
	m := newTestManager(t, iface, time.Second)

	_, err := m.Connect(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.ErrorIs(t, err, credential.ErrEmptyName)
	assert.Equal(t, StateIdle, m.State())
}

func TestConnectReturnsNormalizedCredential(t *testing.T) {
	iface := mocks.NewMockInterface(t)
	events := make(chan netif.Event, 4)
	iface.EXPECT().Events().Return((<-chan netif.Event)(events))
	iface.EXPECT().Stop().Return(nil)
	iface.EXPECT().ConfigureStation("HomeNet", "pa ss").Return(nil)
	iface.EXPECT().Start().RunAndReturn(func() error {
		events <- netif.Event{Type: netif.EventStationStarted}
		return nil
	})
	iface.EXPECT().RequestConnect().RunAndReturn(func() error {
		events <- netif.Event{Type: netif.EventAddressAcquired, Addr: netip.MustParseAddr("10.0.0.2")}
		return nil
	})
	iface.EXPECT().StationConfig().Return("HomeNet", "pa\tss", nil)

	m := newTestManager(t, iface, time.Second)

	got, err := m.Connect(context.Background(), "HomeNet", "pa ss")
	require.NoError(t, err)
	assert.Equal(t, credential.Credential{Name: "HomeNet", Secret: "pa_ss"}, got)
}

func TestConnectStartFailure(t *testing.T) {
	iface := mocks.NewMockInterface(t)
	iface.EXPECT().Events().Return((<-chan netif.Event)(make(chan netif.Event)))
	iface.EXPECT().Stop().Return(nil).Times(2)
	iface.EXPECT().ConfigureStation(mock.Anything, mock.Anything).Return(nil)
	iface.EXPECT().Start().Return(errors.New("radio busy"))

	m := newTestManager(t, iface, time.Second)

	_, err := m.Connect(context.Background(), "HomeNet", "secret123")
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.ErrorContains(t, err, "radio busy")
	assert.Equal(t, StateFailed, m.State())
}

func TestLinkLoss(t *testing.T) {
	t.Run("ReassociatesWithFreshBudget", func(t *testing.T) {
		sim := newTestSimulator(t)
		sim.AddNetwork("HomeNet", netif.Network{Secret: "secret123"})
		m := newTestManager(t, sim, time.Second)

		_, err := m.Connect(context.Background(), "HomeNet", "secret123")
		require.NoError(t, err)

		rec := &stateRecorder{}
		m.OnStateChange(rec.record)
		sim.DropLink("BEACON_TIMEOUT")

		require.Eventually(t, func() bool {
			return len(rec.snapshot()) == 2 && m.State() == StateConnected
		}, time.Second, 2*time.Millisecond)
		assert.Equal(t, []State{StateReconnecting, StateConnected}, rec.snapshot())
		assert.Zero(t, m.RetryCount())
		assert.Equal(t, 2, sim.ConnectRequests())
	})

	t.Run("FailsWhenNetworkGone", func(t *testing.T) {
		sim := newTestSimulator(t)
		sim.AddNetwork("HomeNet", netif.Network{Secret: "secret123"})
		m := newTestManager(t, sim, time.Second)

		_, err := m.Connect(context.Background(), "HomeNet", "secret123")
		require.NoError(t, err)

		sim.RemoveNetwork("HomeNet")
		sim.DropLink("BEACON_TIMEOUT")

		require.Eventually(t, func() bool {
			return m.State() == StateFailed
		}, time.Second, 2*time.Millisecond)
		_, ok := m.Address()
		assert.False(t, ok)
		assert.Equal(t, 1+MaxRetry, sim.ConnectRequests())
	})
}

func TestStartBroadcastMode(t *testing.T) {
	sim := newTestSimulator(t)
	m := newTestManager(t, sim, time.Second)

	require.NoError(t, m.StartBroadcastMode(DefaultBroadcastConfig()))

	cfg, dhcp := sim.Broadcast()
	assert.True(t, dhcp)
	assert.True(t, sim.IsStarted())
	assert.Equal(t, netif.ModeBroadcast, sim.Mode())
	assert.Equal(t, "ESP32_C6_AP", cfg.SSID)
	assert.Equal(t, "12345678", cfg.Passphrase)
	assert.Equal(t, uint8(1), cfg.Channel)
	assert.Equal(t, 1, cfg.MaxClients)
	assert.Equal(t, netip.MustParsePrefix("192.168.1.1/24"), cfg.Address)
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), cfg.Gateway)
	assert.Zero(t, sim.ConnectRequests())
}

func TestStartBroadcastModeInvalidConfig(t *testing.T) {
	sim := newTestSimulator(t)
	m := newTestManager(t, sim, time.Second)

	err := m.StartBroadcastMode(netif.BroadcastConfig{})
	assert.ErrorIs(t, err, netif.ErrInvalidConfig)
	assert.False(t, sim.IsStarted())
}

func TestConcurrentAttemptsRejected(t *testing.T) {
	iface := mocks.NewMockInterface(t)
	iface.EXPECT().Events().Return((<-chan netif.Event)(make(chan netif.Event)))
	iface.EXPECT().Stop().Return(nil)
	iface.EXPECT().ConfigureStation(mock.Anything, mock.Anything).Return(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	iface.EXPECT().Start().RunAndReturn(func() error {
		close(started)
		<-release
		return errors.New("aborted")
	})

	m := newTestManager(t, iface, time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := m.Connect(context.Background(), "HomeNet", "secret123")
		done <- err
	}()
	<-started

	assert.ErrorIs(t, m.StartBroadcastMode(DefaultBroadcastConfig()), ErrBusy)
	_, err := m.Connect(context.Background(), "Other", "")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	assert.ErrorIs(t, <-done, ErrConnectFailed)
}

func TestCloseUnblocksConnect(t *testing.T) {
	iface := mocks.NewMockInterface(t)
	iface.EXPECT().Events().Return((<-chan netif.Event)(make(chan netif.Event)))
	iface.EXPECT().Stop().Return(nil)
	iface.EXPECT().ConfigureStation(mock.Anything, mock.Anything).Return(nil)
	iface.EXPECT().Start().Return(nil)

	m := NewManager(iface, Config{ConnectTimeout: 10 * time.Second, Backoff: fastBackoff})

	done := make(chan error, 1)
	go func() {
		_, err := m.Connect(context.Background(), "HomeNet", "secret123")
		done <- err
	}()

	require.Eventually(t, func() bool { return m.State() == StateConnecting }, time.Second, time.Millisecond)
	require.NoError(t, m.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Connect did not return after Close")
	}
	assert.Equal(t, StateClosed, m.State())

	_, err := m.Connect(context.Background(), "HomeNet", "secret123")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "RECONNECTING", StateReconnecting.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
	assert.Equal(t, "FAILED", AttemptFailed.String())
}
