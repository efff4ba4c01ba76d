package connection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventGroup(t *testing.T) {
	t.Run("WaitReturnsWhenAlreadySet", func(t *testing.T) {
		g := NewEventGroup()
		g.Set(BitConnected)

		bits, err := g.Wait(context.Background(), BitConnected|BitFailed)
		require.NoError(t, err)
		assert.Equal(t, BitConnected, bits)
		assert.Equal(t, BitConnected, g.Get(), "wait must not clear flags")
	})

	t.Run("SetWakesWaiter", func(t *testing.T) {
		g := NewEventGroup()
		done := make(chan Bits, 1)
		go func() {
			bits, _ := g.Wait(context.Background(), BitFailed)
			done <- bits
		}()

		time.Sleep(5 * time.Millisecond)
		g.Set(BitFailed)

		select {
		case bits := <-done:
			assert.Equal(t, BitFailed, bits)
		case <-time.After(time.Second):
			t.Fatal("waiter not woken")
		}
	})

	t.Run("UnrelatedBitKeepsWaiting", func(t *testing.T) {
		g := NewEventGroup()
		g.Set(BitConnected)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		bits, err := g.Wait(ctx, BitFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, BitConnected, bits)
	})

	t.Run("Clear", func(t *testing.T) {
		g := NewEventGroup()
		g.Set(BitConnected | BitFailed)
		g.Clear(BitConnected)
		assert.Equal(t, BitFailed, g.Get())
	})
}
