package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame:        &FrameEvent{Size: 27},
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.ConnectionID != "conn-123" {
		t.Errorf("ConnectionID: got %q", decoded.ConnectionID)
	}
	if decoded.Frame == nil || decoded.Frame.Size != 27 {
		t.Errorf("Frame: got %+v", decoded.Frame)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions: got %o, want 600", perm)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")

	for i, id := range []string{"first", "second"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		logger.Log(Event{Timestamp: time.Now(), ConnectionID: id})
		logger.Close()
	}

	events := readAll(t, path, Filter{})
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ConnectionID != "first" || events[1].ConnectionID != "second" {
		t.Errorf("unexpected order: %q, %q", events[0].ConnectionID, events[1].ConnectionID)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(Event{Timestamp: time.Now(), Layer: LayerLink, Category: CategoryState,
					StateChange: &StateChangeEvent{Entity: StateEntityLink, NewState: "CONNECTING"}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if got := len(readAll(t, path, Filter{})); got != 200 {
		t.Errorf("got %d events, want 200", got)
	}
}

func TestFileLoggerIgnoresLogAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Close()
	logger.Log(Event{Timestamp: time.Now()})

	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if got := len(readAll(t, path, Filter{})); got != 0 {
		t.Errorf("got %d events after close, want 0", got)
	}
}

func TestFileLoggerRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := func(i int) Event {
		return Event{Timestamp: ts, ConnectionID: fmt.Sprintf("conn-%d", i), Layer: LayerLink, Category: CategoryState}
	}
	one, err := EncodeEvent(event(0))
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	// Room for exactly two records per file.
	logger, err := NewFileLogger(path, WithMaxSize(int64(2*len(one))))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for i := 1; i <= 5; i++ {
		logger.Log(event(i))
	}
	rotations, dropped := logger.Stats()
	logger.Close()

	if rotations != 2 || dropped != 0 {
		t.Errorf("Stats: got rotations=%d dropped=%d, want 2 and 0", rotations, dropped)
	}

	current := readAll(t, path, Filter{})
	if len(current) != 1 || current[0].ConnectionID != "conn-5" {
		t.Errorf("current file: got %+v", current)
	}
	backup := readAll(t, path+BackupSuffix, Filter{})
	if len(backup) != 2 || backup[0].ConnectionID != "conn-3" || backup[1].ConnectionID != "conn-4" {
		t.Errorf("backup file: got %+v", backup)
	}

	info, err := os.Stat(path + BackupSuffix)
	if err != nil {
		t.Fatalf("Stat backup: %v", err)
	}
	if info.Size() > int64(2*len(one)) {
		t.Errorf("backup size %d exceeds bound %d", info.Size(), 2*len(one))
	}
}

func TestFileLoggerDropsOversizedEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{
		Timestamp: time.Now(),
		Layer:     LayerSession,
		Category:  CategoryMessage,
		Message:   &MessageEvent{Kind: MessageKindResponse, Text: strings.Repeat("x", MaxEventSize)},
	})
	logger.Log(Event{Timestamp: time.Now(), ConnectionID: "small"})
	_, dropped := logger.Stats()
	logger.Close()

	if dropped != 1 {
		t.Errorf("dropped: got %d, want 1", dropped)
	}
	events := readAll(t, path, Filter{})
	if len(events) != 1 || events[0].ConnectionID != "small" {
		t.Errorf("got %+v", events)
	}
}
