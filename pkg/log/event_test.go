package log

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{DirectionNone.String(), "-"},
		{Direction(9).String(), "UNKNOWN"},
		{LayerTransport.String(), "TRANSPORT"},
		{LayerSession.String(), "SESSION"},
		{LayerLink.String(), "LINK"},
		{LayerStorage.String(), "STORAGE"},
		{CategoryMessage.String(), "MESSAGE"},
		{CategoryState.String(), "STATE"},
		{CategoryError.String(), "ERROR"},
		{MessageKindName.String(), "NAME"},
		{MessageKindSecret.String(), "SECRET"},
		{MessageKindMalformed.String(), "MALFORMED"},
		{MessageKindResponse.String(), "RESPONSE"},
		{MessageKindDropped.String(), "DROPPED"},
		{StateEntityLink.String(), "LINK"},
		{StateEntityServer.String(), "SERVER"},
		{StateEntityDevice.String(), "DEVICE"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseLayerAndCategory(t *testing.T) {
	for l := LayerTransport; l <= LayerStorage; l++ {
		got, ok := ParseLayer(l.String())
		if !ok || got != l {
			t.Errorf("ParseLayer(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := ParseLayer("WIRE"); ok {
		t.Error("ParseLayer accepted an unknown name")
	}

	for c := CategoryMessage; c <= CategoryError; c++ {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("CONTROL"); ok {
		t.Error("ParseCategory accepted an unknown name")
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	event := Event{
		Timestamp:    ts,
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerSession,
		Category:     CategoryMessage,
		Message: &MessageEvent{
			Kind:   MessageKindSecret,
			Phase:  "AWAITING_SECRET",
			Secret: "********",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	// A map header followed by key 1 as a small unsigned integer.
	if data[0]&0xe0 != 0xa0 || data[1] != 0x01 {
		t.Fatalf("unexpected encoding prefix % x", data[:2])
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Message == nil || decoded.Message.Kind != MessageKindSecret {
		t.Fatalf("Message: got %+v", decoded.Message)
	}
	if decoded.Frame != nil || decoded.StateChange != nil || decoded.Error != nil {
		t.Error("unexpected payloads decoded")
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestDecodeEventRejectsOversizedMaps(t *testing.T) {
	wide := make(map[int]int, 100)
	for i := range 100 {
		wide[i] = i
	}
	data, err := cbor.Marshal(wide)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := DecodeEvent(data); err == nil {
		t.Error("expected error for a map wider than any trace record")
	}
}
