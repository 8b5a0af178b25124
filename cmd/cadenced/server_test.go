package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/zoobzio/cadence"
)

func testSession() *session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newSession("conn-test", nil, QuantityConfig{Initial: 40, Min: 1, Max: 42, Step: 1}, logger)
}

func drainOne(t *testing.T, s *session) outboundMsg {
	t.Helper()
	var msg outboundMsg
	select {
	case b := <-s.send:
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("unmarshal outbound: %v", err)
		}
	default:
		t.Fatal("expected a queued outbound message")
	}
	return msg
}

func TestSession_FireActionStepsAndReports(t *testing.T) {
	s := testSession()

	_ = s.FireAction(actionIncrease)
	_ = s.FireAction(actionIncrease)
	_ = s.FireAction(actionIncrease) // clamps at max

	var last outboundMsg
	for i := 0; i < 3; i++ {
		last = drainOne(t, s)
	}
	if last.Type != "trigger" || last.Action != actionIncrease {
		t.Fatalf("expected trigger message for %s, got %+v", actionIncrease, last)
	}
	if last.Value != 42 {
		t.Errorf("expected value clamped to 42, got %v", last.Value)
	}
	if last.Count != 3 {
		t.Errorf("expected count 3, got %d", last.Count)
	}

	if v, ok := s.Quantity(); !ok || v != 42 {
		t.Errorf("expected quantity 42, got %v (%v)", v, ok)
	}
}

func TestSession_OnPressResetsCount(t *testing.T) {
	s := testSession()

	_ = s.FireAction(actionDecrease)
	first := drainOne(t, s)
	if first.Count != 1 {
		t.Fatalf("expected count 1, got %d", first.Count)
	}

	s.OnPress(actionDecrease)
	_ = s.FireAction(actionDecrease)
	second := drainOne(t, s)
	if second.Count != 1 {
		t.Errorf("expected count reset on new press, got %d", second.Count)
	}
	if second.Value != 38 {
		t.Errorf("expected value 38 after two decreases, got %v", second.Value)
	}
}

func TestSession_OnModeChangeReportsMode(t *testing.T) {
	s := testSession()

	s.OnModeChange(actionIncrease, cadence.ModeTap, cadence.ModeHold)

	msg := drainOne(t, s)
	if msg.Type != "mode" || msg.Action != actionIncrease || msg.Mode != "hold" {
		t.Errorf("expected hold mode message, got %+v", msg)
	}
}

func TestSession_EnqueueDropsWhenFull(t *testing.T) {
	s := testSession()

	for i := 0; i < sessionSendBuf; i++ {
		s.enqueue(outboundMsg{Type: "mode", Mode: "idle"})
	}
	// Queue is full; this must drop instead of blocking.
	s.enqueue(outboundMsg{Type: "mode", Mode: "idle"})

	if got := len(s.send); got != sessionSendBuf {
		t.Errorf("expected %d queued messages, got %d", sessionSendBuf, got)
	}
}

func TestParseMods(t *testing.T) {
	mods := parseMods([]string{"ctrl", "shift"})
	if !mods.Has(cadence.ModCtrl) || !mods.Has(cadence.ModShift) {
		t.Errorf("expected ctrl+shift, got %v", mods)
	}
	if mods.Has(cadence.ModAlt) {
		t.Error("expected alt unset")
	}
	if parseMods(nil) != cadence.ModNone {
		t.Error("expected no mods for empty list")
	}
	if parseMods([]string{"hyper"}) != cadence.ModNone {
		t.Error("expected unknown modifier ignored")
	}
}
