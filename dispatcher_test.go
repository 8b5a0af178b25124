package cadence

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func mustCombo(t *testing.T, spec string) Combo {
	t.Helper()
	combo, err := ParseCombo(spec)
	if err != nil {
		t.Fatalf("ParseCombo(%q) failed: %v", spec, err)
	}
	return combo
}

func TestDispatcher_KeyDownStartsBoundChannel(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "ctrl+plus")
	disp.Bind(ch, combo)

	if !disp.KeyDown(Event{Code: combo.Code, Mods: combo.Mods}) {
		t.Fatal("expected bound key-down to be consumed")
	}
	if !ch.IsPressed() {
		t.Fatal("expected channel pressed")
	}
	if got := host.count("increase"); got != 1 {
		t.Errorf("expected 1 trigger, got %d", got)
	}

	if !disp.KeyUp(Event{Code: combo.Code, Mods: combo.Mods}) {
		t.Fatal("expected bound key-up to be consumed")
	}
	if ch.IsPressed() {
		t.Error("expected channel released")
	}
}

func TestDispatcher_AutoRepeatConsumedWithoutForwarding(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "plus")
	disp.Bind(ch, combo)

	down := Event{Code: combo.Code}
	disp.KeyDown(down)

	// OS auto-repeat edges are swallowed; the channel's own timers pace the
	// triggers.
	repeat := Event{Code: combo.Code, Repeat: true}
	for i := 0; i < 5; i++ {
		if !disp.KeyDown(repeat) {
			t.Fatal("expected auto-repeat down to be consumed")
		}
	}
	if got := host.count("increase"); got != 1 {
		t.Errorf("expected auto-repeat to add no triggers, got %d", got)
	}

	// Auto-repeat releases pass through untouched.
	if disp.KeyUp(repeat) {
		t.Error("expected auto-repeat up to pass through")
	}
	if !ch.IsPressed() {
		t.Error("expected channel still pressed")
	}

	disp.KeyUp(Event{Code: combo.Code})
	if ch.IsPressed() {
		t.Error("expected channel released")
	}
}

func TestDispatcher_UnboundEventsPassThrough(t *testing.T) {
	clock := clockz.NewFakeClock()
	ch := NewChannel("increase", newTestHost(), WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	disp.Bind(ch, mustCombo(t, "ctrl+plus"))

	if disp.KeyDown(Event{Code: 'Q'}) {
		t.Error("expected unbound key-down to pass through")
	}
	if disp.KeyUp(Event{Code: 'Q'}) {
		t.Error("expected unbound key-up to pass through")
	}
	if ch.IsPressed() {
		t.Error("expected channel untouched")
	}
}

func TestDispatcher_ModifierOnlyEventsPassThrough(t *testing.T) {
	clock := clockz.NewFakeClock()
	ch := NewChannel("increase", newTestHost(), WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	disp.Bind(ch, mustCombo(t, "ctrl+plus"))

	if disp.KeyDown(Event{Code: CodeControl, Mods: ModCtrl}) {
		t.Error("expected bare modifier down to pass through")
	}
	if disp.KeyUp(Event{Code: CodeControl}) {
		t.Error("expected bare modifier up to pass through")
	}
}

func TestDispatcher_DuplicateDownConsumedWithoutRestart(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "plus")
	disp.Bind(ch, combo)

	down := Event{Code: combo.Code}
	disp.KeyDown(down)
	if !disp.KeyDown(down) {
		t.Error("expected duplicate down to be consumed")
	}
	if got := host.count("increase"); got != 1 {
		t.Errorf("expected duplicate down to add no triggers, got %d", got)
	}
}

func TestDispatcher_KeyUpBareCodeFallback(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "ctrl+plus")
	disp.Bind(ch, combo)

	disp.KeyDown(Event{Code: combo.Code, Mods: combo.Mods})
	if !ch.IsPressed() {
		t.Fatal("expected channel pressed")
	}

	// Ctrl was released before the key: the release no longer matches the
	// exact combo, but the bare key code still resolves it.
	if !disp.KeyUp(Event{Code: CodePlus}) {
		t.Fatal("expected bare-code release to be consumed")
	}
	if ch.IsPressed() {
		t.Error("expected channel released")
	}
}

func TestDispatcher_DriftedReleaseClearsPressedTracking(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "ctrl+plus")
	disp.Bind(ch, combo)

	disp.KeyDown(Event{Code: combo.Code, Mods: combo.Mods})
	disp.KeyUp(Event{Code: CodePlus})
	if ch.IsPressed() {
		t.Fatal("expected channel released")
	}

	// The drifted release cleared the pressed tracking for the full combo,
	// so the next down starts a fresh press instead of being swallowed.
	if !disp.KeyDown(Event{Code: combo.Code, Mods: combo.Mods}) {
		t.Fatal("expected down to be consumed")
	}
	if !ch.IsPressed() {
		t.Error("expected fresh press after drifted release")
	}
}

func TestDispatcher_ForceStoppedKeyStaysDeadUntilRelease(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	limits := DefaultLimits()
	limits.MaxPressDuration = 50 * time.Millisecond
	ch := NewChannel("increase", host, WithClock(clock), WithLimits(limits))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "plus")
	disp.Bind(ch, combo)

	down := Event{Code: combo.Code}
	disp.KeyDown(down)
	// The duration clock restarts when the opening burst completes, so move
	// well past burst time plus the limit.
	advance(clock, 100*time.Millisecond, 5*time.Millisecond)
	if ch.IsPressed() {
		t.Fatal("expected max-duration force-stop")
	}

	// The key is still physically held. Further downs are consumed without
	// restarting the press until a genuine release resets the tracking.
	if !disp.KeyDown(down) {
		t.Fatal("expected held key-down to be consumed")
	}
	if ch.IsPressed() {
		t.Error("expected channel to stay idle while key held")
	}

	disp.KeyUp(Event{Code: combo.Code})
	disp.KeyDown(down)
	if !ch.IsPressed() {
		t.Error("expected press to work after release")
	}
}

func TestDispatcher_ActionTriggeredStartsPress(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "ctrl+plus")
	disp.Bind(ch, combo)

	// The host's shortcut system consumed the key-down and fired the action
	// instead.
	disp.ActionTriggered(ch)
	if !ch.IsPressed() {
		t.Fatal("expected action trigger to start the press")
	}
	disp.ActionTriggered(ch)
	if got := host.count("increase"); got != 1 {
		t.Errorf("expected repeated action trigger to be a no-op, got %d triggers", got)
	}

	// The release still arrives as a key event.
	if !disp.KeyUp(Event{Code: combo.Code, Mods: combo.Mods}) {
		t.Fatal("expected release to be consumed")
	}
	if ch.IsPressed() {
		t.Error("expected channel released")
	}
}

func TestDispatcher_FocusLostReleasesEverything(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	chA := NewChannel("increase", host, WithClock(clock))
	chB := NewChannel("decrease", host, WithClock(clock))
	defer chA.Close()
	defer chB.Close()

	disp := NewDispatcher()
	comboA := mustCombo(t, "ctrl+plus")
	comboB := mustCombo(t, "ctrl+minus")
	disp.Bind(chA, comboA)
	disp.Bind(chB, comboB)

	disp.KeyDown(Event{Code: comboA.Code, Mods: comboA.Mods})
	disp.KeyDown(Event{Code: comboB.Code, Mods: comboB.Mods})
	if !chA.IsPressed() || !chB.IsPressed() {
		t.Fatal("expected both channels pressed")
	}

	disp.FocusLost()
	if chA.IsPressed() || chB.IsPressed() {
		t.Error("expected focus loss to release everything")
	}

	// The pressed tracking was cleared: a fresh press works immediately.
	if !disp.KeyDown(Event{Code: comboA.Code, Mods: comboA.Mods}) {
		t.Error("expected fresh press after focus loss")
	}
	if !chA.IsPressed() {
		t.Error("expected channel pressed again")
	}
}

func TestDispatcher_StaleSweepRunsOnAnyEvent(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	cfg := DefaultConfig()
	cfg.HoldEnabled = false
	ch.ApplyConfig(cfg)

	disp := NewDispatcher()
	combo := mustCombo(t, "ctrl+plus")
	disp.Bind(ch, combo)

	disp.KeyDown(Event{Code: combo.Code, Mods: combo.Mods})
	advance(clock, 40*time.Millisecond, 10*time.Millisecond)

	// The release never arrives. Fake time moves past the stale timeout.
	clock.Advance(600 * time.Millisecond)
	clock.BlockUntilReady()

	// Any event, even an unbound one, sweeps the stale press first.
	if disp.KeyDown(Event{Code: 'Q'}) {
		t.Error("expected unbound event to pass through")
	}
	if ch.IsPressed() {
		t.Error("expected stale press swept")
	}
	if got := lastStopReason(t, ch); got != StopStale {
		t.Errorf("expected stop reason %q, got %q", StopStale, got)
	}
}

func TestDispatcher_UnbindRemovesRouting(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	ch := NewChannel("increase", host, WithClock(clock))
	defer ch.Close()

	disp := NewDispatcher()
	combo := mustCombo(t, "ctrl+plus")
	secondCombo := mustCombo(t, "f5")
	disp.Bind(ch, combo, secondCombo)
	disp.Unbind(ch)

	if disp.KeyDown(Event{Code: combo.Code, Mods: combo.Mods}) {
		t.Error("expected unbound combo to pass through")
	}
	if disp.KeyDown(Event{Code: secondCombo.Code}) {
		t.Error("expected second combo unbound too")
	}
	if ch.IsPressed() {
		t.Error("expected channel untouched")
	}
}

func TestDispatcher_PairRoutingPreempts(t *testing.T) {
	clock := clockz.NewFakeClock()
	host := newTestHost()
	pair := NewPair(host, "increase", "decrease", WithClock(clock))
	defer pair.Close()

	disp := NewDispatcher()
	upCombo := mustCombo(t, "ctrl+plus")
	downCombo := mustCombo(t, "ctrl+minus")
	disp.Bind(pair.Up(), upCombo)
	disp.Bind(pair.Down(), downCombo)

	disp.KeyDown(Event{Code: upCombo.Code, Mods: upCombo.Mods})
	disp.KeyDown(Event{Code: downCombo.Code, Mods: downCombo.Mods})

	if pair.Up().IsPressed() {
		t.Error("expected up preempted by down")
	}
	if !pair.Down().IsPressed() {
		t.Error("expected down pressed")
	}

	disp.KeyUp(Event{Code: downCombo.Code, Mods: downCombo.Mods})
	if pair.Down().IsPressed() {
		t.Error("expected down released")
	}
}
