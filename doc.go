/*
Package cadence turns raw press/release edges into timed trigger streams.

A Channel watches one action. While the key is held it decides, from timing
alone, whether the press is a deliberate hold, a quick tap, or one of a run
of taps in quick succession, and fires the action's trigger accordingly: an
accelerating repeat for holds, a fixed burst for taps, and a multiplied
burst for rapid tap runs. Channels come in pairs (increase/decrease style)
that preempt each other, so opposite actions can never run concurrently.

# Basic Usage

Create a pair of channels over a host and feed it edges:

	host := cadence.HostFuncs{
	    QuantityFunc:   brushSize,
	    FireActionFunc: fireKritaAction,
	}

	pair := cadence.NewPair(host, "size.increase", "size.decrease")
	defer pair.Close()

	up := pair.Up()
	up.StartPress() // key down
	// ... triggers fire on the channel's timers ...
	up.EndPress() // key up

Wire key events through a Dispatcher instead of calling channels directly:

	disp := cadence.NewDispatcher()
	combo, _ := cadence.ParseCombo("ctrl+plus")
	disp.Bind(pair.Up(), combo)

	disp.KeyDown(cadence.Event{Code: combo.Code, Mods: combo.Mods})
	disp.KeyUp(cadence.Event{Code: combo.Code, Mods: combo.Mods})

# Modes

Each press is classified by timing:

  - Hold: the key stays down past the hold detection time. Triggers repeat
    at an interval that decays exponentially toward a floor the longer the
    key is held.
  - Tap: a quick press/release. A short fixed burst of triggers fires, and
    an in-flight burst is allowed to finish after the key is released.
  - Multiplied tap: a tap arriving quickly after the previous release
    multiplies the burst, so runs of taps scale output instead of dropping
    triggers.

Safety machinery backs the classifier: presses held past a maximum duration
are force-stopped, triggers that stop changing the observed quantity stall
the press, and stale pressed state (a missed release) is recovered on the
next event.

# Settings

A Store holds the tunable timing parameters, validates and persists them
through a pluggable Storage (in-memory, YAML file, and more), and pushes
immutable Config snapshots to registered channels:

	store := cadence.NewStore(cadence.NewFileStorage(path))
	store.Register(pair.Up())
	store.Register(pair.Down())

	store.Set(cadence.SettingHoldBaseInterval, 0.08)
	store.Save()

Settings carry UI metadata (ranges, steps, display groups) via Metadata, so
front ends can render editors without hardcoding bounds.

# Observability

State transitions, triggers, force-stops and settings changes are emitted
as capitan signals (PressStarted, TriggerFired, ConfigPushed, ...) with
typed fields, and a MetricsProvider interface mirrors the trigger lifecycle
for metric backends.
*/
package cadence
