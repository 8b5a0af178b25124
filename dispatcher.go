package cadence

import "sync"

// Dispatcher routes host key edges to bound channels. It consumes press and
// release edges for bound combos, filters OS auto-repeat, releases every
// pressed channel on focus loss, and sweeps stale presses before acting on
// any event.
//
// The dispatcher never holds its own lock while calling into a channel.
type Dispatcher struct {
	mu       sync.Mutex
	bindings map[Combo]*Channel
	pressed  map[Combo]bool
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		bindings: make(map[Combo]*Channel),
		pressed:  make(map[Combo]bool),
	}
}

// Bind routes the given combos to ch. Binding a combo that is already bound
// replaces the previous route.
func (d *Dispatcher) Bind(ch *Channel, combos ...Combo) {
	if ch == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, combo := range combos {
		d.bindings[combo] = ch
	}
}

// Unbind removes every combo routed to ch.
func (d *Dispatcher) Unbind(ch *Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for combo, bound := range d.bindings {
		if bound == ch {
			delete(d.bindings, combo)
			delete(d.pressed, combo)
		}
	}
}

// KeyDown handles a key-down edge and reports whether it was consumed.
// Auto-repeat edges for bound combos are consumed without forwarding so the
// channel's own timers control the trigger rate. A duplicate down for a
// combo already tracked as pressed is consumed without starting a new
// press.
func (d *Dispatcher) KeyDown(ev Event) bool {
	d.sweepStale()

	if ev.Code.IsModifier() {
		return false
	}
	combo := Combo{Code: ev.Code, Mods: ev.Mods}

	d.mu.Lock()
	ch, bound := d.bindings[combo]
	if !bound {
		d.mu.Unlock()
		return false
	}
	if ev.Repeat || d.pressed[combo] {
		d.mu.Unlock()
		return true
	}
	d.pressed[combo] = true
	d.mu.Unlock()

	ch.StartPress()
	return true
}

// KeyUp handles a key-up edge and reports whether it was consumed. The
// exact combo is matched first; when no pressed channel owns it, the bare
// key code is matched against every binding, which covers modifier state
// drifting between press and release.
func (d *Dispatcher) KeyUp(ev Event) bool {
	d.sweepStale()

	if ev.Repeat || ev.Code.IsModifier() {
		return false
	}
	combo := Combo{Code: ev.Code, Mods: ev.Mods}

	d.mu.Lock()
	var candidates []*Channel
	if ch, ok := d.bindings[combo]; ok {
		candidates = append(candidates, ch)
	}
	for bound, ch := range d.bindings {
		if bound.Code == ev.Code && bound != combo {
			candidates = append(candidates, ch)
		}
	}
	// Clear pressed tracking by key code alone. The mods seen at release
	// cannot be trusted when a modifier was lifted before the key.
	for bound := range d.pressed {
		if bound.Code == ev.Code {
			delete(d.pressed, bound)
		}
	}
	d.mu.Unlock()

	for _, ch := range candidates {
		if ch.IsPressed() {
			ch.EndPress()
			return true
		}
	}
	return false
}

// ActionTriggered reports that the host fired a bound action directly, for
// shortcut systems that consume the key-down edge before it reaches the
// event filter. The release still arrives through KeyUp.
func (d *Dispatcher) ActionTriggered(ch *Channel) {
	if ch == nil {
		return
	}
	d.sweepStale()
	// The target may not be bound to this dispatcher; check it directly.
	ch.CheckAndFixStaleState()
	if !ch.IsPressed() {
		ch.StartPress()
	}
}

// FocusLost releases every pressed channel. Channel state is authoritative
// here since the host may have consumed the matching key-down edges.
func (d *Dispatcher) FocusLost() {
	d.mu.Lock()
	channels := d.channelsLocked()
	d.pressed = make(map[Combo]bool)
	d.mu.Unlock()

	for _, ch := range channels {
		if ch.IsPressed() {
			ch.EndPress()
		}
	}
}

// sweepStale runs the stale check on every bound channel.
func (d *Dispatcher) sweepStale() {
	d.mu.Lock()
	channels := d.channelsLocked()
	d.mu.Unlock()

	for _, ch := range channels {
		ch.CheckAndFixStaleState()
	}
}

// channelsLocked returns the distinct bound channels.
func (d *Dispatcher) channelsLocked() []*Channel {
	seen := make(map[*Channel]struct{}, len(d.bindings))
	out := make([]*Channel, 0, len(d.bindings))
	for _, ch := range d.bindings {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
