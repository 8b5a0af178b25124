package cadence

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultStopHistory is the default capacity of the force-stop history ring.
const DefaultStopHistory = 16

// options holds construction options shared by NewChannel, NewPair and
// Registry.
type options struct {
	clock   clockz.Clock
	limits  Limits
	metrics MetricsProvider
	history int
}

// Option configures channel construction.
type Option func(*options)

// WithClock sets a custom clock for all timing.
// Use this with clockz.NewFakeClock() for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLimits overrides the safety limits.
func WithLimits(l Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithMetrics sets a metrics provider for channel events.
func WithMetrics(m MetricsProvider) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithStopHistory sets the capacity of the force-stop history ring.
// Zero disables the ring.
func WithStopHistory(n int) Option {
	return func(o *options) {
		o.history = n
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		clock:   clockz.RealClock,
		limits:  DefaultLimits(),
		metrics: NoOpMetricsProvider{},
		history: DefaultStopHistory,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Channel classifies one logical input direction's press/release pattern and
// emits trigger events at the host accordingly.
//
// A Channel is safe for concurrent use. Paired channels share a single mutex,
// which makes mutual-exclusion preemption atomic: a StartPress that must stop
// the partner completes that stop before the new press proceeds, under one
// lock acquisition.
type Channel struct {
	action  string
	host    Host
	clock   clockz.Clock
	limits  Limits
	metrics MetricsProvider
	stops   *stopRing

	mu   *sync.Mutex
	pair *Channel

	cfg Config

	pressed      bool
	mode         Mode
	pressedAt    time.Time
	pressStart   time.Time
	lastTrigger  time.Time
	lastRelease  time.Time
	triggerCount int

	burstActive    bool
	burstRemaining int
	burstInterval  time.Duration

	lastQuantity   float64
	quantityKnown  bool
	unchangedCount int
	lastActivity   time.Time

	// Generation counters retire timer callbacks that raced their own
	// cancellation: a callback whose generation no longer matches is a no-op.
	burstGen   uint64
	pollGen    uint64
	burstTimer *timerHandle
	pollTimer  *timerHandle

	closed bool
}

// NewChannel creates a standalone channel for the named action. Channels
// that must exclude each other are built together with NewPair instead.
//
// The channel starts with DefaultConfig; register it with a Store to keep
// its configuration live.
func NewChannel(action string, host Host, opts ...Option) *Channel {
	return newChannel(action, host, buildOptions(opts), &sync.Mutex{})
}

func newChannel(action string, host Host, o *options, mu *sync.Mutex) *Channel {
	return &Channel{
		action:  action,
		host:    host,
		clock:   o.clock,
		limits:  o.limits,
		metrics: o.metrics,
		stops:   newStopRing(o.history),
		mu:      mu,
		cfg:     DefaultConfig(),
	}
}

// Action returns the action name this channel fires at the host.
func (c *Channel) Action() string {
	return c.action
}

// IsPressed reports whether the channel currently believes it is pressed.
// Callers reconciling unreliable edge delivery should run
// CheckAndFixStaleState before trusting this.
func (c *Channel) IsPressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pressed
}

// Mode returns the current behavioral mode.
func (c *Channel) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// TriggerCount returns the number of triggers fired during the current press,
// or during the most recent one if idle.
func (c *Channel) TriggerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggerCount
}

// LastStops returns recent forced stops, oldest first.
func (c *Channel) LastStops() []StopRecord {
	return c.stops.all()
}

// ApplyConfig replaces the channel's configuration snapshot. It may be
// called at any time; the snapshot swaps between two callbacks and the
// current press continues under the new values. The store validates
// snapshots before pushing them here.
func (c *Channel) ApplyConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// StartPress begins a press. It is a no-op while already pressed. If the
// paired channel is pressed, it is force-stopped first, synchronously.
//
// Classification happens here, against the time since the previous genuine
// release: within the tap threshold (or on a first press) the press is a
// tap, additionally multiplied when it lands within the multiplier
// threshold. A press outside every window still fires a plain burst, so
// every press produces at least one trigger.
func (c *Channel) StartPress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.pressed {
		return
	}
	if c.pair != nil && c.pair.pressed {
		c.pair.forceStopLocked(StopPreempted)
	}

	now := c.clock.Now()
	sinceRelease := now.Sub(c.lastRelease)
	firstPress := c.lastRelease.IsZero()

	c.pressed = true
	c.pressedAt = now
	c.pressStart = now
	c.lastTrigger = now
	c.lastActivity = now
	c.triggerCount = 0
	c.unchangedCount = 0
	c.lastQuantity, c.quantityKnown = c.host.Quantity()

	count := c.cfg.BurstCount
	interval := c.cfg.BurstInterval
	if c.cfg.TapEnabled && (firstPress || sinceRelease < c.cfg.TapThreshold) {
		if c.cfg.MultiplierEnabled && !firstPress && sinceRelease < c.cfg.MultiplierThreshold {
			count *= c.cfg.MultiplierCount
			interval = c.cfg.MultiplierInterval
		}
	}

	c.setModeLocked(ModeTap)
	capitan.Emit(context.Background(), PressStarted,
		KeyAction.Field(c.action),
		KeyBurstCount.Field(count),
		KeyInterval.Field(interval),
	)
	c.metrics.OnPress(c.action)

	c.startBurstLocked(count, interval)
}

// EndPress ends a press through a genuine release and stamps the release
// time used to classify the next press. An in-flight burst keeps firing
// until its count is exhausted; only the poll timer is cancelled here.
func (c *Channel) EndPress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pressed {
		return
	}
	now := c.clock.Now()
	held := now.Sub(c.pressedAt)

	c.pressed = false
	c.lastRelease = now
	c.unchangedCount = 0
	c.pollGen++
	c.pollTimer.Stop()
	c.pollTimer = nil
	if !c.burstActive {
		c.burstGen++
		c.burstTimer.Stop()
		c.burstTimer = nil
		c.setModeLocked(ModeIdle)
	}

	capitan.Emit(context.Background(), PressEnded,
		KeyAction.Field(c.action),
		KeyElapsed.Field(held),
		KeyTriggerCount.Field(c.triggerCount),
	)
	c.metrics.OnRelease(c.action, held)
}

// ForceStop forcibly returns the channel to idle. Unlike EndPress it does
// NOT stamp the release time, so tap classification of the next genuine
// press is not corrupted by an artificial stop, and it kills an in-flight
// burst immediately.
func (c *Channel) ForceStop(reason StopReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forceStopLocked(reason)
}

// IsStale reports whether the channel is marked pressed but has recorded no
// timer activity for longer than the stale timeout, the signature of a
// missed release edge.
func (c *Channel) IsStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isStaleLocked()
}

// CheckAndFixStaleState force-stops the channel if it is stale and reports
// whether it did. Edge dispatchers call this before trusting IsPressed.
func (c *Channel) CheckAndFixStaleState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isStaleLocked() {
		return false
	}
	c.forceStopLocked(StopStale)
	return true
}

// Close force-stops any active press and permanently idles the channel.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.forceStopLocked(StopClosed)
	c.closed = true
}

func (c *Channel) isStaleLocked() bool {
	return c.pressed && c.clock.Now().Sub(c.lastActivity) > c.limits.StaleTimeout
}

func (c *Channel) setModeLocked(m Mode) {
	if c.mode == m {
		return
	}
	old := c.mode
	c.mode = m
	capitan.Emit(context.Background(), ModeChanged,
		KeyAction.Field(c.action),
		KeyOldMode.Field(old.String()),
		KeyNewMode.Field(m.String()),
	)
	c.metrics.OnModeChange(c.action, old, m)
}

// startBurstLocked begins a fresh burst, retiring any burst still in flight.
// The first step fires immediately.
func (c *Channel) startBurstLocked(count int, interval time.Duration) {
	c.burstGen++
	c.burstTimer.Stop()
	c.burstActive = true
	c.burstRemaining = count
	c.burstInterval = interval
	c.burstStepLocked()
}

// burstStepLocked fires one burst step, then schedules the next or finishes.
// Steps proceed on remaining count alone: a release does not kill a burst.
func (c *Channel) burstStepLocked() {
	if !c.fireTriggerLocked() {
		return
	}
	c.burstRemaining--
	if c.burstRemaining > 0 {
		gen := c.burstGen
		c.burstTimer = schedule(c.clock, c.burstInterval, func() { c.onBurstTimer(gen) })
		return
	}
	c.finishBurstLocked()
}

func (c *Channel) onBurstTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.burstGen || !c.burstActive {
		return
	}
	c.burstStepLocked()
}

// finishBurstLocked settles a completed burst. Still pressed with hold
// enabled: restart the timing baseline and arm the poll timer, so hold
// detection measures sustained time after the burst instead of preempting
// it. Released: settle to idle.
func (c *Channel) finishBurstLocked() {
	c.burstActive = false
	c.burstRemaining = 0
	if !c.pressed {
		c.setModeLocked(ModeIdle)
		return
	}
	if c.cfg.HoldEnabled {
		now := c.clock.Now()
		c.pressStart = now
		c.lastTrigger = now
		c.armPollLocked()
	}
}

func (c *Channel) armPollLocked() {
	c.pollGen++
	c.pollTimer.Stop()
	c.schedulePollLocked()
}

func (c *Channel) schedulePollLocked() {
	gen := c.pollGen
	c.pollTimer = schedule(c.clock, c.limits.PollPeriod, func() { c.onPollTimer(gen) })
}

func (c *Channel) onPollTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.pollGen {
		return
	}
	if !c.pressed {
		return
	}
	now := c.clock.Now()
	elapsed := now.Sub(c.pressStart)
	if elapsed > c.limits.MaxPressDuration {
		c.forceStopLocked(StopMaxDuration)
		return
	}
	c.lastActivity = now

	if c.cfg.HoldEnabled && elapsed >= c.cfg.HoldDetectTime && c.mode != ModeHold && !c.burstActive {
		c.setModeLocked(ModeHold)
	}
	if c.mode == ModeHold {
		interval := c.currentIntervalLocked(elapsed)
		if now.Sub(c.lastTrigger) >= interval {
			if !c.fireTriggerLocked() {
				return
			}
			c.lastTrigger = now
		}
	}
	c.schedulePollLocked()
}

// currentIntervalLocked computes the target trigger interval for a sustained
// press. Hold mode decays exponentially from the base interval toward the
// minimum; a tap-state holdover (hold disabled) decelerates hyperbolically
// instead.
func (c *Channel) currentIntervalLocked(elapsed time.Duration) time.Duration {
	if c.mode == ModeHold {
		t := (elapsed - c.cfg.HoldDetectTime).Seconds()
		if t < 0 {
			t = 0
		}
		iv := c.cfg.HoldBaseInterval.Seconds() * math.Exp(-c.cfg.HoldExpK*t/c.cfg.HoldTau.Seconds())
		d := time.Duration(iv * float64(time.Second))
		if d < c.cfg.HoldMinInterval {
			return c.cfg.HoldMinInterval
		}
		return d
	}
	d := time.Duration(tapDecelBase.Seconds() / (1 + tapDecelRate*elapsed.Seconds()) * float64(time.Second))
	if d < tapDecelFloor {
		return tapDecelFloor
	}
	return d
}

// fireTriggerLocked emits one trigger at the host with the runaway safety
// check: quantity unchanged across too many consecutive triggers means the
// quantity is pinned at a limit, and the channel force-stops. Reports false
// if the channel stopped itself.
func (c *Channel) fireTriggerLocked() bool {
	before, beforeOK := c.host.Quantity()
	c.triggerCount++
	if err := c.host.FireAction(c.action); err != nil {
		capitan.Emit(context.Background(), ActionFailed,
			KeyAction.Field(c.action),
			KeyError.Field(err.Error()),
		)
	}
	after, afterOK := c.host.Quantity()

	capitan.Emit(context.Background(), TriggerFired,
		KeyAction.Field(c.action),
		KeyMode.Field(c.mode.String()),
		KeyTriggerCount.Field(c.triggerCount),
	)
	c.metrics.OnTrigger(c.action)

	if afterOK {
		c.lastQuantity = after
		c.quantityKnown = true
	}
	if beforeOK && afterOK {
		if math.Abs(after-before) < c.limits.QuantityEpsilon {
			c.unchangedCount++
			if c.unchangedCount >= c.limits.MaxUnchangedTriggers {
				c.forceStopLocked(StopStalled)
				return false
			}
		} else {
			c.unchangedCount = 0
		}
	}
	return true
}

func (c *Channel) forceStopLocked(reason StopReason) {
	c.cancelTimersLocked()
	c.burstActive = false
	c.burstRemaining = 0
	c.unchangedCount = 0
	wasPressed := c.pressed
	c.pressed = false
	c.setModeLocked(ModeIdle)
	if !wasPressed {
		return
	}

	c.stops.push(StopRecord{Action: c.action, Reason: reason, At: c.clock.Now()})
	capitan.Emit(context.Background(), PressForceStopped,
		KeyAction.Field(c.action),
		KeyReason.Field(string(reason)),
		KeyTriggerCount.Field(c.triggerCount),
	)
	if reason == StopStale {
		capitan.Emit(context.Background(), StalePressRecovered,
			KeyAction.Field(c.action),
		)
	}
	c.metrics.OnForceStop(c.action, reason)
}

func (c *Channel) cancelTimersLocked() {
	c.burstGen++
	c.pollGen++
	c.burstTimer.Stop()
	c.pollTimer.Stop()
	c.burstTimer = nil
	c.pollTimer = nil
}
