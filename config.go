package cadence

import "time"

// Config is the live configuration snapshot a channel classifies with.
// Values are plain and copied on every push; a channel never shares config
// storage with the store or with its paired channel, so a mid-press update
// can only ever swap the whole snapshot between two callbacks.
type Config struct {
	// HoldDetectTime is how long a press must be sustained before it is
	// promoted from Tap to Hold.
	HoldDetectTime time.Duration `validate:"gt=0"`

	// TapThreshold is the maximum gap since the previous release for a new
	// press to classify as a tap.
	TapThreshold time.Duration `validate:"gt=0"`

	// MultiplierThreshold is the maximum gap since the previous release for
	// a tap to additionally qualify for the quick-succession multiplier.
	MultiplierThreshold time.Duration `validate:"gt=0"`

	// HoldEnabled, TapEnabled and MultiplierEnabled gate their modes. The
	// store guarantees at least one of the three is always true.
	HoldEnabled       bool
	TapEnabled        bool
	MultiplierEnabled bool

	// HoldBaseInterval is the trigger interval at the moment of hold
	// promotion, before exponential decay shrinks it.
	HoldBaseInterval time.Duration `validate:"gt=0"`

	// HoldMinInterval is the floor the decayed interval never goes below.
	HoldMinInterval time.Duration `validate:"gt=0"`

	// HoldExpK is the exponential rate constant of the decay.
	HoldExpK float64 `validate:"gt=0"`

	// HoldTau is the decay time constant.
	HoldTau time.Duration `validate:"gt=0"`

	// BurstCount and BurstInterval shape the plain tap burst.
	BurstCount    int           `validate:"min=1"`
	BurstInterval time.Duration `validate:"gt=0"`

	// MultiplierCount multiplies BurstCount for a multiplied tap, which
	// fires at MultiplierInterval spacing instead of BurstInterval.
	MultiplierCount    int           `validate:"min=1"`
	MultiplierInterval time.Duration `validate:"gt=0"`
}

// DefaultConfig returns the compiled-in defaults.
func DefaultConfig() Config {
	return Config{
		HoldDetectTime:      200 * time.Millisecond,
		TapThreshold:        100 * time.Millisecond,
		MultiplierThreshold: 150 * time.Millisecond,
		HoldEnabled:         true,
		TapEnabled:          true,
		MultiplierEnabled:   true,
		HoldBaseInterval:    100 * time.Millisecond,
		HoldMinInterval:     8 * time.Millisecond,
		HoldExpK:            8.0,
		HoldTau:             150 * time.Millisecond,
		BurstCount:          3,
		BurstInterval:       15 * time.Millisecond,
		MultiplierCount:     3,
		MultiplierInterval:  time.Millisecond,
	}
}

// Limits are the safety parameters of a channel. They are not part of the
// persisted settings; override them per channel with WithLimits.
type Limits struct {
	// MaxPressDuration is the hard ceiling on a single press. A press
	// sustained past it is force-stopped.
	MaxPressDuration time.Duration `validate:"gt=0"`

	// StaleTimeout is how long a pressed channel may go without timer
	// activity before it is considered stale (missed release edge).
	StaleTimeout time.Duration `validate:"gt=0"`

	// PollPeriod is the poll timer period used for hold detection and
	// hold-mode trigger pacing.
	PollPeriod time.Duration `validate:"gt=0"`

	// MaxUnchangedTriggers is how many consecutive triggers may leave the
	// controlled quantity unchanged before the channel force-stops.
	MaxUnchangedTriggers int `validate:"min=1"`

	// QuantityEpsilon is the change threshold below which two quantity
	// readings count as unchanged.
	QuantityEpsilon float64 `validate:"gt=0"`
}

// DefaultLimits returns the compiled-in safety limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPressDuration:     10 * time.Second,
		StaleTimeout:         500 * time.Millisecond,
		PollPeriod:           5 * time.Millisecond,
		MaxUnchangedTriggers: 15,
		QuantityEpsilon:      0.001,
	}
}

// Deceleration applied to a pressed tap channel that outlives its burst with
// hold disabled. Not configurable.
const (
	tapDecelBase  = 150 * time.Millisecond
	tapDecelFloor = 30 * time.Millisecond
	tapDecelRate  = 1.5
)
