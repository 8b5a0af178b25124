package cadence

// Mode represents the current behavioral classification of a Channel.
type Mode int32

const (
	// ModeIdle indicates the channel is not pressed.
	ModeIdle Mode = iota

	// ModeTap indicates the channel is pressed and classified as a discrete
	// tap, possibly with a burst still in flight.
	ModeTap

	// ModeHold indicates the channel is pressed and sustained long enough
	// that exponential interval acceleration is active.
	ModeHold
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeTap:
		return "tap"
	case ModeHold:
		return "hold"
	default:
		return "unknown"
	}
}

// StopReason identifies why a channel was forcibly returned to idle.
type StopReason string

const (
	// StopMaxDuration means the press exceeded the maximum allowed duration.
	StopMaxDuration StopReason = "max-duration-exceeded"

	// StopStalled means the controlled quantity stopped changing across
	// consecutive triggers, indicating the quantity is pinned at a limit.
	StopStalled StopReason = "no-quantity-change"

	// StopStale means the channel was marked pressed but received no timer
	// activity for longer than the stale timeout, indicating a missed
	// release edge.
	StopStale StopReason = "stale-state"

	// StopPreempted means the paired channel started a press while this
	// channel was active.
	StopPreempted StopReason = "paired-press"

	// StopClosed means the channel was closed while pressed.
	StopClosed StopReason = "closed"
)
