package cadence

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key channel events.
type MetricsProvider interface {
	// OnPress is called when a channel accepts a new press.
	OnPress(action string)

	// OnRelease is called when a press ends through a genuine release.
	// Held is the duration between press and release.
	OnRelease(action string, held time.Duration)

	// OnTrigger is called for every trigger fired at the host.
	OnTrigger(action string)

	// OnModeChange is called when a channel transitions between modes.
	OnModeChange(action string, from, to Mode)

	// OnForceStop is called when a channel forcibly returns to idle.
	// Stale-state recoveries arrive here with reason StopStale.
	OnForceStop(action string, reason StopReason)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnPress(_ string)                    {}
func (NoOpMetricsProvider) OnRelease(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnTrigger(_ string)                  {}
func (NoOpMetricsProvider) OnModeChange(_ string, _, _ Mode)    {}
func (NoOpMetricsProvider) OnForceStop(_ string, _ StopReason)  {}
