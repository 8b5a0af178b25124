package cadence

// Host is the application collaborator a channel drives.
//
// Both calls must be synchronous and fast; they are made while the channel
// holds its own lock between timer callbacks.
type Host interface {
	// Quantity returns the current value of the controlled quantity, or
	// false if it is unavailable. It feeds only the safety-stall detector,
	// never classification.
	Quantity() (float64, bool)

	// FireAction performs one discrete increment or decrement for the named
	// action. A returned error is swallowed by the channel (an ActionFailed
	// signal is emitted) and never disturbs the state machine.
	FireAction(name string) error
}

// HostFuncs adapts plain functions to the Host interface. Nil functions
// behave as "no data" and "no-op" respectively.
type HostFuncs struct {
	QuantityFunc   func() (float64, bool)
	FireActionFunc func(name string) error
}

// Quantity calls QuantityFunc if set.
func (h HostFuncs) Quantity() (float64, bool) {
	if h.QuantityFunc == nil {
		return 0, false
	}
	return h.QuantityFunc()
}

// FireAction calls FireActionFunc if set.
func (h HostFuncs) FireAction(name string) error {
	if h.FireActionFunc == nil {
		return nil
	}
	return h.FireActionFunc(name)
}
