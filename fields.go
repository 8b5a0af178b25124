package cadence

import "github.com/zoobzio/capitan"

// Field keys for cadence events.
var (
	// KeyAction is the action name of the channel emitting the event.
	KeyAction = capitan.NewStringKey("action")

	// KeyMode is the channel mode at emission time.
	KeyMode = capitan.NewStringKey("mode")

	// KeyOldMode is the mode before a transition.
	KeyOldMode = capitan.NewStringKey("old_mode")

	// KeyNewMode is the mode after a transition.
	KeyNewMode = capitan.NewStringKey("new_mode")

	// KeyReason is the stop reason on a forced stop.
	KeyReason = capitan.NewStringKey("reason")

	// KeyTriggerCount is the number of triggers fired so far in this press.
	KeyTriggerCount = capitan.NewIntKey("trigger_count")

	// KeyBurstCount is the total step count of a classified burst.
	KeyBurstCount = capitan.NewIntKey("burst_count")

	// KeyInterval is the scheduling interval relevant to the event.
	KeyInterval = capitan.NewDurationKey("interval")

	// KeyElapsed is the time elapsed since press start.
	KeyElapsed = capitan.NewDurationKey("elapsed")

	// KeySetting is the settings key a store event refers to.
	KeySetting = capitan.NewStringKey("setting")

	// KeyValue is the string form of a setting value.
	KeyValue = capitan.NewStringKey("value")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")
)
