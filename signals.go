package cadence

import "github.com/zoobzio/capitan"

// Channel signals.
var (
	// PressStarted is emitted when a channel accepts a new press.
	PressStarted = capitan.NewSignal(
		"cadence.press.started",
		"Press accepted and classified",
	)

	// PressEnded is emitted when a press ends through a genuine release.
	PressEnded = capitan.NewSignal(
		"cadence.press.ended",
		"Press released",
	)

	// PressForceStopped is emitted when a channel forcibly returns to idle
	// for safety or mutual-exclusion reasons.
	PressForceStopped = capitan.NewSignal(
		"cadence.press.force.stopped",
		"Press forcibly stopped",
	)

	// TriggerFired is emitted for every trigger event sent to the host.
	TriggerFired = capitan.NewSignal(
		"cadence.trigger.fired",
		"Trigger fired at host",
	)

	// ModeChanged is emitted when a channel transitions between modes.
	ModeChanged = capitan.NewSignal(
		"cadence.mode.changed",
		"Channel mode transition",
	)

	// StalePressRecovered is emitted when a stale-state check force-stops a
	// channel whose release edge was missed.
	StalePressRecovered = capitan.NewSignal(
		"cadence.stale.recovered",
		"Stale pressed state recovered",
	)

	// ActionFailed is emitted when the host's fire-action call returns an
	// error. The state machine continues regardless.
	ActionFailed = capitan.NewSignal(
		"cadence.action.failed",
		"Host action call failed",
	)
)

// Settings signals.
var (
	// SettingChanged is emitted when a single setting value changes.
	SettingChanged = capitan.NewSignal(
		"cadence.setting.changed",
		"Setting value changed",
	)

	// SettingsSaved is emitted when the store persists its current state.
	SettingsSaved = capitan.NewSignal(
		"cadence.settings.saved",
		"Settings persisted to storage",
	)

	// SettingsReset is emitted when the store loads defaults.
	SettingsReset = capitan.NewSignal(
		"cadence.settings.reset",
		"Settings reset to defaults",
	)

	// SettingsCanceled is emitted when the store reverts unsaved changes.
	SettingsCanceled = capitan.NewSignal(
		"cadence.settings.canceled",
		"Unsaved settings reverted",
	)

	// SettingsReloaded is emitted when the store re-reads persisted values,
	// typically after an external edit to the backing storage.
	SettingsReloaded = capitan.NewSignal(
		"cadence.settings.reloaded",
		"Settings reloaded from storage",
	)

	// ConfigPushed is emitted after the store pushes a config snapshot to
	// its registered appliers.
	ConfigPushed = capitan.NewSignal(
		"cadence.config.pushed",
		"Config snapshot pushed to appliers",
	)

	// ConfigInvalid is emitted when a snapshot fails boundary validation
	// and is withheld from appliers.
	ConfigInvalid = capitan.NewSignal(
		"cadence.config.invalid",
		"Config snapshot failed validation",
	)
)
