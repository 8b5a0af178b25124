package cadence

import "testing"

func TestSignalNames(t *testing.T) {
	tests := []struct {
		signal interface{ Name() string }
		want   string
	}{
		{PressStarted, "cadence.press.started"},
		{PressEnded, "cadence.press.ended"},
		{PressForceStopped, "cadence.press.force.stopped"},
		{TriggerFired, "cadence.trigger.fired"},
		{ModeChanged, "cadence.mode.changed"},
		{StalePressRecovered, "cadence.stale.recovered"},
		{ActionFailed, "cadence.action.failed"},
		{SettingChanged, "cadence.setting.changed"},
		{SettingsSaved, "cadence.settings.saved"},
		{SettingsReset, "cadence.settings.reset"},
		{SettingsCanceled, "cadence.settings.canceled"},
		{SettingsReloaded, "cadence.settings.reloaded"},
		{ConfigPushed, "cadence.config.pushed"},
		{ConfigInvalid, "cadence.config.invalid"},
	}

	for _, tt := range tests {
		if got := tt.signal.Name(); got != tt.want {
			t.Errorf("expected signal name %q, got %q", tt.want, got)
		}
	}
}
