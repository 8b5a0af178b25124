package cadence

import (
	"testing"
	"time"
)

func TestKeyAction(t *testing.T) {
	field := KeyAction.Field("size.increase")
	if field.Key().Name() != "action" {
		t.Errorf("expected key 'action', got %q", field.Key().Name())
	}
}

func TestKeyReason(t *testing.T) {
	field := KeyReason.Field(string(StopStale))
	if field.Key().Name() != "reason" {
		t.Errorf("expected key 'reason', got %q", field.Key().Name())
	}
}

func TestKeyTriggerCount(t *testing.T) {
	field := KeyTriggerCount.Field(3)
	if field.Key().Name() != "trigger_count" {
		t.Errorf("expected key 'trigger_count', got %q", field.Key().Name())
	}
}

func TestKeyInterval(t *testing.T) {
	field := KeyInterval.Field(15 * time.Millisecond)
	if field.Key().Name() != "interval" {
		t.Errorf("expected key 'interval', got %q", field.Key().Name())
	}
}

func TestKeySetting(t *testing.T) {
	field := KeySetting.Field(SettingBurstCount)
	if field.Key().Name() != "setting" {
		t.Errorf("expected key 'setting', got %q", field.Key().Name())
	}
}

func TestKeyError(t *testing.T) {
	field := KeyError.Field("something went wrong")
	if field.Key().Name() != "error" {
		t.Errorf("expected key 'error', got %q", field.Key().Name())
	}
}
