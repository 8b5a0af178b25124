package cadence

import (
	"testing"
	"time"
)

func TestMetadata_CoversNumericKeys(t *testing.T) {
	meta := Metadata()
	if len(meta) != 11 {
		t.Fatalf("expected 11 numeric settings, got %d", len(meta))
	}

	for _, m := range meta {
		if m.Key == "" || m.Display == "" || m.Group == "" {
			t.Errorf("incomplete metadata %+v", m)
		}
		if m.Min >= m.Max {
			t.Errorf("setting %q has bad range [%v, %v]", m.Key, m.Min, m.Max)
		}
		if m.Step <= 0 {
			t.Errorf("setting %q has bad step %v", m.Key, m.Step)
		}
		got, ok := MetadataFor(m.Key)
		if !ok || got != m {
			t.Errorf("MetadataFor(%q) mismatch", m.Key)
		}
	}

	if _, ok := MetadataFor(SettingHoldEnabled); ok {
		t.Error("expected no metadata for flag keys")
	}
	if _, ok := MetadataFor("no_such_key"); ok {
		t.Error("expected no metadata for unknown keys")
	}
}

func TestMetadata_DefaultsInsideRanges(t *testing.T) {
	defaults := settingsOf(DefaultConfig())
	for _, m := range Metadata() {
		var v float64
		switch x := defaults[m.Key].(type) {
		case int:
			v = float64(x)
		case float64:
			v = x
		default:
			t.Fatalf("setting %q has unexpected default type %T", m.Key, x)
		}
		if v < m.Min || v > m.Max {
			t.Errorf("default for %q (%v) outside range [%v, %v]", m.Key, v, m.Min, m.Max)
		}
	}
}

func TestGroups_PanelOrder(t *testing.T) {
	want := []string{GroupThresholds, GroupHold, GroupTap, GroupMultiplier}
	got := Groups()
	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFlagFor(t *testing.T) {
	tests := []struct {
		key  string
		flag string
		ok   bool
	}{
		{SettingHoldDetectTime, SettingHoldEnabled, true},
		{SettingTapThreshold, SettingTapEnabled, true},
		{SettingMultiplierThreshold, SettingMultiplierEnabled, true},
		{SettingBurstCount, "", false},
		{"no_such_key", "", false},
	}

	for _, tt := range tests {
		flag, ok := FlagFor(tt.key)
		if ok != tt.ok || flag != tt.flag {
			t.Errorf("FlagFor(%q) = (%q, %v), want (%q, %v)", tt.key, flag, ok, tt.flag, tt.ok)
		}
	}
}

func TestConfigRoundtrip(t *testing.T) {
	cfg := DefaultConfig()
	if got := configOf(settingsOf(cfg)); got != cfg {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestSecondsToDuration_Rounds(t *testing.T) {
	// 0.015 is not exactly representable; naive truncation yields 14999999ns.
	if got := secondsToDuration(0.015); got != 15*time.Millisecond {
		t.Errorf("secondsToDuration(0.015) = %v, want 15ms", got)
	}
	if got := secondsToDuration(0.001); got != time.Millisecond {
		t.Errorf("secondsToDuration(0.001) = %v, want 1ms", got)
	}
}
