package cadence

import (
	"math"
	"time"
)

// Settings keys. The eleven numeric keys carry UI metadata; the three flag
// keys gate their modes and persist as booleans.
const (
	SettingHoldDetectTime      = "hold_detect_time"
	SettingTapThreshold        = "slow_tap_threshold"
	SettingMultiplierThreshold = "multiplier_threshold"

	SettingHoldEnabled       = "hold_enabled"
	SettingTapEnabled        = "slow_tap_enabled"
	SettingMultiplierEnabled = "multiplier_enabled"

	SettingHoldBaseInterval = "hold_base_interval"
	SettingHoldMinInterval  = "hold_min_interval"
	SettingHoldExpK         = "hold_exp_k"
	SettingHoldTau          = "hold_tau"

	SettingBurstCount    = "slow_burst_count"
	SettingBurstInterval = "slow_burst_interval"

	SettingMultiplierCount    = "multiplier_burst_count"
	SettingMultiplierInterval = "multiplier_burst_interval"
)

// Setting describes one numeric settings key for UI consumption: label,
// range, precision, and grouping. The core never reads this table; the
// store only uses Min/Max to clamp live updates.
type Setting struct {
	Key      string
	Display  string
	Group    string
	Min      float64
	Max      float64
	Decimals int
	Step     float64
	Tooltip  string
}

// Group names, in panel order.
const (
	GroupThresholds = "Timing Thresholds"
	GroupHold       = "Holding Mode"
	GroupTap        = "Tapping Mode"
	GroupMultiplier = "Quick Succession Multiplier"
)

var settingMeta = []Setting{
	{
		Key: SettingHoldDetectTime, Display: "Hold Detection Time (s)", Group: GroupThresholds,
		Min: 0.010, Max: 0.300, Decimals: 3, Step: 0.005,
		Tooltip: "Time a key must be held before switching to Hold mode",
	},
	{
		Key: SettingTapThreshold, Display: "Tap Threshold (s)", Group: GroupThresholds,
		Min: 0.010, Max: 0.300, Decimals: 3, Step: 0.005,
		Tooltip: "Time threshold for tap detection",
	},
	{
		Key: SettingMultiplierThreshold, Display: "Quick Succession Threshold (s)", Group: GroupThresholds,
		Min: 0.010, Max: 0.300, Decimals: 3, Step: 0.005,
		Tooltip: "Time between taps to activate the multiplier",
	},
	{
		Key: SettingHoldBaseInterval, Display: "Base Interval (s)", Group: GroupHold,
		Min: 0.02, Max: 0.30, Decimals: 3, Step: 0.01,
		Tooltip: "Starting repeat interval when hold begins",
	},
	{
		Key: SettingHoldMinInterval, Display: "Min Interval (s)", Group: GroupHold,
		Min: 0.001, Max: 0.05, Decimals: 3, Step: 0.001,
		Tooltip: "Fastest repeat interval (maximum speed)",
	},
	{
		Key: SettingHoldExpK, Display: "Exponential Rate", Group: GroupHold,
		Min: 1.0, Max: 20.0, Decimals: 1, Step: 0.5,
		Tooltip: "How quickly acceleration ramps up (higher = faster)",
	},
	{
		Key: SettingHoldTau, Display: "Time Constant (s)", Group: GroupHold,
		Min: 0.05, Max: 0.50, Decimals: 2, Step: 0.01,
		Tooltip: "Time constant for the exponential acceleration curve",
	},
	{
		Key: SettingBurstCount, Display: "Burst Count", Group: GroupTap,
		Min: 1, Max: 20, Decimals: 0, Step: 1,
		Tooltip: "Number of triggers per tap",
	},
	{
		Key: SettingBurstInterval, Display: "Burst Interval (s)", Group: GroupTap,
		Min: 0.005, Max: 0.10, Decimals: 3, Step: 0.005,
		Tooltip: "Time between burst triggers",
	},
	{
		Key: SettingMultiplierCount, Display: "Burst Count Multiplier", Group: GroupMultiplier,
		Min: 2, Max: 10, Decimals: 0, Step: 1,
		Tooltip: "Multiply burst count by this when tapping in quick succession",
	},
	{
		Key: SettingMultiplierInterval, Display: "Multiplied Burst Interval (s)", Group: GroupMultiplier,
		Min: 0.001, Max: 0.050, Decimals: 3, Step: 0.001,
		Tooltip: "Burst interval to use while the multiplier is active",
	},
}

// Metadata returns the UI metadata for the eleven numeric keys, in panel
// order.
func Metadata() []Setting {
	out := make([]Setting, len(settingMeta))
	copy(out, settingMeta)
	return out
}

// MetadataFor returns the metadata for one numeric key.
func MetadataFor(key string) (Setting, bool) {
	for _, s := range settingMeta {
		if s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// Groups returns the panel group names in display order.
func Groups() []string {
	return []string{GroupThresholds, GroupHold, GroupTap, GroupMultiplier}
}

// FlagFor maps a threshold key to the flag key that gates its mode.
func FlagFor(thresholdKey string) (string, bool) {
	switch thresholdKey {
	case SettingHoldDetectTime:
		return SettingHoldEnabled, true
	case SettingTapThreshold:
		return SettingTapEnabled, true
	case SettingMultiplierThreshold:
		return SettingMultiplierEnabled, true
	}
	return "", false
}

// flagKeys are the three mode flags subject to the enabled floor.
var flagKeys = []string{SettingHoldEnabled, SettingTapEnabled, SettingMultiplierEnabled}

// settingKeys is every persisted key in a stable order.
var settingKeys = []string{
	SettingHoldDetectTime,
	SettingTapThreshold,
	SettingMultiplierThreshold,
	SettingHoldEnabled,
	SettingTapEnabled,
	SettingMultiplierEnabled,
	SettingHoldBaseInterval,
	SettingHoldMinInterval,
	SettingHoldExpK,
	SettingHoldTau,
	SettingBurstCount,
	SettingBurstInterval,
	SettingMultiplierCount,
	SettingMultiplierInterval,
}

// settingsOf flattens a config into settings-key form: durations as float
// seconds, counts as ints, flags as bools.
func settingsOf(cfg Config) map[string]any {
	return map[string]any{
		SettingHoldDetectTime:      cfg.HoldDetectTime.Seconds(),
		SettingTapThreshold:        cfg.TapThreshold.Seconds(),
		SettingMultiplierThreshold: cfg.MultiplierThreshold.Seconds(),
		SettingHoldEnabled:         cfg.HoldEnabled,
		SettingTapEnabled:          cfg.TapEnabled,
		SettingMultiplierEnabled:   cfg.MultiplierEnabled,
		SettingHoldBaseInterval:    cfg.HoldBaseInterval.Seconds(),
		SettingHoldMinInterval:     cfg.HoldMinInterval.Seconds(),
		SettingHoldExpK:            cfg.HoldExpK,
		SettingHoldTau:             cfg.HoldTau.Seconds(),
		SettingBurstCount:          cfg.BurstCount,
		SettingBurstInterval:       cfg.BurstInterval.Seconds(),
		SettingMultiplierCount:     cfg.MultiplierCount,
		SettingMultiplierInterval:  cfg.MultiplierInterval.Seconds(),
	}
}

// configOf assembles a config from settings-key form. Values must already
// be coerced to their canonical types.
func configOf(values map[string]any) Config {
	sec := func(key string) time.Duration {
		f, _ := values[key].(float64)
		return secondsToDuration(f)
	}
	num := func(key string) float64 {
		f, _ := values[key].(float64)
		return f
	}
	count := func(key string) int {
		n, _ := values[key].(int)
		return n
	}
	flag := func(key string) bool {
		b, _ := values[key].(bool)
		return b
	}
	return Config{
		HoldDetectTime:      sec(SettingHoldDetectTime),
		TapThreshold:        sec(SettingTapThreshold),
		MultiplierThreshold: sec(SettingMultiplierThreshold),
		HoldEnabled:         flag(SettingHoldEnabled),
		TapEnabled:          flag(SettingTapEnabled),
		MultiplierEnabled:   flag(SettingMultiplierEnabled),
		HoldBaseInterval:    sec(SettingHoldBaseInterval),
		HoldMinInterval:     sec(SettingHoldMinInterval),
		HoldExpK:            num(SettingHoldExpK),
		HoldTau:             sec(SettingHoldTau),
		BurstCount:          count(SettingBurstCount),
		BurstInterval:       sec(SettingBurstInterval),
		MultiplierCount:     count(SettingMultiplierCount),
		MultiplierInterval:  sec(SettingMultiplierInterval),
	}
}

// secondsToDuration rounds instead of truncating so that values like 0.015s
// survive the float round trip as exactly 15ms.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
