package cadence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
)

// validate is the shared validator instance.
var validate = validator.New()

// ErrUnknownKey is returned for settings keys the store does not manage.
var ErrUnknownKey = errors.New("cadence: unknown setting")

// Applier receives configuration snapshots pushed by the store.
// *Channel implements it.
type Applier interface {
	ApplyConfig(Config)
}

// Store holds the live settings, the last-saved snapshot, and a pre-reset
// snapshot for undo, and pushes a validated Config copy to every registered
// applier on every change.
//
// Construct one per process and inject it where needed; nothing in this
// package reaches for a global. All methods are safe for concurrent use;
// pushes run synchronously under the store lock, and appliers must not call
// back into the store.
type Store struct {
	mu          sync.Mutex
	storage     Storage
	group       string
	current     map[string]any
	saved       map[string]any
	beforeReset map[string]any
	appliers    []Applier
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithGroup overrides the storage group name.
func WithGroup(group string) StoreOption {
	return func(s *Store) {
		s.group = group
	}
}

// NewStore creates a store seeded with the compiled-in defaults, immediately
// overlaid with whatever storage already holds. Malformed persisted values
// fall back silently to their defaults.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		group:   SettingsGroup,
		current: settingsOf(DefaultConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.reloadLocked()
	s.saved = snapshotValues(s.current)
	s.mu.Unlock()
	return s
}

// Get returns the current value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.current[key]
	return v, ok
}

// All returns a copy of every current value.
func (s *Store) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotValues(s.current)
}

// Snapshot returns the current settings assembled into a Config.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return configOf(s.current)
}

// Set updates one setting. The value is coerced to the key's canonical type
// (bool, int or float64; strings are parsed) and clamped to its metadata
// range, then the updated config is pushed to every registered applier.
// Nothing is persisted until Save.
//
// A Set on a mode-flag key routes through the same enabled floor as
// SetEnabled: disabling the last enabled mode silently does not take effect.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.current[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	v, err := coerceValue(def, value)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	if b, isBool := v.(bool); isBool && isFlagKey(key) {
		s.setFlagLocked(key, b)
		return nil
	}
	s.current[key] = clampValue(key, v)
	s.pushLocked()
	capitan.Emit(context.Background(), SettingChanged,
		KeySetting.Field(key),
		KeyValue.Field(formatValue(s.current[key])),
	)
	return nil
}

// IsEnabled reports whether the mode gated by the given threshold key (or
// its flag key directly) is enabled.
func (s *Store) IsEnabled(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag, ok := resolveFlagKey(key)
	if !ok {
		return false
	}
	b, _ := s.current[flag].(bool)
	return b
}

// SetEnabled toggles the mode gated by the given threshold key (or its flag
// key directly). Disabling the last enabled mode is rejected so at least
// one classification mode always remains active. The return reports whether
// the toggle took effect.
func (s *Store) SetEnabled(key string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag, ok := resolveFlagKey(key)
	if !ok {
		return false
	}
	return s.setFlagLocked(flag, enabled)
}

func (s *Store) setFlagLocked(flag string, enabled bool) bool {
	cur, _ := s.current[flag].(bool)
	if !enabled && cur && s.enabledCountLocked() <= 1 {
		return false
	}
	if cur == enabled {
		return true
	}
	s.current[flag] = enabled
	s.pushLocked()
	capitan.Emit(context.Background(), SettingChanged,
		KeySetting.Field(flag),
		KeyValue.Field(strconv.FormatBool(enabled)),
	)
	return true
}

// ResetToDefaults snapshots the current state for undo, loads the
// compiled-in defaults, and pushes.
func (s *Store) ResetToDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeReset = snapshotValues(s.current)
	s.current = settingsOf(DefaultConfig())
	s.pushLocked()
	capitan.Emit(context.Background(), SettingsReset)
}

// Save persists the current state through the storage backend, refreshes
// the saved snapshot, and clears any pending reset undo. The first write
// error is returned; remaining keys are still attempted, and the saved
// snapshot is not refreshed on failure.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, key := range settingKeys {
		if err := s.storage.Write(s.group, key, formatValue(s.current[key])); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("persist %q: %w", key, err)
		}
	}
	if firstErr != nil {
		return firstErr
	}
	s.saved = snapshotValues(s.current)
	s.beforeReset = nil
	capitan.Emit(context.Background(), SettingsSaved)
	return nil
}

// Cancel reverts unsaved changes: to the pre-reset snapshot when a reset is
// pending undo (clearing it), otherwise to the last-saved snapshot. Pushes
// either way.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeReset != nil {
		s.current = snapshotValues(s.beforeReset)
		s.beforeReset = nil
	} else {
		s.current = snapshotValues(s.saved)
	}
	s.pushLocked()
	capitan.Emit(context.Background(), SettingsCanceled)
}

// Reload re-reads every key from storage, picking up external edits to the
// backing store. The loaded state becomes both current and saved, and any
// pending reset undo is dropped. Pushes.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked()
	s.saved = snapshotValues(s.current)
	s.beforeReset = nil
	s.pushLocked()
	capitan.Emit(context.Background(), SettingsReloaded)
}

// Register adds an applier to the push list and applies the current config
// immediately. Registering an already-registered applier is a no-op.
func (s *Store) Register(a Applier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appliers {
		if existing == a {
			return
		}
	}
	s.appliers = append(s.appliers, a)
	if cfg, ok := s.validSnapshotLocked(); ok {
		a.ApplyConfig(cfg)
	}
}

// Unregister removes an applier by identity.
func (s *Store) Unregister(a Applier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.appliers {
		if existing == a {
			s.appliers = append(s.appliers[:i], s.appliers[i+1:]...)
			return
		}
	}
}

// reloadLocked overlays current values with whatever storage holds.
func (s *Store) reloadLocked() {
	defaults := settingsOf(DefaultConfig())
	for _, key := range settingKeys {
		def := defaults[key]
		raw := s.storage.Read(s.group, key, formatValue(def))
		v, err := parseValue(def, raw)
		if err != nil {
			v = def
		}
		s.current[key] = clampValue(key, v)
	}
	// The enabled floor survives hand-edited storage.
	if s.enabledCountLocked() == 0 {
		for _, k := range flagKeys {
			s.current[k] = defaults[k]
		}
	}
}

// pushLocked validates the current snapshot and applies it to every
// registered applier. An invalid snapshot is withheld.
func (s *Store) pushLocked() {
	cfg, ok := s.validSnapshotLocked()
	if !ok {
		return
	}
	for _, a := range s.appliers {
		a.ApplyConfig(cfg)
	}
	capitan.Emit(context.Background(), ConfigPushed)
}

func (s *Store) validSnapshotLocked() (Config, bool) {
	cfg := configOf(s.current)
	if err := validate.Struct(cfg); err != nil {
		capitan.Emit(context.Background(), ConfigInvalid,
			KeyError.Field(err.Error()),
		)
		return Config{}, false
	}
	return cfg, true
}

func (s *Store) enabledCountLocked() int {
	n := 0
	for _, k := range flagKeys {
		if b, _ := s.current[k].(bool); b {
			n++
		}
	}
	return n
}

func isFlagKey(key string) bool {
	for _, k := range flagKeys {
		if k == key {
			return true
		}
	}
	return false
}

// resolveFlagKey maps a threshold key to its flag key and passes flag keys
// through unchanged.
func resolveFlagKey(key string) (string, bool) {
	if flag, ok := FlagFor(key); ok {
		return flag, true
	}
	if isFlagKey(key) {
		return key, true
	}
	return "", false
}

func snapshotValues(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// formatValue renders a canonical value in its persisted string form.
func formatValue(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// parseValue parses a persisted string into the canonical type of def.
// Counts parse through float first, so "3.0" loads as 3.
func parseValue(def any, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch def.(type) {
	case bool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true, nil
		default:
			return false, nil
		}
	case int:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return int(f), nil
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported setting type %T", def)
}

// coerceValue converts a caller-supplied value to the canonical type of
// def, accepting the numeric kinds and strings.
func coerceValue(def, value any) (any, error) {
	switch def.(type) {
	case bool:
		switch x := value.(type) {
		case bool:
			return x, nil
		case string:
			return parseValue(def, x)
		case int:
			return x != 0, nil
		case float64:
			return x != 0, nil
		}
	case int:
		switch x := value.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			return int(x), nil
		case string:
			return parseValue(def, x)
		}
	case float64:
		switch x := value.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			return parseValue(def, x)
		}
	}
	return nil, fmt.Errorf("cannot coerce %T", value)
}

// clampValue clamps numeric values to the key's metadata range. Keys
// without metadata (the flags) pass through.
func clampValue(key string, v any) any {
	meta, ok := MetadataFor(key)
	if !ok {
		return v
	}
	switch x := v.(type) {
	case int:
		if x < int(meta.Min) {
			return int(meta.Min)
		}
		if x > int(meta.Max) {
			return int(meta.Max)
		}
		return x
	case float64:
		return math.Min(math.Max(x, meta.Min), meta.Max)
	}
	return v
}
