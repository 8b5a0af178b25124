package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/cadence"
)

// LogLevel represents the available logging levels
type LogLevel string

const (
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

// parseLogLevel converts a string to a LogLevel
func parseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}
}

// setupLogger creates and configures a slog logger based on log level
func setupLogger(level LogLevel) *slog.Logger {
	var slogLevel slog.Level

	switch level {
	case LogLevelError:
		slogLevel = slog.LevelError
	case LogLevelWarn:
		slogLevel = slog.LevelWarn
	case LogLevelInfo:
		slogLevel = slog.LevelInfo
	case LogLevelDebug:
		slogLevel = slog.LevelDebug
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// hookSignals bridges cadence's capitan signals into slog. The library never
// logs directly; this is the daemon's choice of sink.
func hookSignals(logger *slog.Logger) {
	capitan.Hook(cadence.PressStarted, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		count, _ := cadence.KeyBurstCount.From(e)
		interval, _ := cadence.KeyInterval.From(e)
		logger.Debug("press started", "action", action, "burst_count", count, "interval", interval)
	})

	capitan.Hook(cadence.PressEnded, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		elapsed, _ := cadence.KeyElapsed.From(e)
		triggers, _ := cadence.KeyTriggerCount.From(e)
		logger.Debug("press ended", "action", action, "held", elapsed, "triggers", triggers)
	})

	capitan.Hook(cadence.ModeChanged, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		oldMode, _ := cadence.KeyOldMode.From(e)
		newMode, _ := cadence.KeyNewMode.From(e)
		logger.Debug("mode changed", "action", action, "from", oldMode, "to", newMode)
	})

	capitan.Hook(cadence.TriggerFired, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		mode, _ := cadence.KeyMode.From(e)
		count, _ := cadence.KeyTriggerCount.From(e)
		logger.Debug("trigger fired", "action", action, "mode", mode, "count", count)
	})

	capitan.Hook(cadence.PressForceStopped, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		reason, _ := cadence.KeyReason.From(e)
		logger.Warn("press force-stopped", "action", action, "reason", reason)
	})

	capitan.Hook(cadence.StalePressRecovered, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		logger.Warn("stale press recovered", "action", action)
	})

	capitan.Hook(cadence.ActionFailed, func(_ context.Context, e *capitan.Event) {
		action, _ := cadence.KeyAction.From(e)
		errMsg, _ := cadence.KeyError.From(e)
		logger.Error("host action failed", "action", action, "error", errMsg)
	})

	capitan.Hook(cadence.SettingChanged, func(_ context.Context, e *capitan.Event) {
		key, _ := cadence.KeySetting.From(e)
		value, _ := cadence.KeyValue.From(e)
		logger.Info("setting changed", "key", key, "value", value)
	})

	capitan.Hook(cadence.SettingsSaved, func(_ context.Context, _ *capitan.Event) {
		logger.Info("settings saved")
	})

	capitan.Hook(cadence.SettingsReloaded, func(_ context.Context, _ *capitan.Event) {
		logger.Info("settings reloaded")
	})

	capitan.Hook(cadence.ConfigInvalid, func(_ context.Context, e *capitan.Event) {
		errMsg, _ := cadence.KeyError.From(e)
		logger.Warn("config snapshot rejected", "error", errMsg)
	})
}
