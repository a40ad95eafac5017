// Package loginctl maps systemd-logind signals onto engine mode changes.
package loginctl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/TimerWarden/internal/engine"
)

const (
	sleepSignal      = "org.freedesktop.login1.Manager.PrepareForSleep"
	propertiesSignal = "org.freedesktop.DBus.Properties.PropertiesChanged"
	sessionInterface = "org.freedesktop.login1.Session"
)

// ModeSetter is implemented by *engine.Engine.
type ModeSetter interface {
	SetMode(ctx context.Context, m engine.Mode) error
}

// ModeFor translates a logind signal into the mode it implies. Going to
// sleep or locking the session hands timers to the background driver;
// waking or unlocking brings them back.
func ModeFor(sig *dbus.Signal) (engine.Mode, bool) {
	switch sig.Name {
	case sleepSignal:
		if len(sig.Body) == 0 {
			return "", false
		}
		sleeping, ok := sig.Body[0].(bool)
		if !ok {
			return "", false
		}
		return modeOf(sleeping), true

	case propertiesSignal:
		if len(sig.Body) < 2 {
			return "", false
		}
		if iface, ok := sig.Body[0].(string); !ok || iface != sessionInterface {
			return "", false
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return "", false
		}
		val, exists := changed["LockedHint"]
		if !exists {
			return "", false
		}
		locked, ok := val.Value().(bool)
		if !ok {
			return "", false
		}
		return modeOf(locked), true
	}
	return "", false
}

func modeOf(away bool) engine.Mode {
	if away {
		return engine.ModeBackground
	}
	return engine.ModeForeground
}

// Watch follows sleep and lock signals on the system bus until ctx is done.
func Watch(ctx context.Context, setter ModeSetter, log *slog.Logger) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath("/org/freedesktop/login1"),
		dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		return fmt.Errorf("add match failed: %w", err)
	}
	// session lock state
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return fmt.Errorf("add match for PropertiesChanged failed: %w", err)
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)
	return follow(ctx, c, setter, log)
}

func follow(ctx context.Context, c <-chan *dbus.Signal, setter ModeSetter, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	for {
		select {
		case sig, ok := <-c:
			if !ok {
				return nil
			}
			mode, ok := ModeFor(sig)
			if !ok {
				break
			}
			log.Info("session state changed", "signal", sig.Name, "mode", mode)
			if err := setter.SetMode(ctx, mode); err != nil {
				log.Error("failed to switch mode", "mode", mode, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
