// Package ipc exposes the timer store and its collaborators on D-Bus.
package ipc

import (
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/TimerWarden/internal/category"
	"github.com/SoarinFerret/TimerWarden/internal/state"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const (
	ObjectPath    = "/io/github/soarinferret/timerwarden"
	InterfaceName = "io.github.soarinferret.timerwarden.Manager"
	ServiceName   = "io.github.soarinferret.timerwarden"
)

// Error names returned to callers.
const (
	ErrorInvalidInput = InterfaceName + ".InvalidInput"
	ErrorNotFound     = InterfaceName + ".NotFound"
	ErrorInUse        = InterfaceName + ".InUse"
)

// Status is the GetStatus reply.
type Status struct {
	Mode    string        `json:"mode"`
	Timers  state.Summary `json:"timers"`
	Running []string      `json:"running"`
}

func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	name := "org.freedesktop.DBus.Error.Failed"
	switch {
	case errors.Is(err, timer.ErrInvalid),
		errors.Is(err, category.ErrEmpty),
		errors.Is(err, category.ErrExists):
		name = ErrorInvalidInput
	case errors.Is(err, state.ErrNotFound),
		errors.Is(err, category.ErrNotFound):
		name = ErrorNotFound
	case errors.Is(err, category.ErrInUse):
		name = ErrorInUse
	}
	return dbus.NewError(name, []interface{}{err.Error()})
}

// Message returns the text carried by a D-Bus error reply.
func Message(err error) string {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && len(dbusErr.Body) > 0 {
		if msg, ok := dbusErr.Body[0].(string); ok {
			return msg
		}
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) && len(dbusErrPtr.Body) > 0 {
		if msg, ok := dbusErrPtr.Body[0].(string); ok {
			return msg
		}
	}
	return err.Error()
}
