package ipc

import (
	"errors"
	"fmt"
	"math"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/FocusWarden/internal/session"
)

const (
	ObjectPath    = "/io/github/soarinferret/focuswarden"
	InterfaceName = "io.github.soarinferret.focuswarden.Manager"
	ServiceName   = "io.github.soarinferret.focuswarden"
	ErrorPrefix   = ServiceName + ".Error."
)

// NoDuration stands in for an absent actualDuration; D-Bus has no optional
// arguments.
const NoDuration int32 = -1

var errorNames = []struct {
	name string
	err  error
}{
	{"NotAuthenticated", session.ErrNotAuthenticated},
	{"Validation", session.ErrValidation},
	{"AccessDenied", session.ErrAccessDenied},
	{"NotFound", session.ErrNotFound},
	{"Unsupported", session.ErrUnsupported},
	{"StrategyMismatch", session.ErrStrategyMismatch},
}

// toDBusError converts a service error into a named D-Bus error.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	for _, e := range errorNames {
		if errors.Is(err, e.err) {
			return dbus.NewError(ErrorPrefix+e.name, []interface{}{err.Error()})
		}
	}
	return dbus.MakeFailedError(err)
}

// fromDBusError maps a named D-Bus error back onto the session error set.
func fromDBusError(err error) error {
	if err == nil {
		return nil
	}
	var name, msg string
	var de dbus.Error
	var dep *dbus.Error
	switch {
	case errors.As(err, &de):
		name, msg = de.Name, de.Error()
	case errors.As(err, &dep):
		name, msg = dep.Name, dep.Error()
	default:
		return err
	}
	for _, e := range errorNames {
		if name == ErrorPrefix+e.name {
			if e.err == session.ErrUnsupported {
				return session.UnsupportedMessage(msg)
			}
			return fmt.Errorf("%s: %w", msg, e.err)
		}
	}
	return err
}

// durationArg encodes an optional minute count. Negative values are rejected
// here because -1 already means absent on the wire.
func durationArg(actual *int) (int32, error) {
	if actual == nil {
		return NoDuration, nil
	}
	return minutesArg("actualDuration", *actual)
}

func minutesArg(field string, v int) (int32, error) {
	if v < 0 {
		return 0, session.NewValidationError(field, "must not be negative")
	}
	if v > math.MaxInt32 {
		return 0, session.NewValidationError(field, "out of range")
	}
	return int32(v), nil
}

func durationFromArg(v int32) *int {
	if v == NoDuration {
		return nil
	}
	d := int(v)
	return &d
}
