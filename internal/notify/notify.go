// Package notify delivers the local break cue: a terminal bell and a
// freedesktop desktop notification.
package notify

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Bell rings the terminal bell on W.
type Bell struct {
	W io.Writer
}

func (b Bell) Notify(summary, body string) error {
	_, err := fmt.Fprint(b.W, "\a")
	return err
}

// Caller is the part of a bus object Desktop needs.
type Caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Desktop posts notifications through org.freedesktop.Notifications.
type Desktop struct {
	AppName string
	obj     Caller
	conn    *dbus.Conn

	mu     sync.Mutex
	lastID uint32
}

// NewDesktop connects to the user's session bus.
func NewDesktop(appName string) (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	d := NewDesktopWith(appName, conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications"))
	d.conn = conn
	return d, nil
}

// NewDesktopWith uses obj as the notification service.
func NewDesktopWith(appName string, obj Caller) *Desktop {
	return &Desktop{AppName: appName, obj: obj}
}

// Notify replaces the previous notification from this Desktop, if any.
func (d *Desktop) Notify(summary, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	call := d.obj.Call("org.freedesktop.Notifications.Notify", 0,
		d.AppName,        // app_name
		d.lastID,         // replaces_id
		"alarm-symbolic", // app_icon
		summary,          // summary
		body,             // body
		[]string{},       // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(1)),
		},
		int32(10000), // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err == nil {
		d.lastID = id
	}
	return nil
}

func (d *Desktop) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// Multi fans a cue out to every notifier and joins their errors.
type Multi []interface {
	Notify(summary, body string) error
}

func (m Multi) Notify(summary, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(summary, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
