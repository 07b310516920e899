package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/user"
	"strconv"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/FocusWarden/internal/service"
)

// Identify resolves the user behind a bus sender.
type Identify func(sender dbus.Sender) (string, error)

// SessionManager is the object exported on the bus. Every method acts for
// the Unix user owning the calling connection and returns JSON.
type SessionManager struct {
	Sessions *service.Service
	Identify Identify
}

// BusIdentity asks the bus daemon for the caller's UID and maps it to a
// username.
func BusIdentity(conn *dbus.Conn) Identify {
	return func(sender dbus.Sender) (string, error) {
		var uid uint32
		err := conn.BusObject().Call("org.freedesktop.DBus.GetConnectionUnixUser", 0, string(sender)).Store(&uid)
		if err != nil {
			return "", fmt.Errorf("get caller uid: %w", err)
		}
		u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
		if err != nil {
			return "", fmt.Errorf("lookup uid %d: %w", uid, err)
		}
		return u.Username, nil
	}
}

func (s *SessionManager) caller(sender dbus.Sender) string {
	if s.Identify == nil {
		return ""
	}
	name, err := s.Identify(sender)
	if err != nil {
		log.Printf("Failed to identify caller %s: %v", sender, err)
		return ""
	}
	return name
}

func reply(v any, err error) (string, *dbus.Error) {
	if err != nil {
		return "", toDBusError(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

func (s *SessionManager) GetStatus() (string, *dbus.Error) {
	return "Service is running", nil
}

// Check returns the caller's username.
func (s *SessionManager) Check(sender dbus.Sender) (string, *dbus.Error) {
	name := s.caller(sender)
	if err := s.Sessions.Check(context.Background(), name); err != nil {
		return "", toDBusError(err)
	}
	return name, nil
}

func (s *SessionManager) Start(sender dbus.Sender, request string) (string, *dbus.Error) {
	var req service.StartRequest
	if err := json.Unmarshal([]byte(request), &req); err != nil {
		return "", dbus.NewError(ErrorPrefix+"Validation", []interface{}{"invalid start request: " + err.Error()})
	}
	return reply(s.Sessions.Start(context.Background(), s.caller(sender), req))
}

func (s *SessionManager) Pause(sender dbus.Sender, id string) (string, *dbus.Error) {
	return reply(s.Sessions.Pause(context.Background(), s.caller(sender), id))
}

func (s *SessionManager) Resume(sender dbus.Sender, id string) (string, *dbus.Error) {
	return reply(s.Sessions.Resume(context.Background(), s.caller(sender), id))
}

// End takes NoDuration when the caller has no measurement.
func (s *SessionManager) End(sender dbus.Sender, id string, actual int32) (string, *dbus.Error) {
	return reply(s.Sessions.End(context.Background(), s.caller(sender), id, durationFromArg(actual)))
}

func (s *SessionManager) Interrupt(sender dbus.Sender, id string, actual int32) (string, *dbus.Error) {
	return reply(s.Sessions.Interrupt(context.Background(), s.caller(sender), id, durationFromArg(actual)))
}

func (s *SessionManager) Continue(sender dbus.Sender, id string) (string, *dbus.Error) {
	return reply(s.Sessions.Continue(context.Background(), s.caller(sender), id))
}

func (s *SessionManager) Get(sender dbus.Sender, id string) (string, *dbus.Error) {
	return reply(s.Sessions.Get(context.Background(), s.caller(sender), id))
}

func (s *SessionManager) Active(sender dbus.Sender) (string, *dbus.Error) {
	return reply(s.Sessions.Active(context.Background(), s.caller(sender)))
}

func (s *SessionManager) Today(sender dbus.Sender) (string, *dbus.Error) {
	return reply(s.Sessions.Today(context.Background(), s.caller(sender)))
}

func (s *SessionManager) RecordBreak(sender dbus.Sender, id string, minutes int32) (string, *dbus.Error) {
	return reply(s.Sessions.RecordBreak(context.Background(), s.caller(sender), id, int(minutes)))
}

// Serve claims the service name on conn and exports m until ctx is done.
func Serve(ctx context.Context, conn *dbus.Conn, m *SessionManager) error {
	owner, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name: %w", err)
	}
	if owner != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken", ServiceName)
	}

	if err := conn.Export(m, dbus.ObjectPath(ObjectPath), InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}

	<-ctx.Done()
	conn.Export(nil, dbus.ObjectPath(ObjectPath), InterfaceName)
	conn.ReleaseName(ServiceName)
	return nil
}
