package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/service"
)

// Client calls the daemon's exported object. Errors come back as the
// session error set.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect opens the bus named by config (system or session).
func Connect(bus string) (*dbus.Conn, error) {
	switch bus {
	case config.BusSession:
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to session bus: %w", err)
		}
		return conn, nil
	case config.BusSystem, "":
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to system bus: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unknown bus %q", bus)
	}
}

// Dial connects to bus and returns a client for the daemon on it.
func Dial(bus string) (*Client, error) {
	conn, err := Connect(bus)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

func NewClient(conn *dbus.Conn) *Client {
	return &Client{conn: conn, obj: conn.Object(ServiceName, dbus.ObjectPath(ObjectPath))}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, out any, args ...interface{}) error {
	var raw string
	err := c.obj.CallWithContext(ctx, InterfaceName+"."+method, 0, args...).Store(&raw)
	if err != nil {
		return fromDBusError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	return nil
}

func (c *Client) snapshot(ctx context.Context, method string, args ...interface{}) (service.Snapshot, error) {
	var snap service.Snapshot
	err := c.call(ctx, method, &snap, args...)
	return snap, err
}

// Status reports whether the daemon answers on the bus. It needs no identity.
func (c *Client) Status(ctx context.Context) (string, error) {
	var status string
	err := c.obj.CallWithContext(ctx, InterfaceName+".GetStatus", 0).Store(&status)
	if err != nil {
		return "", fromDBusError(err)
	}
	return status, nil
}

// Check returns the username the daemon sees for this connection.
func (c *Client) Check(ctx context.Context) (string, error) {
	var name string
	err := c.obj.CallWithContext(ctx, InterfaceName+".Check", 0).Store(&name)
	return name, fromDBusError(err)
}

func (c *Client) Start(ctx context.Context, req service.StartRequest) (service.Snapshot, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return service.Snapshot{}, err
	}
	return c.snapshot(ctx, "Start", string(data))
}

func (c *Client) Pause(ctx context.Context, id string) (service.Snapshot, error) {
	return c.snapshot(ctx, "Pause", id)
}

func (c *Client) Resume(ctx context.Context, id string) (service.Snapshot, error) {
	return c.snapshot(ctx, "Resume", id)
}

func (c *Client) End(ctx context.Context, id string, actual *int) (service.Snapshot, error) {
	arg, err := durationArg(actual)
	if err != nil {
		return service.Snapshot{}, err
	}
	return c.snapshot(ctx, "End", id, arg)
}

func (c *Client) Interrupt(ctx context.Context, id string, actual *int) (service.Snapshot, error) {
	arg, err := durationArg(actual)
	if err != nil {
		return service.Snapshot{}, err
	}
	return c.snapshot(ctx, "Interrupt", id, arg)
}

func (c *Client) Continue(ctx context.Context, id string) (service.Snapshot, error) {
	return c.snapshot(ctx, "Continue", id)
}

func (c *Client) Get(ctx context.Context, id string) (service.Snapshot, error) {
	return c.snapshot(ctx, "Get", id)
}

func (c *Client) Active(ctx context.Context) (service.Snapshot, error) {
	return c.snapshot(ctx, "Active")
}

func (c *Client) Today(ctx context.Context) ([]service.Snapshot, error) {
	var list []service.Snapshot
	err := c.call(ctx, "Today", &list)
	return list, err
}

func (c *Client) RecordBreak(ctx context.Context, id string, minutes int) (service.Snapshot, error) {
	arg, err := minutesArg("breakTaken", minutes)
	if err != nil {
		return service.Snapshot{}, err
	}
	return c.snapshot(ctx, "RecordBreak", id, arg)
}
