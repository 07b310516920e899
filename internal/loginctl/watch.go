// Package loginctl follows logind so a user's running Pomodoro can pause when
// their screen locks.
package loginctl

import (
	"context"
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
)

// LockHandler is told when a user's session locks.
type LockHandler interface {
	PauseActive(ctx context.Context, user string) (bool, error)
}

// userResolver maps a logind session path to its username.
type userResolver func(sessionPath dbus.ObjectPath) (string, error)

// Watch pauses the locking user's session through h until ctx is done.
func Watch(ctx context.Context, h LockHandler) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	// watch for property changes (session locked)
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, "org.freedesktop.login1.Session"),
	); err != nil {
		return fmt.Errorf("add match for PropertiesChanged failed: %w", err)
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)
	defer conn.RemoveSignal(c)

	resolve := func(path dbus.ObjectPath) (string, error) {
		return getUsernameFromSession(conn, path)
	}

	for {
		select {
		case sig := <-c:
			handleSignal(ctx, sig, resolve, h)
		case <-ctx.Done():
			return nil
		}
	}
}

// lockedUser returns the user whose session just locked, or "" when sig is
// anything else.
func lockedUser(sig *dbus.Signal, resolve userResolver) (string, error) {
	if sig == nil || sig.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" || len(sig.Body) < 3 {
		return "", nil
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != "org.freedesktop.login1.Session" {
		return "", nil
	}
	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return "", nil
	}
	val, exists := changedProps["LockedHint"]
	if !exists {
		return "", nil
	}
	if locked, _ := val.Value().(bool); !locked {
		return "", nil
	}
	// Get the session path from the signal's Path field
	return resolve(sig.Path)
}

func handleSignal(ctx context.Context, sig *dbus.Signal, resolve userResolver, h LockHandler) {
	username, err := lockedUser(sig, resolve)
	if err != nil {
		log.Println("LockedHint: failed to get username:", err)
		return
	}
	if username == "" {
		return
	}
	paused, err := h.PauseActive(ctx, username)
	if err != nil {
		log.Printf("Failed to pause session for %s on lock: %v", username, err)
		return
	}
	if paused {
		log.Printf("Screen locked for %s, paused running session", username)
	}
}

func getUsernameFromSession(conn *dbus.Conn, sessionPath dbus.ObjectPath) (string, error) {
	sessionObj := conn.Object("org.freedesktop.login1", sessionPath)

	var userInfo []interface{}
	err := sessionObj.Call("org.freedesktop.DBus.Properties.Get", 0,
		"org.freedesktop.login1.Session", "User").Store(&userInfo)
	if err != nil || len(userInfo) < 2 {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}
	userPath, ok := userInfo[1].(dbus.ObjectPath)
	if !ok {
		return "", fmt.Errorf("failed to get user object path")
	}
	userObj := conn.Object("org.freedesktop.login1", userPath)
	var username dbus.Variant
	err = userObj.Call("org.freedesktop.DBus.Properties.Get", 0,
		"org.freedesktop.login1.User", "Name").Store(&username)
	if err != nil {
		return "", fmt.Errorf("failed to get username: %w", err)
	}
	name, ok := username.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected type for user name")
	}
	return name, nil
}
