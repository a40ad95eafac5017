package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = notificationsName + ".Notify"
)

// caller is the part of dbus.BusObject the sender needs.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DesktopSender shows notifications through org.freedesktop.Notifications.
// A key that is sent twice replaces the earlier bubble.
type DesktopSender struct {
	obj caller

	mu  sync.Mutex
	ids map[string]uint32
}

// NewDesktopSender talks to the notification daemon on conn, which must be
// a session bus connection.
func NewDesktopSender(conn *dbus.Conn) *DesktopSender {
	return newDesktopSender(conn.Object(notificationsName, notificationsPath))
}

func newDesktopSender(obj caller) *DesktopSender {
	return &DesktopSender{obj: obj, ids: make(map[string]uint32)}
}

func (d *DesktopSender) Send(ctx context.Context, n Notification) error {
	d.mu.Lock()
	replaces := d.ids[n.Key]
	d.mu.Unlock()

	call := d.obj.CallWithContext(ctx, notificationsNotify, 0,
		"TimerWarden",    // app_name
		replaces,         // replaces_id
		"alarm-symbolic", // app_icon
		n.Title,          // summary
		n.Body,           // body
		[]string{},       // actions
		map[string]dbus.Variant{ // hints
			"urgency": dbus.MakeVariant(byte(1)),
		},
		int32(-1), // expire_timeout, server default
	)
	if call.Err != nil {
		return fmt.Errorf("send desktop notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("read notification id: %w", err)
	}
	d.mu.Lock()
	d.ids[n.Key] = id
	d.mu.Unlock()
	return nil
}
