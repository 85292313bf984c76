// Package ui provides the desktop and terminal front ends of EVPN Assistant.
// This file contains the notification system for connection events.
package ui

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/vpn"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a system notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case NotificationWarning:
		return "dialog-warning"
	case NotificationError:
		return "dialog-error"
	default:
		return "network-vpn"
	}
}

// urgency uses the freedesktop levels: 0 low, 1 normal, 2 critical.
func (n Notification) urgency() byte {
	switch n.Type {
	case NotificationError:
		return 2
	case NotificationWarning:
		return 1
	default:
		return 0
	}
}

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod    = notifyService + ".Notify"
	notifyTimeoutMs = int32(5000)
)

// notifyBackend delivers one notification.
type notifyBackend func(appName string, n Notification) error

// DesktopNotifier sends notifications over the session bus, falling back to
// notify-send when no bus is reachable.
type DesktopNotifier struct {
	appName  string
	logger   common.Logger
	backends []notifyBackend

	mu   sync.Mutex
	conn *dbus.Conn
}

// NewDesktopNotifier creates a notifier labelled with the application name.
func NewDesktopNotifier(logger common.Logger) *DesktopNotifier {
	if logger == nil {
		logger = common.NopLogger{}
	}
	d := &DesktopNotifier{
		appName: common.AppName,
		logger:  logger,
	}
	d.backends = []notifyBackend{d.notifyDBus, notifySend}
	return d
}

// Show displays n with the first backend that accepts it.
func (d *DesktopNotifier) Show(n Notification) error {
	var errs []error
	for _, send := range d.backends {
		err := send(d.appName, n)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	err := fmt.Errorf("%w: %w", common.ErrNotifierUnavailable, errors.Join(errs...))
	d.logger.Warn("Error showing notification: %v", err)
	return err
}

// Notify implements common.Notifier.
func (d *DesktopNotifier) Notify(title, message string) error {
	return d.Show(Notification{Title: title, Message: message})
}

// NotifyWithIcon implements common.Notifier.
func (d *DesktopNotifier) NotifyWithIcon(title, message, icon string) error {
	return d.Show(Notification{Title: title, Message: message, Icon: icon})
}

// Close releases the session bus connection, if one was opened.
func (d *DesktopNotifier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

func (d *DesktopNotifier) bus() (*dbus.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil && d.conn.Connected() {
		return d.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	d.conn = conn
	return conn, nil
}

func (d *DesktopNotifier) notifyDBus(appName string, n Notification) error {
	conn, err := d.bus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.urgency()),
	}

	call := conn.Object(notifyService, notifyPath).Call(notifyMethod, 0,
		appName, uint32(0), n.icon(), n.Title, n.Message, []string{}, hints, notifyTimeoutMs)
	if call.Err != nil {
		return fmt.Errorf("%s: %w", notifyMethod, call.Err)
	}
	return nil
}

func notifySend(appName string, n Notification) error {
	urgency := [...]string{"low", "normal", "critical"}[n.urgency()]
	cmd := exec.Command("notify-send",
		"--app-name="+appName,
		"--icon="+n.icon(),
		"--urgency="+urgency,
		n.Title,
		n.Message,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

// TransitionNotification returns the notification for moving from prev to
// next. Only arrivals in Connected, Not connected or Disconnected are
// announced, and nothing is announced when prev is Unknown.
func TransitionNotification(prev, next vpn.ConnectionState) (Notification, bool) {
	if prev == next || prev == vpn.StateUnknown {
		return Notification{}, false
	}

	switch next {
	case vpn.StateConnected:
		return Notification{
			Title:   "VPN Connected",
			Message: "ExpressVPN is connected",
			Type:    NotificationSuccess,
			Icon:    "network-vpn",
		}, true
	case vpn.StateNotConnected, vpn.StateDisconnected:
		return Notification{
			Title:   "VPN Disconnected",
			Message: "ExpressVPN is " + strings.ToLower(next.String()),
			Type:    NotificationInfo,
			Icon:    "network-vpn-disconnected",
		}, true
	}

	return Notification{}, false
}
