// Package dbusiface exposes the notification core on the session bus as
// org.freedesktop.Notifications. It owns the bus connection, decodes the
// protocol's loosely-typed inputs into core types, and relays outbound
// signals from the core back onto the bus.
package dbusiface

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"golang.org/x/time/rate"

	"notifyd/internal/freedesktop"
	"notifyd/internal/markup"
	"notifyd/internal/notification"
	"notifyd/internal/relay"
	"notifyd/pkg/logx"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	ifaceName  = "org.freedesktop.Notifications"

	serverName      = "notifyd"
	serverVendor    = "notifyd"
	serverVersion   = "0.1.0"
	protocolVersion = "1.2"
)

// callTimeout bounds how long a bus method waits on the core before giving
// up; the core only stalls like that during shutdown.
const callTimeout = 5 * time.Second

var capabilities = []string{"actions", "body", "body-images", "body-markup", "persistence"}

// Core is the slice of the serialization actor the adapter talks to.
type Core interface {
	Notify(ctx context.Context, n *notification.Notification, replacesID uint32) (uint32, error)
	Close(ctx context.Context, id uint32) error
}

// Options are the tunables the adapter re-reads on every call, so a config
// reload takes effect without reconnecting to the bus.
type Options struct {
	// DefaultIcon is the theme icon name used when every other icon
	// candidate fails to resolve.
	DefaultIcon string
	// DefaultTimeout backs the protocol's -1 "server decides" expiry.
	DefaultTimeout time.Duration
}

type Adapter struct {
	log    logx.Logger
	core   Core
	relay  *relay.Relay
	icons  *freedesktop.IconResolver
	parser markup.Parser

	// clientWarn throttles warnings triggered by malformed client input, so
	// a misbehaving app cannot flood the log.
	clientWarn *rate.Limiter

	mu   sync.RWMutex
	opts Options

	conn     *dbus.Conn
	emitDone chan struct{}
}

func New(log logx.Logger, core Core, r *relay.Relay, icons *freedesktop.IconResolver, opts Options) *Adapter {
	return &Adapter{
		log:        log,
		core:       core,
		relay:      r,
		icons:      icons,
		parser:     markup.Parser{Log: log},
		clientWarn: rate.NewLimiter(rate.Every(time.Second), 5),
		opts:       opts,
	}
}

// SetOptions swaps the runtime tunables. Safe to call while serving.
func (a *Adapter) SetOptions(opts Options) {
	a.mu.Lock()
	a.opts = opts
	a.mu.Unlock()
}

func (a *Adapter) options() Options {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.opts
}

// Start connects to the session bus, exports the notification object and
// claims the well-known name. It fails if another notification server
// already owns the name.
func (a *Adapter) Start(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}

	h := &handler{a: a}
	if err := conn.Export(h, objectPath, ifaceName); err != nil {
		_ = conn.Close()
		return fmt.Errorf("export %s: %w", ifaceName, err)
	}
	if err := conn.Export(introspect.NewIntrospectable(introspectNode()), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		_ = conn.Close()
		return fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("request name %s: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return fmt.Errorf("name %s is already owned, is another notification server running?", busName)
	}

	a.mu.Lock()
	a.conn = conn
	a.emitDone = make(chan struct{})
	a.mu.Unlock()

	go a.emit(conn, a.emitDone)

	a.log.Info("serving notifications",
		logx.String("name", busName),
		logx.String("path", string(objectPath)))
	return nil
}

// Stop releases the bus name and closes the connection. The relay must be
// closed first so the emitter goroutine can drain and exit.
func (a *Adapter) Stop(ctx context.Context) {
	a.mu.Lock()
	conn := a.conn
	done := a.emitDone
	a.conn = nil
	a.emitDone = nil
	a.mu.Unlock()

	if conn == nil {
		return
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	if _, err := conn.ReleaseName(busName); err != nil {
		a.log.Warn("release bus name", logx.Err(err))
	}
	_ = conn.Close()
}

// emit drains the relay and turns its events into bus signals. A failed
// emission kills the emitter; the bus connection is gone at that point and
// the daemon shutdown path will notice.
func (a *Adapter) emit(conn *dbus.Conn, done chan struct{}) {
	defer close(done)
	for ev := range a.relay.Events() {
		var err error
		switch ev.Kind {
		case relay.KindClosed:
			err = conn.Emit(objectPath, ifaceName+".NotificationClosed", ev.ID, uint32(ev.Reason))
		case relay.KindAction:
			err = conn.Emit(objectPath, ifaceName+".ActionInvoked", ev.ID, ev.Key)
		}
		if err != nil {
			a.log.Error("stopping signal emitter", logx.Err(err))
			return
		}
	}
}

// handler carries only the bus-visible methods so nothing else on Adapter
// leaks onto the exported object.
type handler struct {
	a *Adapter
}

func (h *handler) GetCapabilities() ([]string, *dbus.Error) {
	caps := make([]string, len(capabilities))
	copy(caps, capabilities)
	return caps, nil
}

func (h *handler) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return serverName, serverVendor, serverVersion, protocolVersion, nil
}

func (h *handler) Notify(appName string, replacesID uint32, appIcon, summary, body string, actions []string, hints map[string]dbus.Variant, expireTimeout int32) (uint32, *dbus.Error) {
	a := h.a
	opts := a.options()
	hs := a.decodeHints(hints)

	now := time.Now()
	n := &notification.Notification{
		CreatedAt:   now,
		Urgency:     hs.urgency,
		DisplayName: a.displayName(appName, hs),
		Icon:        a.resolveIcon(appIcon, hs, opts),
		Summary:     summary,
		Body:        a.parser.Parse(body),
		Actions:     a.pairActions(appName, actions),
	}
	n.ExpireAt = notification.ExpireTime(now, expireTimeout, n.Urgency, opts.DefaultTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	id, err := a.core.Notify(ctx, n, replacesID)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}

	a.log.Info("notification received",
		logx.Uint32("id", id),
		logx.String("app", n.DisplayName),
		logx.String("summary", summary),
		logx.String("urgency", n.Urgency.String()))
	return id, nil
}

func (h *handler) CloseNotification(id uint32) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := h.a.core.Close(ctx, id); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// displayName prefers the human name from the app's desktop file over the
// raw app_name argument.
func (a *Adapter) displayName(appName string, hs hintSet) string {
	if hs.desktopEntry != "" {
		if name, ok := freedesktop.AppName(hs.desktopEntry); ok {
			return name
		}
	}
	if appName != "" {
		return appName
	}
	return "Unknown application"
}

// resolveIcon walks the protocol's icon precedence chain. Every candidate
// that fails to produce a usable file path falls through to the next one.
func (a *Adapter) resolveIcon(appIcon string, hs hintSet, opts Options) string {
	if hs.imageData != nil {
		if path, ok := freedesktop.TempImage(*hs.imageData); ok {
			return path
		}
	}
	if hs.imagePath != "" {
		if path, ok := a.icons.Resolve(hs.imagePath); ok {
			return path
		}
	}
	if appIcon != "" {
		if path, ok := a.icons.Resolve(appIcon); ok {
			return path
		}
	}
	if hs.iconData != nil {
		if path, ok := freedesktop.TempImage(*hs.iconData); ok {
			return path
		}
	}
	if opts.DefaultIcon != "" {
		if path, ok := a.icons.Resolve(opts.DefaultIcon); ok {
			return path
		}
	}
	return ""
}

// pairActions wraps notification.PairActions with a throttled warning for
// the odd-length case the protocol forbids.
func (a *Adapter) pairActions(appName string, list []string) []notification.Action {
	if len(list)%2 != 0 && a.clientWarn.Allow() {
		a.log.Warn("dropping trailing unpaired action element",
			logx.String("app", appName),
			logx.Int("len", len(list)))
	}
	return notification.PairActions(list)
}

func introspectNode() *introspect.Node {
	return &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: ifaceName,
				Methods: []introspect.Method{
					{Name: "GetCapabilities", Args: []introspect.Arg{
						{Name: "capabilities", Type: "as", Direction: "out"},
					}},
					{Name: "GetServerInformation", Args: []introspect.Arg{
						{Name: "name", Type: "s", Direction: "out"},
						{Name: "vendor", Type: "s", Direction: "out"},
						{Name: "version", Type: "s", Direction: "out"},
						{Name: "spec_version", Type: "s", Direction: "out"},
					}},
					{Name: "Notify", Args: []introspect.Arg{
						{Name: "app_name", Type: "s", Direction: "in"},
						{Name: "replaces_id", Type: "u", Direction: "in"},
						{Name: "app_icon", Type: "s", Direction: "in"},
						{Name: "summary", Type: "s", Direction: "in"},
						{Name: "body", Type: "s", Direction: "in"},
						{Name: "actions", Type: "as", Direction: "in"},
						{Name: "hints", Type: "a{sv}", Direction: "in"},
						{Name: "expire_timeout", Type: "i", Direction: "in"},
						{Name: "id", Type: "u", Direction: "out"},
					}},
					{Name: "CloseNotification", Args: []introspect.Arg{
						{Name: "id", Type: "u", Direction: "in"},
					}},
				},
				Signals: []introspect.Signal{
					{Name: "NotificationClosed", Args: []introspect.Arg{
						{Name: "id", Type: "u"},
						{Name: "reason", Type: "u"},
					}},
					{Name: "ActionInvoked", Args: []introspect.Arg{
						{Name: "id", Type: "u"},
						{Name: "action_key", Type: "s"},
					}},
				},
			},
		},
	}
}
