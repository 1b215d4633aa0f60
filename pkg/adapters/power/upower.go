package power

import (
	"context"
	"fmt"
	"math"

	"github.com/godbus/dbus/v5"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

const (
	upowerDest     = "org.freedesktop.UPower"
	upowerPath     = dbus.ObjectPath("/org/freedesktop/UPower")
	upowerIface    = "org.freedesktop.UPower"
	deviceIface    = "org.freedesktop.UPower.Device"
	propertiesGet  = "org.freedesktop.DBus.Properties.Get"
	displayDevice  = "org.freedesktop.UPower.GetDisplayDevice"
	propertiesSig  = "PropertiesChanged"
	propertiesFace = "org.freedesktop.DBus.Properties"
)

// Battery states as reported by UPower's Device.State property.
const (
	batteryCharging      uint32 = 1
	batteryFullyCharged  uint32 = 4
	batteryPendingCharge uint32 = 5
)

// UPower reads the display device exposed by the UPower daemon on the
// system bus and forwards its property-change signals.
type UPower struct {
	conn    *dbus.Conn
	root    dbus.BusObject
	device  dbus.BusObject
	signals chan *dbus.Signal
	changes chan struct{}
}

// ConnectUPower opens the system bus, resolves the composite display
// device, and subscribes to its property changes.
func ConnectUPower(ctx context.Context) (Provider, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	root := conn.Object(upowerDest, upowerPath)
	var devicePath dbus.ObjectPath
	if err := root.CallWithContext(ctx, displayDevice, 0).Store(&devicePath); err != nil {
		conn.Close()
		return nil, fmt.Errorf("resolve display device: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(devicePath),
		dbus.WithMatchInterface(propertiesFace),
		dbus.WithMatchMember(propertiesSig),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("match property signals: %w", err)
	}

	u := &UPower{
		conn:    conn,
		root:    root,
		device:  conn.Object(upowerDest, devicePath),
		signals: make(chan *dbus.Signal, 16),
		changes: make(chan struct{}, 1),
	}
	conn.Signal(u.signals)
	go u.forward()
	return u, nil
}

// forward coalesces raw bus signals into change ticks. The signal channel
// is closed by the bus connection on shutdown, which in turn closes the
// change channel so the adapter notices.
func (u *UPower) forward() {
	for range u.signals {
		select {
		case u.changes <- struct{}{}:
		default:
		}
	}
	close(u.changes)
}

// Read queries the device properties and maps them to a reading.
func (u *UPower) Read(ctx context.Context) (event.PowerChanged, error) {
	var percent float64
	if err := u.prop(ctx, u.device, deviceIface, "Percentage", &percent); err != nil {
		return event.PowerChanged{}, err
	}
	var state uint32
	if err := u.prop(ctx, u.device, deviceIface, "State", &state); err != nil {
		return event.PowerChanged{}, err
	}
	var present bool
	if err := u.prop(ctx, u.device, deviceIface, "IsPresent", &present); err != nil {
		return event.PowerChanged{}, err
	}
	var onBattery bool
	if err := u.prop(ctx, u.root, upowerIface, "OnBattery", &onBattery); err != nil {
		return event.PowerChanged{}, err
	}

	charging := state == batteryCharging || state == batteryFullyCharged || state == batteryPendingCharge
	return event.PowerChanged{
		Percent:  int(math.Round(percent)),
		Charging: charging,
		OnAC:     !onBattery,
		Present:  present,
	}, nil
}

// Changes ticks on device property-change signals.
func (u *UPower) Changes() <-chan struct{} { return u.changes }

// Close tears down the bus connection; pending reads fail and the change
// stream ends.
func (u *UPower) Close() error { return u.conn.Close() }

func (u *UPower) prop(ctx context.Context, obj dbus.BusObject, iface, name string, out any) error {
	var v dbus.Variant
	if err := obj.CallWithContext(ctx, propertiesGet, 0, iface, name).Store(&v); err != nil {
		return fmt.Errorf("get %s.%s: %w", iface, name, err)
	}
	if err := v.Store(out); err != nil {
		return fmt.Errorf("decode %s.%s: %w", iface, name, err)
	}
	return nil
}
