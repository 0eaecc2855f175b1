package engine

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// gousbTransport is the transport implementation backed by
// github.com/google/gousb. It owns the four logical transfer channels
// (audio-in, audio-out, midi-in, midi-out) as claimed interfaces'
// endpoints, opened once at construction and held for the session's
// lifetime.
type gousbTransport struct {
	ctx    *gousb.Context
	dev    *gousb.Device
	config *gousb.Config
	intfs  [3]*gousb.Interface

	audioIn   *gousb.InEndpoint
	audioOut  *gousb.OutEndpoint
	midiIn    *gousb.InEndpoint
	midiOut   *gousb.OutEndpoint
}

// newFromFileDescriptor resolves an already-open USB file descriptor's
// bus/address through /proc/self/fd and opens the device through the
// bus/address path. gousb has no equivalent of libusb_wrap_sys_device,
// so this is the closest faithful translation available (see
// SPEC_FULL's REDESIGN FLAGS).
func newFromFileDescriptor(fd int) (transport, error) {
	bus, address, err := resolveBusAddress(fd)
	if err != nil {
		return nil, newError(ErrCantFindDevice, err.Error())
	}
	return newFromBusAddress(bus, address)
}

// resolveBusAddress reads the /proc/self/fd/<fd> symlink of a raw USB
// device fd and parses the bus and device address from the final two
// components of the devnode path it points at, e.g.
// "/dev/bus/usb/003/014" for bus 3 device 14. A link whose last two
// components are not both decimal numbers is rejected with an error.
func resolveBusAddress(fd int) (bus, address int, err error) {
	link, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil {
		return 0, 0, fmt.Errorf("resolve fd %d: %w", fd, err)
	}
	parts := strings.Split(strings.Trim(link, "/"), "/")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unrecognized usb devnode path %q", link)
	}
	busStr, addrStr := parts[len(parts)-2], parts[len(parts)-1]
	bus, err = strconv.Atoi(busStr)
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized bus component %q in %q", busStr, link)
	}
	address, err = strconv.Atoi(addrStr)
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized address component %q in %q", addrStr, link)
	}
	return bus, address, nil
}

// newFromBusAddress enumerates attached devices and opens the one
// matching bus/address exactly.
func newFromBusAddress(bus, address int) (transport, error) {
	ctx := gousb.NewContext()

	var found *gousb.Device
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Bus == bus && desc.Address == address
	})
	if err != nil {
		ctx.Close()
		return nil, newError(ErrCantFindDevice, err.Error())
	}
	for _, d := range devices {
		if found == nil {
			found = d
		} else {
			d.Close() // keep only the first match, close the rest
		}
	}
	if found == nil {
		ctx.Close()
		return nil, newError(ErrCantFindDevice, fmt.Sprintf("no device at bus %d address %d", bus, address))
	}

	t, err := initGousbTransport(ctx, found)
	if err != nil {
		found.Close()
		ctx.Close()
		return nil, err
	}
	return t, nil
}

// initGousbTransport performs the fixed setup sequence SPEC_FULL §4.6
// requires: set configuration 1, claim interfaces {1,2,3} at alt
// settings {3,2,0}, clear halts on all four endpoints, then open the
// four endpoint handles. Any failure tears everything claimed so far
// back down and returns a tagged *Error; no partially-constructed
// transport escapes.
func initGousbTransport(ctx *gousb.Context, dev *gousb.Device) (_ *gousbTransport, err error) {
	dev.SetAutoDetach(true)

	config, err := dev.Config(usbConfiguration)
	if err != nil {
		return nil, newError(ErrCantSetUSBConfig, err.Error())
	}
	defer func() {
		if err != nil {
			config.Close()
		}
	}()

	t := &gousbTransport{ctx: ctx, dev: dev, config: config}
	for i, spec := range usbInterfaces {
		intf, ierr := config.Interface(spec.num, spec.alt)
		if ierr != nil {
			t.closeClaimedInterfaces(i)
			return nil, newError(ErrCantClaimInterface, ierr.Error())
		}
		t.intfs[i] = intf
	}

	for _, ep := range []int{epAudioIn, epAudioOut, epMIDIIn, epMIDIOut} {
		if cerr := dev.ClearHalt(uint8(ep)); cerr != nil {
			t.closeClaimedInterfaces(len(t.intfs))
			return nil, newError(ErrCantClearEndpoint, cerr.Error())
		}
	}

	audioInIntf := t.intfs[0]
	midiIntf := t.intfs[0]
	if t.audioIn, err = audioInIntf.InEndpoint(epAudioIn & 0x7f); err != nil {
		t.closeClaimedInterfaces(len(t.intfs))
		return nil, newError(ErrCantPrepareTransfer, err.Error())
	}
	if t.audioOut, err = audioInIntf.OutEndpoint(epAudioOut); err != nil {
		t.closeClaimedInterfaces(len(t.intfs))
		return nil, newError(ErrCantPrepareTransfer, err.Error())
	}
	if t.midiIn, err = midiIntf.InEndpoint(epMIDIIn & 0x7f); err != nil {
		t.closeClaimedInterfaces(len(t.intfs))
		return nil, newError(ErrCantPrepareTransfer, err.Error())
	}
	if t.midiOut, err = midiIntf.OutEndpoint(epMIDIOut); err != nil {
		t.closeClaimedInterfaces(len(t.intfs))
		return nil, newError(ErrCantPrepareTransfer, err.Error())
	}

	return t, nil
}

func (t *gousbTransport) closeClaimedInterfaces(n int) {
	for i := 0; i < n; i++ {
		if t.intfs[i] != nil {
			t.intfs[i].Close()
		}
	}
	t.config.Close()
}

func (t *gousbTransport) ReadAudioIn(ctx context.Context, buf []byte) (int, error) {
	return t.audioIn.ReadContext(ctx, buf)
}

func (t *gousbTransport) WriteAudioOut(ctx context.Context, buf []byte) error {
	_, err := t.audioOut.WriteContext(ctx, buf)
	return err
}

func (t *gousbTransport) ReadMIDIIn(ctx context.Context, buf []byte) (int, error) {
	return t.midiIn.ReadContext(ctx, buf)
}

func (t *gousbTransport) WriteMIDIOut(ctx context.Context, buf []byte) error {
	_, err := t.midiOut.WriteContext(ctx, buf)
	return err
}

func (t *gousbTransport) Close() error {
	for _, intf := range t.intfs {
		if intf != nil {
			intf.Close()
		}
	}
	if t.config != nil {
		t.config.Close()
	}
	if t.dev != nil {
		t.dev.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}
