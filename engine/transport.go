package engine

import "context"

// Endpoint addresses fixed by the device's descriptor.
const (
	epAudioIn  = 0x83
	epAudioOut = 0x03
	epMIDIIn   = 0x81
	epMIDIOut  = 0x01
)

// USB configuration and interface/alt-setting layout the device expects.
const (
	usbConfiguration = 1
)

var usbInterfaces = [3]struct{ num, alt int }{
	{1, 3},
	{2, 2},
	{3, 0},
}

// transport is the boundary between the engine and a real USB stack: it
// owns endpoint claiming, configuration, and blocking read/write calls
// standing in for libusb's asynchronous transfer-submit/callback pair.
// transport_gousb.go is the only implementation; the interface exists so
// engine.go and the workers never import gousb directly, and so tests can
// substitute a fake transport.
type transport interface {
	// ReadAudioIn blocks until one audio-in interrupt transfer completes
	// (or ctx is done), filling buf and returning the number of bytes
	// actually transferred.
	ReadAudioIn(ctx context.Context, buf []byte) (int, error)

	// WriteAudioOut issues one audio-out interrupt transfer of buf,
	// blocking until it completes.
	WriteAudioOut(ctx context.Context, buf []byte) error

	// ReadMIDIIn blocks until one midi-in bulk transfer completes,
	// filling buf and returning the number of bytes actually
	// transferred.
	ReadMIDIIn(ctx context.Context, buf []byte) (int, error)

	// WriteMIDIOut issues one midi-out bulk transfer of buf, blocking
	// until it completes.
	WriteMIDIOut(ctx context.Context, buf []byte) error

	// Close tears down the USB session: releases interfaces, closes the
	// device and context.
	Close() error
}
