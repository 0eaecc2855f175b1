package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_extractMIDIEvents_filtersNonClassCompliant(t *testing.T) {
	payload := []byte{
		0x09, 0x90, 0x40, 0x7f, // CIN 0x9: note-on, class-compliant
		0x05, 0x00, 0x00, 0x00, // CIN 0x5: outside 0x8..0xF, not class-compliant
		0x08, 0x80, 0x40, 0x00, // CIN 0x8: note-off, class-compliant
	}
	events := extractMIDIEvents(payload, 1.5)
	require.Len(t, events, 2)
	assert.Equal(t, [4]byte{0x09, 0x90, 0x40, 0x7f}, events[0].Bytes)
	assert.Equal(t, [4]byte{0x08, 0x80, 0x40, 0x00}, events[1].Bytes)
	assert.Equal(t, 1.5, events[0].Time)
	assert.Equal(t, 1.5, events[1].Time)
}

func Test_isClassCompliantEvent(t *testing.T) {
	for first := 0; first <= 0xf; first++ {
		got := isClassCompliantEvent(byte(first))
		assert.Equal(t, first >= 0x8, got, "first %x", first)
	}
}

func Test_MIDIEvent_wireRoundTrip(t *testing.T) {
	ev := MIDIEvent{Bytes: [4]byte{0x09, 0x90, 0x40, 0x7f}, Time: 123.456}
	wire := encodeMIDIEvent(ev)
	assert.Len(t, wire, midiEventWireSize)

	got := decodeMIDIEvent(wire[:])
	assert.Equal(t, ev.Bytes, got.Bytes)
	assert.Equal(t, ev.Time, got.Time)
}
