package engine

import "math"

// midiEventWireSize is sizeof(struct ow_midi_event): 4 bytes of
// USB-MIDI packet, an 8-byte float64 timestamp, padded to 16 bytes to
// match the original C struct's alignment.
const midiEventWireSize = 16

// usbBulkMIDISize is the fixed bulk transfer buffer size for both MIDI
// directions.
const usbBulkMIDISize = 512

// MIDIEvent is one USB-MIDI class-compliant event packet, timestamped
// in host seconds.
type MIDIEvent struct {
	Bytes [4]byte
	Time  float64
}

// isClassCompliantEvent reports whether first is a valid USB-MIDI Code
// Index Number for this single-cable (cable number 0) device: Note-off,
// Note-on, Poly-KeyPress, Control Change, Program Change, Channel
// Pressure, PitchBend Change, or Single Byte (0x08..0x0F). The CIN
// occupies the whole byte here, not a shifted nibble.
func isClassCompliantEvent(first byte) bool {
	return first >= 0x08 && first <= 0x0f
}

// extractMIDIEvents scans an actual-length bulk-in payload in 4-byte
// strides and returns the class-compliant events found, all stamped
// with the same timestamp (the time the containing transfer
// completed, not per-event).
func extractMIDIEvents(payload []byte, timestamp float64) []MIDIEvent {
	var events []MIDIEvent
	for off := 0; off+4 <= len(payload); off += 4 {
		if !isClassCompliantEvent(payload[off]) {
			continue
		}
		var ev MIDIEvent
		copy(ev.Bytes[:], payload[off:off+4])
		ev.Time = timestamp
		events = append(events, ev)
	}
	return events
}

// encodeMIDIEvent serializes ev into the fixed 16-byte ring wire
// format: 4 bytes of packet, 8 bytes of float64 time, 4 bytes padding.
func encodeMIDIEvent(ev MIDIEvent) [midiEventWireSize]byte {
	var buf [midiEventWireSize]byte
	copy(buf[0:4], ev.Bytes[:])
	putFloat64LE(buf[4:12], ev.Time)
	return buf
}

func decodeMIDIEvent(buf []byte) MIDIEvent {
	var ev MIDIEvent
	copy(ev.Bytes[:], buf[0:4])
	ev.Time = getFloat64LE(buf[4:12])
	return ev
}

func putFloat64LE(b []byte, f float64) {
	u := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

func getFloat64LE(b []byte) float64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return math.Float64frombits(u)
}
