package main

import (
	"encoding/binary"
	"math"
)

// writeFloatsLE packs src into the ring's native little-endian byte
// encoding (see engine.ringcodec.go, which decodes the same layout on
// the engine side of the boundary).
func writeFloatsLE(r *byteRing, src []float32) {
	buf := make([]byte, len(src)*4)
	for i, f := range src {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	r.write(buf)
}

// readFloatsLE fills dst from r, returning false (and leaving dst
// untouched) if fewer than len(dst) floats were available.
func readFloatsLE(r *byteRing, dst []float32) bool {
	need := len(dst) * 4
	if r.readSpace() < need {
		return false
	}
	buf := make([]byte, need)
	r.read(buf)
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return true
}
