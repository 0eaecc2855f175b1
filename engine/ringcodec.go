package engine

import (
	"encoding/binary"
	"math"
)

// Ring buffers carry raw bytes; audio floats are packed little-endian,
// matching a host-native memcpy of a float32 array on the common
// little-endian targets this bridge runs on.

func encodeFloatsLE(src []float32, dst []byte) {
	for i, f := range src {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(f))
	}
}

func decodeFloatsLE(src []byte, dst []float32) []float32 {
	n := len(src) / 4
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint32(src[i*4 : i*4+4])
		dst = append(dst, math.Float32frombits(u))
	}
	return dst
}
