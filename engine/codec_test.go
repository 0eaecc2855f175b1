package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testDescriptor(inputs, outputs int) *DeviceDescriptor {
	scales := make([]float32, outputs)
	for i := range scales {
		scales[i] = 1.0
	}
	return &DeviceDescriptor{
		Name:              "test",
		Inputs:            inputs,
		Outputs:           outputs,
		SampleRate:        48000,
		OutputTrackScales: scales,
	}
}

func Test_EncodeOutput_stampsHeadersAndFrameCounters(t *testing.T) {
	desc := testDescriptor(2, 2)
	blocksPerTransfer := 2
	buf := make([]byte, outputBlockLen(desc)*blocksPerTransfer)
	stampOutputHeaders(buf, blocksPerTransfer, desc)

	src := make([]float32, FramesPerBlock*blocksPerTransfer*desc.Inputs)
	next := EncodeOutput(src, buf, blocksPerTransfer, desc, 0)
	assert.Equal(t, uint16(FramesPerBlock*blocksPerTransfer), next)

	blkLen := outputBlockLen(desc)
	for i := 0; i < blocksPerTransfer; i++ {
		blk := buf[i*blkLen : (i+1)*blkLen]
		assert.Equal(t, uint16(0x07ff), getBE16(blk[:2]))
		assert.Equal(t, uint16(i*FramesPerBlock), getBE16(blk[2:4]))
		for _, b := range blk[blockPrefixLen:] {
			assert.Zero(t, b)
		}
	}
}

func Test_DecodeInput_alternatingSamples(t *testing.T) {
	desc := testDescriptor(1, 1)
	blk := make([]byte, inputBlockLen(desc))
	samples := blk[blockPrefixLen:]
	for f := 0; f < FramesPerBlock; f++ {
		v := int32(math.MaxInt32)
		if f%2 == 1 {
			v = -math.MaxInt32
		}
		putBE32(samples[f*4:f*4+4], v)
	}

	got := DecodeInput(blk, 1, desc, nil)
	require.Len(t, got, FramesPerBlock)
	for f, v := range got {
		if f%2 == 0 {
			assert.InDelta(t, 1.0, v, 1e-6)
		} else {
			assert.InDelta(t, -1.0, v, 1e-6)
		}
	}
}

func Test_RoundTrip_codec(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		channels := rapid.IntRange(1, 4).Draw(rt, "channels")
		blocksPerTransfer := rapid.IntRange(1, 6).Draw(rt, "blocksPerTransfer")
		desc := testDescriptor(channels, channels)

		frames := FramesPerBlock * blocksPerTransfer * channels
		src := make([]float32, frames)
		for i := range src {
			src[i] = rapid.Float32Range(-1, 1).Draw(rt, "sample")
		}

		outBuf := make([]byte, outputBlockLen(desc)*blocksPerTransfer)
		stampOutputHeaders(outBuf, blocksPerTransfer, desc)
		EncodeOutput(src, outBuf, blocksPerTransfer, desc, 0)

		// EncodeOutput writes into "output" blocks (device inputs); to
		// round-trip through DecodeInput (which expects device-output
		// layout) we reinterpret the same wire buffer as an input block
		// stream of the same channel count, which is valid since both
		// directions share identical block framing.
		decoded := DecodeInput(outBuf, blocksPerTransfer, desc, nil)
		require.Len(rt, decoded, len(src))
		for i := range src {
			assert.InDelta(rt, float64(src[i]), float64(decoded[i]), 1.0/float64(1<<30))
		}
	})
}
