package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_resampleOneShot_producesExactOutputFrameCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		channels := rapid.IntRange(1, 4).Draw(rt, "channels")
		inputFrames := rapid.IntRange(1, 64).Draw(rt, "inputFrames")
		outputFrames := rapid.IntRange(1, 64).Draw(rt, "outputFrames")

		in := make([]float32, inputFrames*channels)
		for i := range in {
			in[i] = rapid.Float32Range(-1, 1).Draw(rt, "sample")
		}

		out := resampleOneShot(in, inputFrames, channels, outputFrames, make([]float32, 0, outputFrames*channels))
		require.Len(rt, out, outputFrames*channels)
	})
}

func Test_resampleOneShot_underrunScenario(t *testing.T) {
	// SPEC scenario: p2oTransferSize = 448 bytes, only 224 bytes
	// available => ratio 2.0, framesPerTransfer frames out.
	channels := 4
	framesPerTransfer := 28
	availableFrames := 14 // 224 bytes / (4 channels * 4 bytes)

	in := make([]float32, availableFrames*channels)
	for i := range in {
		in[i] = 0.5
	}
	out := resampleOneShot(in, availableFrames, channels, framesPerTransfer, nil)
	assert.Len(t, out, framesPerTransfer*channels)
}

func Test_resampleOneShot_zeroInputFramesYieldsSilence(t *testing.T) {
	out := resampleOneShot(nil, 0, 2, 10, nil)
	require.Len(t, out, 20)
	for _, v := range out {
		assert.Zero(t, v)
	}
}
