package engine

// resampleOneShot is the p2o underrun fallback: a best-effort, linear
// interpolation resample of in (inputFrames frames, channels floats
// each) into exactly outputFrames frames written to out. Grounded on
// the original engine's use of libsamplerate's SRC_SINC_FASTEST in
// one-shot mode — a cheap approximation is acceptable because, per the
// original design, this path fires only at session start or under
// pathological host scheduling, never in steady state.
//
// out must have capacity for outputFrames*channels floats; the
// returned slice has exactly that length.
func resampleOneShot(in []float32, inputFrames, channels, outputFrames int, out []float32) []float32 {
	out = out[:0]
	if inputFrames <= 0 || outputFrames <= 0 {
		for i := 0; i < outputFrames*channels; i++ {
			out = append(out, 0)
		}
		return out
	}

	ratio := float64(outputFrames) / float64(inputFrames)
	for of := 0; of < outputFrames; of++ {
		// Position in the input timeline this output frame samples.
		srcPos := float64(of) / ratio
		i0 := int(srcPos)
		if i0 >= inputFrames-1 {
			i0 = inputFrames - 2
			if i0 < 0 {
				i0 = 0
			}
		}
		i1 := i0 + 1
		if i1 >= inputFrames {
			i1 = inputFrames - 1
		}
		frac := float32(srcPos - float64(i0))

		for ch := 0; ch < channels; ch++ {
			a := in[i0*channels+ch]
			b := in[i1*channels+ch]
			out = append(out, a+(b-a)*frac)
		}
	}
	return out
}
