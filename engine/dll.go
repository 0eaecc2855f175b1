package engine

// DLL is the host's delay-locked-loop clock-reconciliation object. Its
// numerics are entirely a host concern (see SPEC_FULL §1); the engine
// only ever calls these two hooks, at the points the original design
// calls out: once per outer boot cycle, and once per input transfer.
type DLL interface {
	// Init (re)seeds the loop at the start of a boot cycle, given the
	// nominal sample rate, the frame count of one transfer, and the
	// current host time.
	Init(sampleRate float64, framesPerTransfer int, now float64)

	// Inc advances the loop by one input transfer's worth of frames,
	// observed at host time now.
	Inc(framesPerTransfer int, now float64)
}
