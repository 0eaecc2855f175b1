package main

import charmlog "github.com/charmbracelet/log"

// demoDLL is a minimal stand-in for a host's real delay-locked-loop
// clock reconciliation object (out of scope per SPEC_FULL §1): it logs
// the hooks the engine calls without doing any actual numerics.
type demoDLL struct {
	logger *charmlog.Logger
}

func (d *demoDLL) Init(sampleRate float64, framesPerTransfer int, now float64) {
	d.logger.Debug("dll init", "sample_rate", sampleRate, "frames_per_transfer", framesPerTransfer, "now", now)
}

func (d *demoDLL) Inc(framesPerTransfer int, now float64) {
	d.logger.Debug("dll inc", "frames_per_transfer", framesPerTransfer, "now", now)
}
