package engine

import (
	"context"
	"runtime"
)

// runAudioWorker drives the audio-in/audio-out/midi-in transfer
// cycles: boot gate, per-session reset, and the completion dispatch
// loop described in SPEC_FULL §4.4. It owns the o2p/p2o scratch
// buffers and the frame counter for the engine's lifetime.
func (e *Engine) runAudioWorker(ctx context.Context) {
	defer e.wg.Done()

	// SCHED_FIFO is per-thread; pin this goroutine to its OS thread
	// before raising its priority, or the syscall affects whatever
	// thread is scheduled onto at that instant instead.
	runtime.LockOSThread()
	if err := e.ctx.SetRTPriority("audio", e.ctx.Priority); err != nil {
		e.logger.Warn("set realtime priority", "worker", "audio", "err", err)
	}

	for e.state.Status() == StatusReady {
		runtime.Gosched()
		select {
		case <-ctx.Done():
			return
		default:
		}
	}

	midiInActive := e.ctx.Options.has(OptionO2PMIDI)

	for {
		e.state.resetLatencies()
		e.readingAtP2OEnd = false

		if e.ctx.Options.has(OptionDLL) {
			e.state.mu.Lock()
			if e.state.dll != nil {
				e.state.dll.Init(e.desc.SampleRate, e.framesPerTransfer, e.ctx.GetTime())
			}
			e.state.mu.Unlock()
			e.state.SetStatus(StatusWait)
		} else {
			e.state.SetStatus(StatusRun)
		}

		if !e.dispatchLoop(ctx, midiInActive) {
			return
		}
	}
}

// dispatchLoop runs the inner loop: while status >= WAIT, wait for and
// dispatch the next completion from any owned channel. Returns true if
// the outer loop should reset and continue (a non-fatal resync), false
// if the worker should exit entirely (status <= STOP).
func (e *Engine) dispatchLoop(ctx context.Context, midiInActive bool) bool {
	for e.state.Status() >= StatusWait {
		select {
		case ev := <-e.audioInEvents:
			e.handleAudioIn(ev)
			select {
			case e.audioInAck <- struct{}{}:
			case <-ctx.Done():
				return false
			}
		case ev := <-e.audioOutEvents:
			e.handleAudioOut(ev)
			select {
			case e.audioOutAck <- struct{}{}:
			case <-ctx.Done():
				return false
			}
		case ev := <-e.midiInEvents:
			if midiInActive {
				e.handleMIDIIn(ev)
			}
			select {
			case e.midiInAck <- struct{}{}:
			case <-ctx.Done():
				return false
			}
		case <-e.state.stopSignal:
		case <-ctx.Done():
			return false
		}
	}

	if e.state.Status() <= StatusStop {
		return false
	}

	// Non-fatal resync: drain whatever remains in p2oAudio to a whole
	// frame boundary and zero the p2o transfer buffer.
	if e.ctx.Options.has(OptionP2OAudio) {
		e.drainP2OToFrameBoundary()
	}
	for i := range e.p2oBuf {
		e.p2oBuf[i] = 0
	}
	return true
}

func (e *Engine) handleAudioIn(ev audioInEvent) {
	if ev.err != nil {
		e.logger.Error("audio-in transfer failed", "err", ev.err)
		e.state.SetStatus(StatusError)
		return
	}

	var status Status
	e.state.mu.Lock()
	if e.state.dll != nil {
		e.state.dll.Inc(e.framesPerTransfer, e.ctx.GetTime())
	}
	status = e.state.status
	e.state.mu.Unlock()

	e.o2pBuf = DecodeInput(e.dataIn, e.blocksPerTransfer, e.desc, e.o2pBuf[:0])

	if status < StatusRun {
		return
	}

	o2pLatency := e.ctx.ReadSpace(e.ctx.O2PAudio)
	e.state.recordO2PLatency(o2pLatency)

	if e.ctx.WriteSpace(e.ctx.O2PAudio) >= e.o2pTransferSize {
		encodeFloatsLE(e.o2pBuf, e.o2pRingBytes)
		e.ctx.Write(e.ctx.O2PAudio, e.o2pRingBytes)
	} else {
		e.logger.Debug("o2p ring overflow, dropping transfer")
	}
}

func (e *Engine) handleAudioOut(ev audioOutEvent) {
	if ev.err != nil {
		e.logger.Error("audio-out transfer failed", "err", ev.err)
		e.state.SetStatus(StatusError)
		return
	}

	if !e.ctx.Options.has(OptionP2OAudio) {
		e.readingAtP2OEnd = false
		for i := range e.p2oBuf {
			e.p2oBuf[i] = 0
		}
		e.usbFrames = EncodeOutput(e.p2oBuf, e.dataOut, e.blocksPerTransfer, e.desc, e.usbFrames)
		return
	}

	if !e.readingAtP2OEnd {
		if e.ctx.ReadSpace(e.ctx.P2OAudio) >= e.p2oTransferSize {
			e.drainP2OToFrameBoundary()
			e.readingAtP2OEnd = true
		}
		e.usbFrames = EncodeOutput(e.p2oBuf, e.dataOut, e.blocksPerTransfer, e.desc, e.usbFrames)
		return
	}

	rsp2o := e.ctx.ReadSpace(e.ctx.P2OAudio)
	e.state.recordP2OLatency(rsp2o)

	if rsp2o >= e.p2oTransferSize {
		e.ctx.Read(e.ctx.P2OAudio, e.p2oRingBytes)
		e.p2oBuf = decodeFloatsLE(e.p2oRingBytes, e.p2oBuf[:0])
	} else {
		frames := rsp2o / e.p2oFrameSize
		if frames < 1 {
			frames = 1
		}
		n := e.ctx.Read(e.ctx.P2OAudio, e.resampleRawBuf[:frames*e.p2oFrameSize])
		frames = n / e.p2oFrameSize
		e.resampleInBuf = decodeFloatsLE(e.resampleRawBuf[:n], e.resampleInBuf[:0])

		out := resampleOneShot(e.resampleInBuf, frames, e.desc.Inputs, e.framesPerTransfer, e.p2oBuf[:0])
		if len(out) != e.framesPerTransfer*e.desc.Inputs {
			e.logger.Debug("resampler frame count mismatch", "want", e.framesPerTransfer, "got", len(out)/e.desc.Inputs)
		}
		e.p2oBuf = out
	}

	e.usbFrames = EncodeOutput(e.p2oBuf, e.dataOut, e.blocksPerTransfer, e.desc, e.usbFrames)
}

func (e *Engine) handleMIDIIn(ev midiInEvent) {
	if ev.err != nil {
		e.logger.Debug("midi-in read timeout/error", "err", ev.err)
		return
	}
	if e.state.Status() < StatusRun {
		return
	}

	now := e.ctx.GetTime()
	events := extractMIDIEvents(e.midiInBuf[:ev.n], now)
	for _, event := range events {
		if e.ctx.WriteSpace(e.ctx.O2PMIDI) < midiEventWireSize {
			e.logger.Debug("o2p midi ring overflow, dropping event")
			continue
		}
		wire := encodeMIDIEvent(event)
		e.ctx.Write(e.ctx.O2PMIDI, wire[:])
	}
}

// drainP2OToFrameBoundary discards whole frames from p2oAudio up to
// the largest multiple of p2oFrameSize not exceeding ReadSpace, so the
// ring's read cursor sits exactly on a frame boundary before the
// engine starts treating it as the steady-state source.
func (e *Engine) drainP2OToFrameBoundary() {
	avail := e.ctx.ReadSpace(e.ctx.P2OAudio)
	n := (avail / e.p2oFrameSize) * e.p2oFrameSize
	if n == 0 {
		return
	}
	if n > len(e.p2oRingBytes) {
		n = len(e.p2oRingBytes)
	}
	e.ctx.Read(e.ctx.P2OAudio, e.p2oRingBytes[:n])
}
