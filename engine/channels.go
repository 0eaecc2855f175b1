package engine

import "context"

// The four functions below are this module's idiomatic-Go translation
// of libusb's "submit a transfer, be called back on completion" model
// (see SPEC_FULL §5 and its REDESIGN FLAGS): each logical transfer
// channel gets its own goroutine that blocks in the transport call,
// reports the completion over a channel, and — for audio-in/out and
// midi-in — waits for an acknowledgement before resubmitting. The ack
// is what reproduces "resubmit strictly after handler returns".

func (e *Engine) runAudioInChannel(ctx context.Context) {
	defer e.chWg.Done()
	for {
		n, err := e.tp.ReadAudioIn(ctx, e.dataIn)
		select {
		case e.audioInEvents <- audioInEvent{n: n, err: err}:
		case <-ctx.Done():
			return
		}
		select {
		case <-e.audioInAck:
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) runAudioOutChannel(ctx context.Context) {
	defer e.chWg.Done()
	for {
		err := e.tp.WriteAudioOut(ctx, e.dataOut)
		select {
		case e.audioOutEvents <- audioOutEvent{err: err}:
		case <-ctx.Done():
			return
		}
		select {
		case <-e.audioOutAck:
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) runMIDIInChannel(ctx context.Context) {
	defer e.chWg.Done()
	for {
		n, err := e.tp.ReadMIDIIn(ctx, e.midiInBuf)
		select {
		case e.midiInEvents <- midiInEvent{n: n, err: err}:
		case <-ctx.Done():
			return
		}
		select {
		case <-e.midiInAck:
		case <-ctx.Done():
			return
		}
	}
}

// runMIDIOutChannel is not part of the audio worker's three-event
// dispatch loop: it is triggered directly by the p2o-MIDI pacing
// worker, which owns the entire host→device MIDI rhythm (SPEC_FULL
// §4.5). On completion it sets p2oMIDIReady rather than reporting back
// through a shared event channel.
func (e *Engine) runMIDIOutChannel(ctx context.Context) {
	defer e.chWg.Done()
	for {
		select {
		case payload := <-e.midiOutTrigger:
			if err := e.tp.WriteMIDIOut(ctx, payload); err != nil {
				e.logger.Warn("midi-out write failed", "err", err)
			}
			e.setP2OMIDIReady(true)
		case <-ctx.Done():
			return
		}
	}
}
