package engine

import (
	"context"
	"runtime"
	"time"
)

// runMIDIPacingWorker owns the host→device MIDI rhythm: accumulate
// events whose timestamps are close together into one bulk-out
// transfer, flushing when the next event's timestamp advances past
// the accumulator's base or the 512-byte buffer fills (SPEC_FULL
// §4.5). It never blocks on transport I/O directly — writes are
// handed off to the dedicated midi-out channel goroutine, which is
// what lets the pacing sleep stay purely a function of event
// timestamps.
func (e *Engine) runMIDIPacingWorker(ctx context.Context) {
	defer e.wg.Done()

	runtime.LockOSThread()
	if err := e.ctx.SetRTPriority("p2o-midi", e.ctx.Priority); err != nil {
		e.logger.Warn("set realtime priority", "worker", "p2o-midi", "err", err)
	}

	smallestSleep := e.smallestSleep()

	var (
		pos      int
		lastTime float64
		diff     float64

		eventRead bool
		pending   MIDIEvent
		eventBuf  [midiEventWireSize]byte
	)

	for {
		if e.state.Status() <= StatusStop {
			return
		}

		for e.ctx.ReadSpace(e.ctx.P2OMIDI) >= midiEventWireSize && pos < usbBulkMIDISize {
			if pos == 0 {
				for i := range e.p2oMIDIData {
					e.p2oMIDIData[i] = 0
				}
				diff = 0
			}
			if !eventRead {
				e.ctx.Read(e.ctx.P2OMIDI, eventBuf[:])
				pending = decodeMIDIEvent(eventBuf[:])
				eventRead = true
			}
			if pending.Time > lastTime {
				diff = pending.Time - lastTime
				lastTime = pending.Time
				break
			}
			copy(e.p2oMIDIData[pos:pos+4], pending.Bytes[:])
			pos += 4
			eventRead = false
		}

		if pos > 0 {
			e.setP2OMIDIReady(false)
			payload := make([]byte, pos)
			copy(payload, e.p2oMIDIData[:pos])
			select {
			case e.midiOutTrigger <- payload:
			case <-ctx.Done():
				return
			}
			pos = 0
		}

		sleepFor := smallestSleep
		if diff != 0 {
			sleepFor = time.Duration(diff * float64(time.Second))
		}
		if !sleepCtx(ctx, sleepFor) {
			return
		}

		for !e.isP2OMIDIReady() {
			if !sleepCtx(ctx, smallestSleep) {
				return
			}
		}

		if e.state.Status() <= StatusStop {
			return
		}
	}
}

// smallestSleep is the pacing worker's polling quantum:
// (sampleTimeNs × 32) / 2, where sampleTimeNs is one audio sample
// period at the device's nominal rate.
func (e *Engine) smallestSleep() time.Duration {
	sampleTimeNs := time.Second.Nanoseconds() / int64(e.desc.SampleRate)
	return time.Duration(sampleTimeNs*32/2) * time.Nanosecond
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
