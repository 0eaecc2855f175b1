package engine

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Engine drives one USB audio/MIDI bridge session: a device descriptor,
// a USB transport, and the two worker goroutines that pump audio and
// MIDI between the transport and a host Context installed at Activate.
type Engine struct {
	desc *DeviceDescriptor
	tp   transport

	blocksPerTransfer int
	framesPerTransfer int
	p2oTransferSize   int // bytes, host input channels
	o2pTransferSize   int // bytes, host output channels
	p2oFrameSize      int // bytes per frame, p2o direction
	o2pFrameSize      int // bytes per frame, o2p direction

	usbFrames uint16

	dataIn  []byte
	dataOut []byte

	midiInBuf   []byte
	p2oMIDIData [usbBulkMIDISize]byte

	o2pBuf        []float32 // decoded o2p scratch, one transfer's worth
	p2oBuf        []float32 // encode source, one transfer's worth
	resampleInBuf []float32 // partial p2o ring read, pre-resample

	o2pRingBytes    []byte // o2pBuf packed for the o2p ring Write
	p2oRingBytes    []byte // raw bytes read from the p2o ring
	resampleRawBuf  []byte // raw bytes backing a partial p2o underrun read

	state *sharedState

	p2oMIDILock  sync.Mutex
	p2oMIDIReady bool

	readingAtP2OEnd bool

	ctx    *Context
	logger *log.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup // audio worker + p2o-MIDI pacing worker; joined by Wait
	chWg   sync.WaitGroup // the four transport channel goroutines; joined by Destroy

	audioInEvents  chan audioInEvent
	audioInAck     chan struct{}
	audioOutEvents chan audioOutEvent
	audioOutAck    chan struct{}
	midiInEvents   chan midiInEvent
	midiInAck      chan struct{}
	midiOutTrigger chan []byte
}

type audioInEvent struct {
	n   int
	err error
}

type audioOutEvent struct {
	err error
}

type midiInEvent struct {
	n   int
	err error
}

// NewFromFileDescriptor builds an Engine around an already-open USB
// file descriptor, as when another process owns device enumeration.
func NewFromFileDescriptor(fd int, desc *DeviceDescriptor, blocksPerTransfer int) (*Engine, error) {
	tp, err := newFromFileDescriptor(fd)
	if err != nil {
		return nil, err
	}
	return newEngine(tp, desc, blocksPerTransfer)
}

// NewFromBusAddress builds an Engine by enumerating and opening the
// device at the given USB bus/address pair.
func NewFromBusAddress(bus, address int, desc *DeviceDescriptor, blocksPerTransfer int) (*Engine, error) {
	tp, err := newFromBusAddress(bus, address)
	if err != nil {
		return nil, err
	}
	return newEngine(tp, desc, blocksPerTransfer)
}

func newEngine(tp transport, desc *DeviceDescriptor, blocksPerTransfer int) (*Engine, error) {
	if len(desc.OutputTrackScales) != desc.Outputs {
		tp.Close()
		return nil, newError(ErrGeneric, fmt.Sprintf("descriptor %q: %d output scales for %d outputs", desc.Name, len(desc.OutputTrackScales), desc.Outputs))
	}

	e := &Engine{
		desc:              desc,
		tp:                tp,
		blocksPerTransfer: blocksPerTransfer,
		framesPerTransfer: blocksPerTransfer * FramesPerBlock,
		state:             newSharedState(),
		logger:            log.NewWithOptions(os.Stderr, log.Options{Prefix: desc.Name}),
	}
	e.p2oFrameSize = 4 * desc.Inputs
	e.o2pFrameSize = 4 * desc.Outputs
	e.p2oTransferSize = e.framesPerTransfer * e.p2oFrameSize
	e.o2pTransferSize = e.framesPerTransfer * e.o2pFrameSize

	e.dataIn = make([]byte, inputBlockLen(desc)*blocksPerTransfer)
	e.dataOut = make([]byte, outputBlockLen(desc)*blocksPerTransfer)
	stampOutputHeaders(e.dataOut, blocksPerTransfer, desc)

	e.midiInBuf = make([]byte, usbBulkMIDISize)

	e.o2pBuf = make([]float32, 0, e.framesPerTransfer*desc.Outputs)
	e.p2oBuf = make([]float32, e.framesPerTransfer*desc.Inputs)
	e.resampleInBuf = make([]float32, e.framesPerTransfer*desc.Inputs)

	e.o2pRingBytes = make([]byte, e.o2pTransferSize)
	e.p2oRingBytes = make([]byte, e.p2oTransferSize)
	e.resampleRawBuf = make([]byte, e.p2oTransferSize)

	return e, nil
}

// Activate validates ctx against the enabled Options, installs
// defaults, and starts the worker goroutines.
func (e *Engine) Activate(ctx *Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	e.ctx = ctx
	e.state.setOptionEnabled(OptionP2OAudio, ctx.Options.has(OptionP2OAudio))
	e.state.setOptionEnabled(OptionO2PAudio, ctx.Options.has(OptionO2PAudio))
	e.state.setOptionEnabled(OptionP2OMIDI, ctx.Options.has(OptionP2OMIDI))
	e.state.setOptionEnabled(OptionO2PMIDI, ctx.Options.has(OptionO2PMIDI))
	e.state.setOptionEnabled(OptionDLL, ctx.Options.has(OptionDLL))

	if ctx.SetRTPriority == nil {
		ctx.SetRTPriority = defaultSetRTPriority
	}
	if ctx.Priority == 0 {
		ctx.Priority = DefaultPriority
	}
	if ctx.Options.has(OptionDLL) {
		e.state.mu.Lock()
		e.state.dll = ctx.DLL
		e.state.mu.Unlock()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.audioInEvents = make(chan audioInEvent)
	e.audioInAck = make(chan struct{})
	e.audioOutEvents = make(chan audioOutEvent)
	e.audioOutAck = make(chan struct{})
	e.midiInEvents = make(chan midiInEvent)
	e.midiInAck = make(chan struct{})
	e.midiOutTrigger = make(chan []byte)

	if ctx.Options.has(OptionDLL) {
		e.state.SetStatus(StatusReady)
	}

	audioActive := ctx.Options.has(OptionP2OAudio) || ctx.Options.has(OptionO2PAudio) || ctx.Options.has(OptionO2PMIDI)
	if audioActive {
		e.chWg.Add(1)
		go e.runAudioInChannel(runCtx)
		e.chWg.Add(1)
		go e.runAudioOutChannel(runCtx)
		if ctx.Options.has(OptionO2PMIDI) {
			e.chWg.Add(1)
			go e.runMIDIInChannel(runCtx)
		}
		if ctx.Options.has(OptionP2OMIDI) {
			e.chWg.Add(1)
			go e.runMIDIOutChannel(runCtx)
		}
		e.wg.Add(1)
		go e.runAudioWorker(runCtx)
	}

	if ctx.Options.has(OptionP2OMIDI) {
		e.setP2OMIDIReady(true)
		e.wg.Add(1)
		go e.runMIDIPacingWorker(runCtx)
	}

	return nil
}

func validateContext(ctx *Context) error {
	need := func(cond bool, present bool, code ErrorCode, what string) error {
		if cond && !present {
			return newError(code, what)
		}
		return nil
	}
	anyAudio := ctx.Options.has(OptionP2OAudio) || ctx.Options.has(OptionO2PAudio)
	anyMIDI := ctx.Options.has(OptionP2OMIDI) || ctx.Options.has(OptionO2PMIDI)

	if err := need(anyMIDI || ctx.Options.has(OptionDLL), ctx.GetTime != nil, ErrNoGetTime, "GetTime"); err != nil {
		return err
	}
	if err := need(ctx.Options.has(OptionDLL), ctx.DLL != nil, ErrNoDLL, "DLL"); err != nil {
		return err
	}
	if ctx.Options.has(OptionP2OAudio) {
		if ctx.P2OAudio == nil {
			return newError(ErrNoP2OAudioBuf, "P2OAudio")
		}
	}
	if ctx.Options.has(OptionO2PAudio) {
		if ctx.O2PAudio == nil {
			return newError(ErrNoO2PAudioBuf, "O2PAudio")
		}
	}
	if ctx.Options.has(OptionP2OMIDI) {
		if ctx.P2OMIDI == nil {
			return newError(ErrNoP2OMIDIBuf, "P2OMIDI")
		}
	}
	if ctx.Options.has(OptionO2PMIDI) {
		if ctx.O2PMIDI == nil {
			return newError(ErrNoO2PMIDIBuf, "O2PMIDI")
		}
	}
	if anyAudio || anyMIDI {
		if ctx.ReadSpace == nil {
			return newError(ErrNoReadSpace, "ReadSpace")
		}
		if ctx.WriteSpace == nil {
			return newError(ErrNoWriteSpace, "WriteSpace")
		}
		if ctx.Read == nil {
			return newError(ErrNoRead, "Read")
		}
		if ctx.Write == nil {
			return newError(ErrNoWrite, "Write")
		}
	}
	return nil
}

// Status reports the engine's current lifecycle state.
func (e *Engine) Status() Status {
	return e.state.Status()
}

// Latencies reports current/max observed ring latency, in bytes, for
// both directions.
func (e *Engine) Latencies() (o2pCur, o2pMax, p2oCur, p2oMax int) {
	return e.state.Latencies()
}

// Stop requests both workers exit their outer loops. It does not
// block; call Wait to join them.
func (e *Engine) Stop() {
	e.state.SetStatus(StatusStop)
}

// Wait blocks until every started worker goroutine (the audio worker
// and, if started, the p2o-MIDI pacing worker) has exited. Both are
// tracked by one WaitGroup, so they are not joined in a fixed order.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Destroy closes the USB session, releasing the four logical transfer
// channels, then drops the engine's buffers. Call only after Wait
// returns.
func (e *Engine) Destroy() error {
	if e.cancel != nil {
		e.cancel()
	}
	e.chWg.Wait()
	err := e.tp.Close()
	e.dataIn = nil
	e.dataOut = nil
	e.midiInBuf = nil
	return err
}

func (e *Engine) setP2OMIDIReady(ready bool) {
	e.p2oMIDILock.Lock()
	e.p2oMIDIReady = ready
	e.p2oMIDILock.Unlock()
}

func (e *Engine) isP2OMIDIReady() bool {
	e.p2oMIDILock.Lock()
	defer e.p2oMIDILock.Unlock()
	return e.p2oMIDIReady
}
