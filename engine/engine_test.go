package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a transport that never actually moves bytes; it
// blocks until ctx is cancelled, which is exactly what an idle engine
// under test needs (no real device ever sends anything).
type fakeTransport struct{}

func (fakeTransport) ReadAudioIn(ctx context.Context, buf []byte) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}
func (fakeTransport) WriteAudioOut(ctx context.Context, buf []byte) error {
	<-ctx.Done()
	return ctx.Err()
}
func (fakeTransport) ReadMIDIIn(ctx context.Context, buf []byte) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}
func (fakeTransport) WriteMIDIOut(ctx context.Context, buf []byte) error {
	<-ctx.Done()
	return ctx.Err()
}
func (fakeTransport) Close() error { return nil }

func Test_newEngine_derivedDimensions(t *testing.T) {
	desc := testDescriptor(4, 10)
	e, err := newEngine(fakeTransport{}, desc, 4)
	require.NoError(t, err)

	assert.Equal(t, 28, e.framesPerTransfer)
	assert.Equal(t, 448, e.p2oTransferSize)
	assert.Equal(t, 1120, e.o2pTransferSize)
}

// byteRing is a trivial single-goroutine-at-a-time byte ring good
// enough to exercise the engine's Context contract in tests; it is not
// the lock-free SPSC ring the host is expected to supply in
// production (see SPEC_FULL §1's boundary contract).
type byteRing struct {
	mu   sync.Mutex
	data []byte
}

func newByteRing(capacity int) *byteRing {
	return &byteRing{data: make([]byte, 0, capacity)}
}

func ringReadSpace(r Ring) int {
	br := r.(*byteRing)
	br.mu.Lock()
	defer br.mu.Unlock()
	return len(br.data)
}

func ringWriteSpace(r Ring) int {
	br := r.(*byteRing)
	br.mu.Lock()
	defer br.mu.Unlock()
	return cap(br.data) - len(br.data)
}

func ringRead(r Ring, p []byte) int {
	br := r.(*byteRing)
	br.mu.Lock()
	defer br.mu.Unlock()
	n := copy(p, br.data)
	br.data = br.data[n:]
	return n
}

func ringWrite(r Ring, p []byte) int {
	br := r.(*byteRing)
	br.mu.Lock()
	defer br.mu.Unlock()
	br.data = append(br.data, p...)
	return len(p)
}

func Test_handleAudioIn_overflowDropsTransfer(t *testing.T) {
	desc := testDescriptor(1, 2)
	e, err := newEngine(fakeTransport{}, desc, 1)
	require.NoError(t, err)

	o2p := newByteRing(e.o2pTransferSize - 1) // deliberately too small
	e.ctx = &Context{
		Options:    OptionO2PAudio,
		O2PAudio:   o2p,
		ReadSpace:  ringReadSpace,
		WriteSpace: ringWriteSpace,
		Read:       ringRead,
		Write:      ringWrite,
		GetTime:    func() float64 { return 0 },
	}
	e.state.SetStatus(StatusRun)

	// Craft an input buffer decodable to all-zero frames.
	for i := range e.dataIn {
		e.dataIn[i] = 0
	}

	e.handleAudioIn(audioInEvent{n: len(e.dataIn), err: nil})
	assert.Zero(t, ringReadSpace(o2p), "overflow must drop the whole transfer, not write partially")
}

func Test_handleAudioIn_dllBootGating(t *testing.T) {
	desc := testDescriptor(1, 2)
	e, err := newEngine(fakeTransport{}, desc, 1)
	require.NoError(t, err)

	o2p := newByteRing(e.o2pTransferSize * 4)
	e.ctx = &Context{
		Options:    OptionO2PAudio | OptionDLL,
		O2PAudio:   o2p,
		ReadSpace:  ringReadSpace,
		WriteSpace: ringWriteSpace,
		Read:       ringRead,
		Write:      ringWrite,
		GetTime:    func() float64 { return 0 },
		DLL:        &noopDLL{},
	}
	e.state.mu.Lock()
	e.state.dll = e.ctx.DLL
	e.state.mu.Unlock()

	for _, status := range []Status{StatusReady, StatusBoot, StatusWait} {
		e.state.SetStatus(status)
		e.handleAudioIn(audioInEvent{n: len(e.dataIn), err: nil})
		assert.Zero(t, ringReadSpace(o2p), "no samples may reach o2p while status %v", status)
	}

	e.state.SetStatus(StatusRun)
	e.handleAudioIn(audioInEvent{n: len(e.dataIn), err: nil})
	assert.Equal(t, e.o2pTransferSize, ringReadSpace(o2p))
}

type noopDLL struct{}

func (*noopDLL) Init(sampleRate float64, framesPerTransfer int, now float64) {}
func (*noopDLL) Inc(framesPerTransfer int, now float64)                     {}

func Test_Activate_rejectsMissingCallbacks(t *testing.T) {
	desc := testDescriptor(1, 2)
	e, err := newEngine(fakeTransport{}, desc, 1)
	require.NoError(t, err)

	err = e.Activate(&Context{Options: OptionO2PAudio})
	require.Error(t, err)
	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, ErrNoO2PAudioBuf, typed.Code)
}

func Test_Activate_StopAndWait(t *testing.T) {
	desc := testDescriptor(1, 2)
	e, err := newEngine(fakeTransport{}, desc, 1)
	require.NoError(t, err)

	o2p := newByteRing(e.o2pTransferSize * 4)
	ctx := &Context{
		Options:    OptionO2PAudio,
		O2PAudio:   o2p,
		ReadSpace:  ringReadSpace,
		WriteSpace: ringWriteSpace,
		Read:       ringRead,
		Write:      ringWrite,
		GetTime:    func() float64 { return 0 },
	}
	require.NoError(t, e.Activate(ctx))

	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()

	e.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not exit after Stop")
	}
	assert.Equal(t, StatusStop, e.Status())
	require.NoError(t, e.Destroy())
}
