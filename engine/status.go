package engine

import "sync"

// Status is the engine's lifecycle state, totally ordered so that
// comparisons like "status >= WAIT" and "status <= STOP" carry the
// meaning the worker loops rely on.
type Status int

const (
	StatusError Status = iota
	StatusStop
	StatusReady
	StatusBoot
	StatusWait
	StatusRun
)

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusStop:
		return "stop"
	case StatusReady:
		return "ready"
	case StatusBoot:
		return "boot"
	case StatusWait:
		return "wait"
	case StatusRun:
		return "run"
	default:
		return "unknown"
	}
}

// sharedState is the record guarded by a single mutex: status,
// options, per-direction latency counters, and the DLL hook. Never
// held across a USB or ring-buffer call (see SPEC_FULL §5); that
// discipline is what makes a plain sync.Mutex an adequate stand-in for
// the original's spinlock.
type sharedState struct {
	mu   sync.Mutex
	cond *sync.Cond

	status     Status
	stopSignal chan struct{} // closed exactly once, when status first drops to <= StatusStop
	stopClosed bool

	options Option

	o2pLatency    int
	o2pMaxLatency int
	p2oLatency    int
	p2oMaxLatency int

	dll DLL
}

func newSharedState() *sharedState {
	s := &sharedState{status: StatusStop, stopSignal: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *sharedState) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus records status. Once status has dropped to StatusStop or
// below, a later request to raise it above StatusStop is ignored.
func (s *sharedState) SetStatus(status Status) {
	s.mu.Lock()
	if s.stopClosed && status > StatusStop {
		s.mu.Unlock()
		return
	}
	s.status = status
	if status <= StatusStop && !s.stopClosed {
		s.stopClosed = true
		close(s.stopSignal)
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// waitWhileAtLeast blocks until status drops below floor, returning
// the status that satisfied the wait, woken by SetStatus's Cond
// broadcast. The audio worker's inner loop does not use it: that loop
// selects on the completion-event channels and on stopSignal.
func (s *sharedState) waitWhileAtLeast(floor Status) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.status >= floor {
		s.cond.Wait()
	}
	return s.status
}

func (s *sharedState) isOptionEnabled(opt Option) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options.has(opt)
}

func (s *sharedState) setOptionEnabled(opt Option, enabled bool) {
	s.mu.Lock()
	if enabled {
		s.options |= opt
	} else {
		s.options &^= opt
	}
	s.mu.Unlock()
}

func (s *sharedState) resetLatencies() {
	s.mu.Lock()
	s.o2pLatency, s.o2pMaxLatency = 0, 0
	s.p2oLatency, s.p2oMaxLatency = 0, 0
	s.mu.Unlock()
}

func (s *sharedState) recordO2PLatency(v int) {
	s.mu.Lock()
	s.o2pLatency = v
	if v > s.o2pMaxLatency {
		s.o2pMaxLatency = v
	}
	s.mu.Unlock()
}

func (s *sharedState) recordP2OLatency(v int) {
	s.mu.Lock()
	s.p2oLatency = v
	if v > s.p2oMaxLatency {
		s.p2oMaxLatency = v
	}
	s.mu.Unlock()
}

// Latencies reports the current and maximum observed latency, in
// bytes, for both directions: o2pCur, o2pMax, p2oCur, p2oMax.
func (s *sharedState) Latencies() (o2pCur, o2pMax, p2oCur, p2oMax int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.o2pLatency, s.o2pMaxLatency, s.p2oLatency, s.p2oMaxLatency
}

// dllInc calls the configured DLL's Inc hook under the lock, matching
// the original's placement of ow_dll_overwitch_inc inside the
// spinlock-protected section. Returns the status snapshot taken in
// the same critical section, since the caller needs both atomically.
func (s *sharedState) dllInc(framesPerTransfer int, now float64) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dll != nil {
		s.dll.Inc(framesPerTransfer, now)
	}
	return s.status
}
