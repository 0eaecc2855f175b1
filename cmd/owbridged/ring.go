package main

import "sync"

// byteRing is a small mutex-guarded single-producer/single-consumer
// byte ring good enough to exercise the engine's boundary contract
// against a real sound card. It is demonstration scaffolding, not a
// replacement for the lock-free ring a production host is expected to
// supply (see SPEC_FULL §1's Non-goals).
type byteRing struct {
	mu   sync.Mutex
	buf  []byte
	head int
	size int
}

func newByteRing(capacity int) *byteRing {
	return &byteRing{buf: make([]byte, capacity)}
}

func (r *byteRing) readSpace() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

func (r *byteRing) writeSpace() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf) - r.size
}

func (r *byteRing) read(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(p)
	if n > r.size {
		n = r.size
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.size -= n
	return n
}

func (r *byteRing) write(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(p)
	free := len(r.buf) - r.size
	if n > free {
		n = free
	}
	tail := (r.head + r.size) % len(r.buf)
	for i := 0; i < n; i++ {
		r.buf[(tail+i)%len(r.buf)] = p[i]
	}
	r.size += n
	return n
}
