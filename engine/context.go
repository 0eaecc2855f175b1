package engine

// Ring is an opaque handle to one host-owned, single-producer/
// single-consumer ring buffer. The engine never inspects it directly;
// it is only ever passed back to the Context's Read/Write/ReadSpace/
// WriteSpace functions.
type Ring any

// RTPrioritySetter raises the calling goroutine's scheduling priority.
// tag names which worker is asking ("audio", "p2o-midi"), for hosts
// that want to apply different policies per worker.
type RTPrioritySetter func(tag string, priority int) error

// DefaultPriority is used when a Context supplies no explicit
// Priority.
const DefaultPriority = 10

// Context is everything the host supplies at Activate time: ring
// references and operations for each enabled direction, a time
// source, an optional DLL, and a realtime priority hook. Which fields
// must be non-nil depends on Options (see Engine.Activate and
// SPEC_FULL §7's setup-error taxonomy).
type Context struct {
	Options Option

	P2OAudio Ring
	O2PAudio Ring
	P2OMIDI  Ring
	O2PMIDI  Ring

	// ReadSpace/WriteSpace report bytes available to read/write
	// without blocking. Read/Write move exactly that many bytes (or
	// the amount the caller requests, which is always checked
	// against ReadSpace/WriteSpace first).
	ReadSpace  func(r Ring) int
	WriteSpace func(r Ring) int
	Read       func(r Ring, p []byte) int
	Write      func(r Ring, p []byte) int

	// GetTime returns the host's monotonic clock, in seconds.
	GetTime func() float64

	DLL DLL

	SetRTPriority RTPrioritySetter
	Priority      int
}
