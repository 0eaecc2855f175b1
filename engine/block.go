package engine

// FramesPerBlock is the fixed device constant: the number of audio frames
// carried by a single USB block header.
const FramesPerBlock = 7

// blockHeaderMagic is stamped into every outgoing block's header word.
// Incoming blocks carry it too, but it is never inspected on that side;
// it exists purely so the device can recognize frames.
const blockHeaderMagic = 0x07ff

const (
	blockHeaderLen = 2 // header: u16
	blockFramesLen = 2 // frames: u16
	blockPrefixLen = blockHeaderLen + blockFramesLen
)

// DeviceDescriptor carries everything the engine needs to know about the
// attached device's audio layout. Discovering these values (from a
// vendor/product table or elsewhere) is explicitly out of scope for this
// package; callers resolve a descriptor and hand it in.
type DeviceDescriptor struct {
	Name    string
	Inputs  int // channels of device input (host p2o → device)
	Outputs int // channels of device output (device → host o2p)

	// SampleRate is the device's nominal audio sample rate in Hz,
	// passed through to DLL.Init at the start of each boot cycle.
	SampleRate float64

	// OutputTrackScales holds one float32 per output channel, applied
	// when decoding device samples into host floats. Must have length
	// Outputs, or DecodeInput panics.
	OutputTrackScales []float32
}

// inputBlockLen is the wire length, in bytes, of one incoming USB block
// (header + frames + Outputs channels of int32 samples per frame).
func inputBlockLen(desc *DeviceDescriptor) int {
	return blockPrefixLen + 4*FramesPerBlock*desc.Outputs
}

// outputBlockLen is the wire length, in bytes, of one outgoing USB block.
func outputBlockLen(desc *DeviceDescriptor) int {
	return blockPrefixLen + 4*FramesPerBlock*desc.Inputs
}

// stampOutputHeaders writes the constant header word into every block slot
// of buf. Called exactly once, at buffer allocation time; the header is
// never touched again for the lifetime of the buffer.
func stampOutputHeaders(buf []byte, blocksPerTransfer int, desc *DeviceDescriptor) {
	blkLen := outputBlockLen(desc)
	for i := 0; i < blocksPerTransfer; i++ {
		putBE16(buf[i*blkLen:], blockHeaderMagic)
	}
}

func putBE16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func getBE16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func putBE32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u >> 24)
	b[1] = byte(u >> 16)
	b[2] = byte(u >> 8)
	b[3] = byte(u)
}

func getBE32(b []byte) int32 {
	u := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int32(u)
}
