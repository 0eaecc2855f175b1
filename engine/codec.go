package engine

import "math"

// DecodeInput reads blocksPerTransfer blocks out of usbIn (device→host
// wire format) and appends the decoded, scaled float32 frames to dst,
// returning the extended slice. usbIn must hold exactly
// blocksPerTransfer input blocks for desc.
//
// Pure and allocation-free on the hot path: dst is grown by the caller
// up front (see Engine.o2pBuf) and this function only appends
// within its existing capacity.
func DecodeInput(usbIn []byte, blocksPerTransfer int, desc *DeviceDescriptor, dst []float32) []float32 {
	blkLen := inputBlockLen(desc)
	for i := 0; i < blocksPerTransfer; i++ {
		blk := usbIn[i*blkLen : (i+1)*blkLen]
		samples := blk[blockPrefixLen:]
		for f := 0; f < FramesPerBlock; f++ {
			for ch := 0; ch < desc.Outputs; ch++ {
				off := (f*desc.Outputs + ch) * 4
				raw := getBE32(samples[off : off+4])
				v := float32(float64(raw) / math.MaxInt32 * float64(desc.OutputTrackScales[ch]))
				dst = append(dst, v)
			}
		}
	}
	return dst
}

// EncodeOutput writes blocksPerTransfer blocks of src (host→device,
// interleaved by desc.Inputs channels) into usbOut, which must already
// carry the stamped 0x07ff header in every block (see
// stampOutputHeaders). baseFrame is the running frame counter to stamp
// into the first block of this transfer; EncodeOutput returns the
// counter advanced by FramesPerBlock*blocksPerTransfer, ready for the
// next call.
//
// The source is not clipped before conversion; neither is this function.
func EncodeOutput(src []float32, usbOut []byte, blocksPerTransfer int, desc *DeviceDescriptor, baseFrame uint16) uint16 {
	blkLen := outputBlockLen(desc)
	frame := baseFrame
	si := 0
	for i := 0; i < blocksPerTransfer; i++ {
		blk := usbOut[i*blkLen : (i+1)*blkLen]
		putBE16(blk[blockHeaderLen:blockPrefixLen], frame)
		frame += FramesPerBlock

		samples := blk[blockPrefixLen:]
		for f := 0; f < FramesPerBlock; f++ {
			for ch := 0; ch < desc.Inputs; ch++ {
				off := (f*desc.Inputs + ch) * 4
				v := int32(float64(src[si]) * math.MaxInt32)
				putBE32(samples[off:off+4], v)
				si++
			}
		}
	}
	return frame
}
