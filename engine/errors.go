package engine

// ErrorCode is a tagged error reason, indexing errorStrings for
// logging. Kept as a numeric sum type, per the original design, rather
// than a family of sentinel error values, so that a single switch in a
// logger can always recover a stable, user-facing string.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrGeneric
	ErrLibusbInitFailed
	ErrCantOpenDevice
	ErrCantSetUSBConfig
	ErrCantClaimInterface
	ErrCantSetAltSetting
	ErrCantClearEndpoint
	ErrCantPrepareTransfer
	ErrCantFindDevice
	ErrNoReadSpace
	ErrNoWriteSpace
	ErrNoRead
	ErrNoWrite
	ErrNoP2OAudioBuf
	ErrNoO2PAudioBuf
	ErrNoP2OMIDIBuf
	ErrNoO2PMIDIBuf
	ErrNoGetTime
	ErrNoDLL
)

var errorStrings = [...]string{
	ErrNone:                "ok",
	ErrGeneric:              "generic error",
	ErrLibusbInitFailed:     "usb transport init failed",
	ErrCantOpenDevice:       "can't open device",
	ErrCantSetUSBConfig:     "can't set usb config",
	ErrCantClaimInterface:   "can't claim usb interface",
	ErrCantSetAltSetting:    "can't set usb alt setting",
	ErrCantClearEndpoint:    "can't clear endpoint",
	ErrCantPrepareTransfer:  "can't prepare transfer",
	ErrCantFindDevice:       "can't find a matching device",
	ErrNoReadSpace:          "'read_space' not set in context",
	ErrNoWriteSpace:         "'write_space' not set in context",
	ErrNoRead:               "'read' not set in context",
	ErrNoWrite:              "'write' not set in context",
	ErrNoP2OAudioBuf:        "'p2o_audio' buffer not set in context",
	ErrNoO2PAudioBuf:        "'o2p_audio' buffer not set in context",
	ErrNoP2OMIDIBuf:         "'p2o_midi' buffer not set in context",
	ErrNoO2PMIDIBuf:         "'o2p_midi' buffer not set in context",
	ErrNoGetTime:            "'get_time' not set in context",
	ErrNoDLL:                "'dll' not set in context",
}

func (c ErrorCode) String() string {
	if int(c) < 0 || int(c) >= len(errorStrings) {
		return "unknown error"
	}
	return errorStrings[c]
}

// Error is the engine's setup-path error type: a tagged code plus
// optional extra context, surfaced to callers of the constructors and
// Activate. Runtime errors after Activate never use this type; they
// are communicated through status transitions and log lines (see
// SPEC_FULL §7).
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

func newError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}
