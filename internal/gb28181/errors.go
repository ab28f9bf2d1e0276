package gb28181

import "errors"

var (
	// ErrBadFrame means the PTZCmd is not an 8-byte A5 frame
	ErrBadFrame = errors.New("gb28181: malformed PTZCmd frame")
	// ErrBadChecksum means the PTZCmd checksum byte does not match
	ErrBadChecksum = errors.New("gb28181: PTZCmd checksum mismatch")
	// ErrClosed is returned by Send after Close
	ErrClosed = errors.New("gb28181: transport closed")
)
