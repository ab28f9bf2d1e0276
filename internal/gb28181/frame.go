package gb28181

import (
	"encoding/hex"
	"strings"

	"gb-ptz-remote/internal/ptz"
)

// FrameSize is the length of a PTZCmd frame
const FrameSize = 8

const (
	frameHead = 0xA5
	// version 0 in the high nibble, checksum of the first two nibbles
	// ((0xA + 0x5 + 0x0) % 16) in the low one
	frameCode1 = 0x0F
)

// DefaultAddress is the PTZ address used when a device has none configured
const DefaultAddress = 0x001

// MaxAddress is the largest 12-bit PTZ address
const MaxAddress = 0xFFF

// Frame builds the 8-byte PTZCmd (GB/T 28181 Annex A.3):
//
//	A5 0F AA CC D1 D2 C2 SS
//
// AA is the low 8 bits of the 12-bit device address, CC D1 D2 the command
// bytes, SS the sum of the first seven bytes modulo 256. C2 carries data 3
// in its high nibble and the address high bits in its low nibble; whatever
// the command holds in that low nibble is replaced.
func Frame(cmd ptz.Command, address uint16) [FrameSize]byte {
	b := [FrameSize]byte{
		frameHead, frameCode1, byte(address),
		cmd.Code, cmd.Param1, cmd.Param2,
		data3(cmd.Combined2)<<4 | byte(address>>8)&0x0F,
	}
	b[7] = checksum(b[:7])
	return b
}

// data3 is the 4-bit value of the high nibble of C2. A movement command
// built from a zoomSpeed parameter carries the speed unshifted, so values
// below 16 are the nibble itself.
func data3(c2 byte) byte {
	if c2 < 0x10 {
		return c2
	}
	return c2 >> 4
}

// FrameString is the uppercase hex form carried in the PTZCmd element
func FrameString(cmd ptz.Command, address uint16) string {
	b := Frame(cmd, address)
	return strings.ToUpper(hex.EncodeToString(b[:]))
}

// parseFrame decodes a PTZCmd hex string and verifies its checksum
func parseFrame(s string) (cmd ptz.Command, address uint16, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return cmd, 0, err
	}
	if len(b) != FrameSize || b[0] != frameHead || b[1] != frameCode1 {
		return cmd, 0, ErrBadFrame
	}
	if checksum(b[:7]) != b[7] {
		return cmd, 0, ErrBadChecksum
	}

	cmd = ptz.Command{Code: b[3], Param1: b[4], Param2: b[5], Combined2: b[6] & 0xF0}
	return cmd, uint16(b[6]&0x0F)<<8 | uint16(b[2]), nil
}

func checksum(b []byte) (sum byte) {
	for _, v := range b {
		sum += v
	}
	return
}
