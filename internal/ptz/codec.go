package ptz

// Pack splits a 12-bit speed or dwell time into data 2 and the high nibble
// of combination code 2.
//
// The low part is (v - v>>4) << 4 truncated to a byte, not (v & 0xF) << 4.
// Keep it bit exact. The low nibble of combined2 holds the address high
// bits and is always zero here.
func Pack(v int) (param2, combined2 byte) {
	hi := v >> 4
	return byte(hi), byte((v - hi) << 4)
}

// Unpack reverses Pack
func Unpack(param2, combined2 byte) int {
	hi := int(param2)
	lo := (int(combined2>>4) + hi) & 0x0F
	return hi<<4 | lo
}
