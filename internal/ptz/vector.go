package ptz

const deadZone = 0.05

// Vector is an analog pan/tilt/zoom request, each axis -1.0 to 1.0.
// pan: left to right, tilt: down to up, zoom: out (wide) to in (tele).
type Vector struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
	Zoom float64 `json:"zoom"`
}

// EncodeVector builds a movement command from an analog vector. Axes inside
// the dead zone are idle; a fully idle vector is the stop command.
func EncodeVector(v Vector) Command {
	var cmd Command

	switch {
	case v.Pan < -deadZone:
		cmd.Code |= FlagLeft
	case v.Pan > deadZone:
		cmd.Code |= FlagRight
	}
	switch {
	case v.Tilt > deadZone:
		cmd.Code |= FlagUp
	case v.Tilt < -deadZone:
		cmd.Code |= FlagDown
	}
	switch {
	case v.Zoom > deadZone:
		cmd.Code |= FlagZoomIn
	case v.Zoom < -deadZone:
		cmd.Code |= FlagZoomOut
	}

	if cmd.Code&(FlagLeft|FlagRight) != 0 {
		cmd.Param1 = byte(scale(v.Pan, 255))
	}
	if cmd.Code&(FlagUp|FlagDown) != 0 {
		cmd.Param2 = byte(scale(v.Tilt, 255))
	}
	if cmd.Code&(FlagZoomIn|FlagZoomOut) != 0 {
		// zoom speed is data 3, the high nibble of byte 7
		cmd.Combined2 = byte(scale(v.Zoom, 15)) << 4
	}

	return cmd
}

// scale maps |x| in (0, 1] to 1..max
func scale(x float64, max int) int {
	if x < 0 {
		x = -x
	}
	return clampInt(int(x*float64(max)), 1, max)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
