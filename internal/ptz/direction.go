package ptz

// Movement flags of the command byte
const (
	FlagRight   byte = 0x01
	FlagLeft    byte = 0x02
	FlagDown    byte = 0x04
	FlagUp      byte = 0x08
	FlagZoomIn  byte = 0x10
	FlagZoomOut byte = 0x20
)

// ActionStop halts pan, tilt and zoom
const ActionStop = "stop"

var directions = map[string]byte{
	"right":     FlagRight,
	"left":      FlagLeft,
	"down":      FlagDown,
	"up":        FlagUp,
	"upleft":    FlagUp | FlagLeft,
	"upright":   FlagUp | FlagRight,
	"downleft":  FlagDown | FlagLeft,
	"downright": FlagDown | FlagRight,
	"zoomin":    FlagZoomIn,
	"zoomout":   FlagZoomOut,
}

// ResolveDirection maps a movement action to its command bitmask.
// stop reports whether the speeds must be zeroed as well.
// Unknown actions resolve to 0x00 without error.
func ResolveDirection(action string) (mask byte, stop bool) {
	if action == ActionStop {
		return 0, true
	}
	return directions[action], false
}

// Directions returns the named movement actions, stop excluded
func Directions() []string {
	names := make([]string, 0, len(directions))
	for name := range directions {
		names = append(names, name)
	}
	return names
}
