package ptz

import "fmt"

// Command is one GB/T 28181 front-end control command (Annex A.3.1, bytes 4-7)
// addressed to a device channel.
type Command struct {
	DeviceID  string
	ChannelID string

	Code      byte // byte 4: command selector
	Param1    byte // byte 5: data 1
	Param2    byte // byte 6: data 2
	Combined2 byte // byte 7: high nibble data 3, low nibble address high bits
}

// Bytes returns the command quadruple in wire order
func (c Command) Bytes() [4]byte {
	return [4]byte{c.Code, c.Param1, c.Param2, c.Combined2}
}

// IsStop reports whether the command halts all movement
func (c Command) IsStop() bool {
	return c.Code == 0 && c.Param1 == 0 && c.Param2 == 0 && c.Combined2 == 0
}

func (c Command) String() string {
	return fmt.Sprintf("%02X %02X %02X %02X", c.Code, c.Param1, c.Param2, c.Combined2)
}

// Family groups actions sharing a parameter layout
type Family string

const (
	FamilyMove      Family = "move"
	FamilyIris      Family = "iris"
	FamilyFocus     Family = "focus"
	FamilyPreset    Family = "preset"
	FamilyCruise    Family = "cruise"
	FamilyScan      Family = "scan"
	FamilyWiper     Family = "wiper"
	FamilyAuxiliary Family = "auxiliary"
	FamilyCommon    Family = "common"
)

var families = []Family{
	FamilyMove, FamilyIris, FamilyFocus, FamilyPreset, FamilyCruise,
	FamilyScan, FamilyWiper, FamilyAuxiliary, FamilyCommon,
}

// ParseFamily returns the family with the given name
func ParseFamily(s string) (Family, bool) {
	for _, f := range families {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Families lists every command family
func Families() []Family {
	return append([]Family(nil), families...)
}

// Params holds the raw caller inputs. Optional values are nil when the
// caller did not supply them. Form keys are the front-end parameter names.
type Params struct {
	// Directional speeds, truncated to a byte on encoding
	HorizonSpeed  int `json:"horizon_speed" form:"horizonSpeed"`
	VerticalSpeed int `json:"vertical_speed" form:"verticalSpeed"`
	ZoomSpeed     int `json:"zoom_speed" form:"zoomSpeed"`

	Speed    *int `json:"speed,omitempty" form:"speed"`
	Time     *int `json:"time,omitempty" form:"time"`
	PresetID *int `json:"preset_id,omitempty" form:"presetId"`
	CruiseID *int `json:"cruise_id,omitempty" form:"cruiseId"`
	ScanID   *int `json:"scan_id,omitempty" form:"scanId"`
	SwitchID *int `json:"switch_id,omitempty" form:"switchId"`

	// Raw quadruple for the common family
	Code      *int `json:"cmd_code,omitempty" form:"cmdCode"`
	Param1    *int `json:"parameter1,omitempty" form:"parameter1"`
	Param2    *int `json:"parameter2,omitempty" form:"parameter2"`
	Combined2 *int `json:"combind_code2,omitempty" form:"combindCode2"`
}

// Request is a logical action of a family plus its parameters
type Request struct {
	Family Family `json:"family"`
	Action string `json:"action"`
	Params Params `json:"params"`
}

// Int returns a pointer to v, for filling optional Params fields
func Int(v int) *int {
	return &v
}
