package ptz

import "fmt"

// Param names a caller-supplied parameter
type Param string

const (
	ParamHorizonSpeed  Param = "horizonSpeed"
	ParamVerticalSpeed Param = "verticalSpeed"
	ParamZoomSpeed     Param = "zoomSpeed"
	ParamSpeed         Param = "speed"
	ParamTime          Param = "time"
	ParamPresetID      Param = "presetId"
	ParamCruiseID      Param = "cruiseId"
	ParamScanID        Param = "scanId"
	ParamSwitchID      Param = "switchId"
	ParamCode          Param = "cmdCode"
	ParamParam1        Param = "parameter1"
	ParamParam2        Param = "parameter2"
	ParamCombined2     Param = "combindCode2"
)

// RangeError reports a parameter outside its protocol range.
// Value is nil when the parameter was missing.
type RangeError struct {
	Param Param
	Min   int
	Max   int
	Value *int
}

func (e *RangeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s is required", e.Param)
	}
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Param, e.Min, e.Max, *e.Value)
}

// Bounds is an inclusive range
type Bounds struct {
	Min, Max int
}

var (
	idBounds     = Bounds{1, 255}
	packedBounds = Bounds{1, 4095}
	byteBounds   = Bounds{0, 255}
)

// Check validates a required parameter against b
func (b Bounds) Check(p Param, v *int) error {
	if v == nil || *v < b.Min || *v > b.Max {
		return &RangeError{Param: p, Min: b.Min, Max: b.Max, Value: v}
	}
	return nil
}

// check binds a parameter name to its range and the Params field holding it
type check struct {
	param  Param
	bounds Bounds
	value  func(*Params) *int
}

func (c check) run(p *Params) error {
	return c.bounds.Check(c.param, c.value(p))
}

var (
	checkPresetID    = check{ParamPresetID, idBounds, func(p *Params) *int { return p.PresetID }}
	checkCruiseID    = check{ParamCruiseID, idBounds, func(p *Params) *int { return p.CruiseID }}
	checkScanID      = check{ParamScanID, idBounds, func(p *Params) *int { return p.ScanID }}
	checkSpeed       = check{ParamSpeed, packedBounds, func(p *Params) *int { return p.Speed }}
	checkTime        = check{ParamTime, packedBounds, func(p *Params) *int { return p.Time }}
	checkSwitchID    = check{ParamSwitchID, byteBounds, func(p *Params) *int { return p.SwitchID }}
	checkPointPreset = check{ParamPresetID, byteBounds, func(p *Params) *int { return p.PresetID }}
	checkCode        = check{ParamCode, byteBounds, func(p *Params) *int { return p.Code }}
	checkParam1      = check{ParamParam1, byteBounds, func(p *Params) *int { return p.Param1 }}
	checkParam2      = check{ParamParam2, byteBounds, func(p *Params) *int { return p.Param2 }}
	checkCombined2   = check{ParamCombined2, byteBounds, func(p *Params) *int { return p.Combined2 }}
)

// checks is the general range of every bounded parameter. Table entries use
// the same values; only cruise point delete widens presetId to admit 0.
var checks = map[Param]check{
	ParamPresetID:  checkPresetID,
	ParamCruiseID:  checkCruiseID,
	ParamScanID:    checkScanID,
	ParamSpeed:     checkSpeed,
	ParamTime:      checkTime,
	ParamSwitchID:  checkSwitchID,
	ParamCode:      checkCode,
	ParamParam1:    checkParam1,
	ParamParam2:    checkParam2,
	ParamCombined2: checkCombined2,
}

// Validate checks the named parameter against its protocol range.
// Directional speeds have no bound and always pass.
func Validate(p Param, v *int) error {
	c, ok := checks[p]
	if !ok {
		return nil
	}
	return c.bounds.Check(p, v)
}

// ValidateLensSpeed checks an iris or focus speed. A stop forces the speed
// to zero whatever the caller sent.
func ValidateLensSpeed(stop bool, v *int) (int, error) {
	if stop {
		return 0, nil
	}
	if err := byteBounds.Check(ParamSpeed, v); err != nil {
		return 0, err
	}
	return *v, nil
}

func (c check) set() bool {
	return c.value != nil
}
