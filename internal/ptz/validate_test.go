package ptz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIDs(t *testing.T) {
	for _, p := range []Param{ParamPresetID, ParamCruiseID, ParamScanID} {
		t.Run(string(p), func(t *testing.T) {
			assert.NoError(t, Validate(p, Int(1)))
			assert.NoError(t, Validate(p, Int(255)))
			assert.Error(t, Validate(p, Int(0)))
			assert.Error(t, Validate(p, Int(256)))
			assert.Error(t, Validate(p, nil))
		})
	}
}

func TestValidatePacked(t *testing.T) {
	for _, p := range []Param{ParamSpeed, ParamTime} {
		t.Run(string(p), func(t *testing.T) {
			assert.NoError(t, Validate(p, Int(1)))
			assert.NoError(t, Validate(p, Int(4095)))
			assert.Error(t, Validate(p, Int(0)))
			assert.Error(t, Validate(p, Int(4096)))
			assert.Error(t, Validate(p, nil))
		})
	}
}

func TestValidateDirectionalSpeedsUnbounded(t *testing.T) {
	assert.NoError(t, Validate(ParamHorizonSpeed, Int(1000)))
	assert.NoError(t, Validate(ParamZoomSpeed, nil))
}

func TestRangeErrorMessage(t *testing.T) {
	err := Validate(ParamPresetID, Int(0))

	var rerr *RangeError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ParamPresetID, rerr.Param)
	assert.Equal(t, 1, rerr.Min)
	assert.Equal(t, 255, rerr.Max)
	assert.Equal(t, "presetId must be between 1 and 255, got 0", err.Error())

	err = Validate(ParamSpeed, nil)
	assert.Equal(t, "speed is required", err.Error())
}

func TestValidateLensSpeed(t *testing.T) {
	v, err := ValidateLensSpeed(false, Int(200))
	require.NoError(t, err)
	assert.Equal(t, 200, v)

	_, err = ValidateLensSpeed(false, Int(256))
	assert.Error(t, err)

	_, err = ValidateLensSpeed(false, Int(-1))
	assert.Error(t, err)

	// stop ignores whatever the caller sent
	v, err = ValidateLensSpeed(true, Int(999))
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestValidateMatchesTable(t *testing.T) {
	for key, spec := range dispatch {
		for _, c := range []check{spec.group, spec.value} {
			if !c.set() {
				continue
			}
			if key == (specKey{FamilyCruise, "point-delete"}) && c.param == ParamPresetID {
				assert.Equal(t, byteBounds, c.bounds)
				continue
			}
			assert.Equal(t, checks[c.param].bounds, c.bounds, "%s %s %s", key.family, key.action, c.param)
		}
	}
	assert.NoError(t, checkPointPreset.run(&Params{PresetID: Int(0)}))
	assert.Error(t, Validate(ParamPresetID, Int(0)))
}
