package ptz

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad(code, p1, p2, c2 byte) Command {
	return Command{Code: code, Param1: p1, Param2: p2, Combined2: c2}
}

func TestEncodeScenarios(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Command
	}{
		{
			name: "upleft",
			req:  Request{FamilyMove, "upleft", Params{HorizonSpeed: 100, VerticalSpeed: 100}},
			want: quad(0x0A, 100, 100, 0),
		},
		{
			name: "stop zeroes speeds",
			req:  Request{FamilyMove, "stop", Params{HorizonSpeed: 100, VerticalSpeed: 100, ZoomSpeed: 100}},
			want: quad(0, 0, 0, 0),
		},
		{
			name: "iris in",
			req:  Request{FamilyIris, "in", Params{Speed: Int(200)}},
			want: quad(0x48, 0, 200, 0),
		},
		{
			name: "preset add",
			req:  Request{FamilyPreset, "add", Params{PresetID: Int(10)}},
			want: quad(0x81, 1, 10, 0),
		},
		{
			name: "cruise speed",
			req:  Request{FamilyCruise, "speed", Params{CruiseID: Int(5), Speed: Int(300)}},
			want: quad(0x86, 5, 18, 0xA0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeFamilies(t *testing.T) {
	tests := []struct {
		family Family
		action string
		params Params
		want   Command
	}{
		{FamilyMove, "downright", Params{HorizonSpeed: 1, VerticalSpeed: 2, ZoomSpeed: 3}, quad(0x05, 1, 2, 3)},
		{FamilyMove, "zoomin", Params{ZoomSpeed: 7}, quad(0x10, 0, 0, 7)},
		{FamilyMove, "spin", Params{HorizonSpeed: 9, VerticalSpeed: 9}, quad(0, 9, 9, 0)},
		{FamilyMove, "left", Params{HorizonSpeed: 300}, quad(0x02, 44, 0, 0)},
		{FamilyIris, "out", Params{Speed: Int(5)}, quad(0x44, 0, 5, 0)},
		{FamilyIris, "stop", Params{Speed: Int(5)}, quad(0x40, 0, 0, 0)},
		{FamilyIris, "blink", Params{Speed: Int(5)}, quad(0x40, 0, 5, 0)},
		{FamilyFocus, "near", Params{Speed: Int(50)}, quad(0x42, 50, 0, 0)},
		{FamilyFocus, "far", Params{Speed: Int(50)}, quad(0x41, 50, 0, 0)},
		{FamilyFocus, "stop", Params{}, quad(0x40, 0, 0, 0)},
		{FamilyPreset, "call", Params{PresetID: Int(255)}, quad(0x82, 1, 255, 0)},
		{FamilyPreset, "delete", Params{PresetID: Int(1)}, quad(0x83, 1, 1, 0)},
		{FamilyCruise, "point-add", Params{CruiseID: Int(2), PresetID: Int(3)}, quad(0x84, 2, 3, 0)},
		{FamilyCruise, "point-delete", Params{CruiseID: Int(2), PresetID: Int(0)}, quad(0x85, 2, 0, 0)},
		{FamilyCruise, "time", Params{CruiseID: Int(2), Time: Int(15)}, quad(0x87, 2, 0, 0xF0)},
		{FamilyCruise, "start", Params{CruiseID: Int(9)}, quad(0x88, 9, 0, 0)},
		{FamilyCruise, "stop", Params{CruiseID: Int(9)}, quad(0, 0, 0, 0)},
		{FamilyScan, "start", Params{ScanID: Int(4)}, quad(0x89, 4, 0, 0)},
		{FamilyScan, "left", Params{ScanID: Int(4)}, quad(0x89, 4, 1, 0)},
		{FamilyScan, "right", Params{ScanID: Int(4)}, quad(0x89, 4, 2, 0)},
		{FamilyScan, "speed", Params{ScanID: Int(4), Speed: Int(4095)}, quad(0x8A, 4, 0xFF, 0)},
		{FamilyScan, "stop", Params{ScanID: Int(4)}, quad(0, 0, 0, 0)},
		{FamilyWiper, "on", Params{}, quad(0x8C, 1, 0, 0)},
		{FamilyWiper, "off", Params{}, quad(0x8D, 1, 0, 0)},
		{FamilyWiper, "toggle", Params{}, quad(0, 1, 0, 0)},
		{FamilyAuxiliary, "on", Params{SwitchID: Int(3)}, quad(0x8C, 3, 0, 0)},
		{FamilyAuxiliary, "off", Params{SwitchID: Int(3)}, quad(0x8D, 3, 0, 0)},
		{FamilyCommon, "", Params{Code: Int(0x29), Param1: Int(1), Param2: Int(2), Combined2: Int(0x30)}, quad(0x29, 1, 2, 0x30)},
	}
	for _, tt := range tests {
		t.Run(string(tt.family)+"/"+tt.action, func(t *testing.T) {
			got, err := Encode(Request{tt.family, tt.action, tt.params})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeStopIgnoresSpeeds(t *testing.T) {
	for _, s := range []int{0, 1, 100, 255, 4096} {
		got, err := Encode(Request{FamilyMove, "stop", Params{HorizonSpeed: s, VerticalSpeed: s, ZoomSpeed: s}})
		require.NoError(t, err)
		assert.True(t, got.IsStop())
	}
}

func TestEncodeRangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		param Param
	}{
		{"preset zero", Request{FamilyPreset, "add", Params{PresetID: Int(0)}}, ParamPresetID},
		{"preset 256", Request{FamilyPreset, "call", Params{PresetID: Int(256)}}, ParamPresetID},
		{"preset missing", Request{FamilyPreset, "delete", Params{}}, ParamPresetID},
		{"cruise id", Request{FamilyCruise, "start", Params{CruiseID: Int(0)}}, ParamCruiseID},
		{"cruise stop id", Request{FamilyCruise, "stop", Params{}}, ParamCruiseID},
		{"cruise point preset", Request{FamilyCruise, "point-add", Params{CruiseID: Int(1), PresetID: Int(0)}}, ParamPresetID},
		{"cruise speed zero", Request{FamilyCruise, "speed", Params{CruiseID: Int(1), Speed: Int(0)}}, ParamSpeed},
		{"cruise time 4096", Request{FamilyCruise, "time", Params{CruiseID: Int(1), Time: Int(4096)}}, ParamTime},
		{"scan id", Request{FamilyScan, "left", Params{ScanID: Int(256)}}, ParamScanID},
		{"scan stop id", Request{FamilyScan, "stop", Params{ScanID: Int(0)}}, ParamScanID},
		{"scan speed", Request{FamilyScan, "speed", Params{ScanID: Int(1)}}, ParamSpeed},
		{"iris speed", Request{FamilyIris, "in", Params{Speed: Int(256)}}, ParamSpeed},
		{"focus missing", Request{FamilyFocus, "far", Params{}}, ParamSpeed},
		{"switch missing", Request{FamilyAuxiliary, "on", Params{}}, ParamSwitchID},
		{"common code", Request{FamilyCommon, "", Params{Code: Int(256), Param1: Int(0), Param2: Int(0), Combined2: Int(0)}}, ParamCode},
		{"common missing", Request{FamilyCommon, "", Params{Code: Int(1)}}, ParamParam1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.req)
			var rerr *RangeError
			require.True(t, errors.As(err, &rerr), "got %v", err)
			assert.Equal(t, tt.param, rerr.Param)
		})
	}
}

func TestEncodeFor(t *testing.T) {
	cmd, err := EncodeFor("34020000001320000001", "34020000001310000001", Request{FamilyWiper, "on", Params{}})
	require.NoError(t, err)
	assert.Equal(t, "34020000001320000001", cmd.DeviceID)
	assert.Equal(t, "34020000001310000001", cmd.ChannelID)
	assert.Equal(t, [4]byte{0x8C, 1, 0, 0}, cmd.Bytes())

	_, err = EncodeFor("d", "c", Request{FamilyPreset, "add", Params{}})
	assert.Error(t, err)
}

func TestEncodeConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 1; i <= 64; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			cmd, err := Encode(Request{FamilyScan, "speed", Params{ScanID: Int(id), Speed: Int(id * 10)}})
			assert.NoError(t, err)
			assert.Equal(t, id*10, Unpack(cmd.Param2, cmd.Combined2))
		}(i)
	}
	wg.Wait()
}
