package gb28181

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gb-ptz-remote/internal/ptz"
)

func TestDeviceControl(t *testing.T) {
	cmd := ptz.Command{
		DeviceID:  "34020000001320000001",
		ChannelID: "34020000001310000001",
		Code:      0x82, Param1: 1, Param2: 10,
	}

	data, err := NewDeviceControl(cmd, 17, DefaultAddress).Marshal()
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="GB2312"?>`))
	assert.Contains(t, s, "<CmdType>DeviceControl</CmdType>")
	assert.Contains(t, s, "<SN>17</SN>")
	assert.Contains(t, s, "<DeviceID>34020000001310000001</DeviceID>")
	assert.Contains(t, s, "<PTZCmd>A50F0182010A0042</PTZCmd>")
	assert.Contains(t, s, "<Info><ControlPriority>5</ControlPriority></Info>")

	c, err := UnmarshalControl(data)
	require.NoError(t, err)
	assert.Equal(t, "DeviceControl", c.CmdType)
	assert.Equal(t, uint32(17), c.SN)
	assert.Equal(t, "A50F0182010A0042", c.PTZCmd)
}

func TestDeviceControlWithoutChannel(t *testing.T) {
	c := NewDeviceControl(ptz.Command{DeviceID: "34020000001320000001"}, 1, DefaultAddress)
	assert.Equal(t, "34020000001320000001", c.DeviceID)
}
