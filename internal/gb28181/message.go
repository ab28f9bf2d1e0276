package gb28181

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"gb-ptz-remote/internal/ptz"
)

// Control is the MANSCDP DeviceControl request body
type Control struct {
	XMLName  xml.Name `xml:"Control"`
	CmdType  string   `xml:"CmdType"`
	SN       uint32   `xml:"SN"`
	DeviceID string   `xml:"DeviceID"`
	PTZCmd   string   `xml:"PTZCmd"`
	Info     struct {
		ControlPriority int `xml:"ControlPriority"`
	} `xml:"Info"`
}

const (
	cmdTypeDeviceControl = "DeviceControl"
	controlPriority      = 5
	xmlHeader            = `<?xml version="1.0" encoding="GB2312"?>` + "\r\n"
)

// NewDeviceControl builds the DeviceControl body for cmd. The control target
// is the channel; the SIP request itself is addressed to cmd.DeviceID.
func NewDeviceControl(cmd ptz.Command, sn uint32, address uint16) *Control {
	target := cmd.ChannelID
	if target == "" {
		target = cmd.DeviceID
	}
	c := &Control{
		CmdType:  cmdTypeDeviceControl,
		SN:       sn,
		DeviceID: target,
		PTZCmd:   FrameString(cmd, address),
	}
	c.Info.ControlPriority = controlPriority
	return c
}

// Marshal renders the body with the XML declaration GB/T 28181 devices expect
func (c *Control) Marshal() ([]byte, error) {
	body, err := xml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal DeviceControl: %w", err)
	}
	return append([]byte(xmlHeader), body...), nil
}

// UnmarshalControl parses a DeviceControl body
func UnmarshalControl(data []byte) (*Control, error) {
	var c Control
	d := xml.NewDecoder(bytes.NewReader(data))
	// bodies are ASCII, the declared GB2312 needs no conversion
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return r, nil
	}
	if err := d.Decode(&c); err != nil {
		return nil, fmt.Errorf("unmarshal DeviceControl: %w", err)
	}
	return &c, nil
}
