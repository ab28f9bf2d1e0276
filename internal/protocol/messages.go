package protocol

import (
	"encoding/json"

	"gb-ptz-remote/internal/ptz"
)

// Message types
const (
	TypePing         = "ping"
	TypePong         = "pong"
	TypeStatus       = "status"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice_candidate"
	TypePTZCommand   = "ptz_command"
	TypePTZStop      = "ptz_stop"
	TypePTZAction    = "ptz_action"
	TypePTZResult    = "ptz_result"
	TypeError        = "error"
)

// Error codes
const (
	ErrCameraDisconnected = "CAMERA_DISCONNECTED"
	ErrRTSP               = "RTSP_ERROR"
	ErrTransport          = "TRANSPORT_ERROR"
	ErrRange              = "RANGE_ERROR"
	ErrInvalidMessage     = "INVALID_MESSAGE"
)

// Message is the base envelope for all WebSocket messages
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PingPayload for ping messages
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// PongPayload for pong messages
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// StatusPayload for status messages
type StatusPayload struct {
	DeviceID        string   `json:"device_id"`
	ChannelID       string   `json:"channel_id"`
	DeviceName      string   `json:"device_name,omitempty"`
	CameraConnected bool     `json:"camera_connected"`
	ControlProtocol string   `json:"control_protocol"`
	VideoProtocol   string   `json:"video_protocol"`
	Families        []string `json:"families"`

	// Actions lists the named actions of each family for ptz_action
	Actions map[string][]string `json:"actions"`
}

// SDPPayload for offer/answer messages
type SDPPayload struct {
	SDP string `json:"sdp"`
}

// ICECandidatePayload for ICE candidate messages
type ICECandidatePayload struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdp_mid"`
	SDPMLineIndex uint16 `json:"sdp_mline_index"`
}

// PTZCommandPayload is an analog stick update, each axis -1.0 to 1.0
type PTZCommandPayload = ptz.Vector

// PTZActionPayload is a named action of a command family
type PTZActionPayload = ptz.Request

// PTZResultPayload acknowledges a ptz_action with the frame that was sent
type PTZResultPayload struct {
	Family string `json:"family"`
	Action string `json:"action"`
	PTZCmd string `json:"ptz_cmd"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a new message with the given type and payload
func NewMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// ParsePayload unmarshals the payload into the given struct
func (m *Message) ParsePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}
