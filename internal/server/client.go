package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	pwebrtc "github.com/pion/webrtc/v3"
	"github.com/rs/zerolog"

	"gb-ptz-remote/internal/api"
	"gb-ptz-remote/internal/gb28181"
	"gb-ptz-remote/internal/joystick"
	"gb-ptz-remote/internal/protocol"
	"gb-ptz-remote/internal/ptz"
	"gb-ptz-remote/internal/registry"
	"gb-ptz-remote/internal/webrtc"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	actionWait = 5 * time.Second
)

// Client is one browser controlling one device channel
type Client struct {
	id        string
	conn      *websocket.Conn
	server    *Server
	device    registry.Device
	channelID string
	log       zerolog.Logger
	joystick  *joystick.Coalescer
	webrtc    *webrtc.Session
	send      chan []byte
	rtpChan   chan []byte
	stopRTP   chan struct{}
	mu        sync.Mutex
	closed    bool
}

func (s *Server) handleWebSocket(c *gin.Context) {
	deviceID, channelID := c.Query("device"), c.Query("channel")

	device, err := s.devices.Get(deviceID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, registry.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, api.Response{Code: api.CodeNotFound, Msg: err.Error()})
		return
	}
	if !device.HasChannel(channelID) {
		c.JSON(http.StatusNotFound, api.Response{Code: api.CodeNotFound, Msg: "channel not found: " + channelID})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("[server] websocket upgrade")
		return
	}

	id := uuid.NewString()
	log := s.log.With().Str("client", id).Str("device", device.ID).Str("channel", channelID).Logger()

	client := &Client{
		id:        id,
		conn:      conn,
		server:    s,
		device:    device,
		channelID: channelID,
		log:       log,
		joystick:  joystick.New(s.transport, device.ID, channelID, s.cfg.JoystickInterval, log),
		send:      make(chan []byte, 256),
		rtpChan:   make(chan []byte, 500),
		stopRTP:   make(chan struct{}),
	}

	s.addClient(client)
	log.Debug().Msg("[server] client connected")

	go client.writePump()
	go client.readPump()

	client.sendStatus()

	if _, ok := s.sources[device.ID]; ok {
		if err = client.initWebRTC(); err != nil {
			log.Warn().Err(err).Msg("[server] failed to initialize webrtc")
		}
	}
}

func (c *Client) initWebRTC() error {
	session, err := webrtc.NewSession(c.server.rtcAPI, c.server.cfg.WebRTC, c.log, func(cand pwebrtc.ICECandidateInit) {
		payload := protocol.ICECandidatePayload{Candidate: cand.Candidate}
		if cand.SDPMid != nil {
			payload.SDPMid = *cand.SDPMid
		}
		if cand.SDPMLineIndex != nil {
			payload.SDPMLineIndex = *cand.SDPMLineIndex
		}
		c.sendMessage(protocol.TypeICECandidate, payload)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return session.Close()
	}
	c.webrtc = session
	c.mu.Unlock()

	if err = session.AddVideoTrack(c.device.ID); err != nil {
		return err
	}

	offer, err := session.CreateOffer()
	if err != nil {
		return err
	}

	c.sendMessage(protocol.TypeOffer, protocol.SDPPayload{SDP: offer})

	go c.forwardRTP(session)

	return nil
}

func (c *Client) forwardRTP(session *webrtc.Session) {
	for {
		select {
		case <-c.stopRTP:
			return
		case packet := <-c.rtpChan:
			if err := session.WriteRTP(packet); err != nil {
				// Client disconnected or track closed
				return
			}
		}
	}
}

func (c *Client) sendStatus() {
	families := ptz.Families()
	names := make([]string, len(families))
	actions := make(map[string][]string, len(families))
	for i, f := range families {
		names[i] = string(f)
		if a := ptz.Actions(f); len(a) > 0 {
			actions[string(f)] = a
		}
	}

	src := c.server.sources[c.device.ID]

	c.sendMessage(protocol.TypeStatus, protocol.StatusPayload{
		DeviceID:        c.device.ID,
		ChannelID:       c.channelID,
		DeviceName:      c.device.Name,
		CameraConnected: src != nil && src.Connected(),
		ControlProtocol: "gb28181",
		VideoProtocol:   "rtsp",
		Families:        names,
		Actions:         actions,
	})
}

func (c *Client) sendError(code string, err error) {
	c.sendMessage(protocol.TypeError, protocol.ErrorPayload{Code: code, Message: err.Error()})
}

func (c *Client) sendMessage(msgType string, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		c.log.Error().Err(err).Msg("[server] failed to create message")
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("[server] failed to marshal message")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.log.Warn().Str("type", msgType).Msg("[server] send buffer full, dropping message")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.Close()
		c.log.Debug().Msg("[server] client disconnected")
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("[server] websocket")
			}
			return
		}

		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(protocol.ErrInvalidMessage, errors.New("failed to parse message"))
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		var payload protocol.PingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.sendMessage(protocol.TypePong, protocol.PongPayload{
			ClientTimestamp: payload.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		})

	case protocol.TypeAnswer:
		var payload protocol.SDPPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		if session := c.session(); session != nil {
			if err := session.SetAnswer(payload.SDP); err != nil {
				c.log.Warn().Err(err).Msg("[server] failed to set answer")
			}
		}

	case protocol.TypeICECandidate:
		var payload protocol.ICECandidatePayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		if session := c.session(); session != nil {
			if err := session.AddICECandidate(payload.Candidate, payload.SDPMid, payload.SDPMLineIndex); err != nil {
				c.log.Warn().Err(err).Msg("[server] failed to add ice candidate")
			}
		}

	case protocol.TypePTZCommand:
		var payload protocol.PTZCommandPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.sendError(protocol.ErrInvalidMessage, err)
			return
		}
		c.joystick.Update(payload)

	case protocol.TypePTZStop:
		ctx, cancel := context.WithTimeout(context.Background(), actionWait)
		defer cancel()
		if err := c.joystick.Stop(ctx); err != nil {
			c.sendError(protocol.ErrTransport, err)
		}

	case protocol.TypePTZAction:
		var payload protocol.PTZActionPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.sendError(protocol.ErrInvalidMessage, err)
			return
		}
		c.handlePTZAction(payload)

	default:
		c.log.Debug().Str("type", msg.Type).Msg("[server] unknown message type")
	}
}

func (c *Client) handlePTZAction(req protocol.PTZActionPayload) {
	if _, ok := ptz.ParseFamily(string(req.Family)); !ok {
		c.sendError(protocol.ErrInvalidMessage, errors.New("unknown family: "+string(req.Family)))
		return
	}

	cmd, err := ptz.EncodeFor(c.device.ID, c.channelID, req)
	if err != nil {
		c.sendError(protocol.ErrRange, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionWait)
	defer cancel()

	if err = c.server.transport.Send(ctx, cmd); err != nil {
		c.log.Error().Err(err).Msg("[server] command send failed")
		c.sendError(protocol.ErrTransport, err)
		return
	}

	c.sendMessage(protocol.TypePTZResult, protocol.PTZResultPayload{
		Family: string(req.Family),
		Action: req.Action,
		PTZCmd: gb28181.FrameString(cmd, c.device.PTZAddress()),
	})
}

func (c *Client) session() *webrtc.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.webrtc
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true

	close(c.stopRTP)
	close(c.send)

	session := c.webrtc
	c.webrtc = nil
	c.mu.Unlock()

	c.joystick.Close()

	if session != nil {
		_ = session.Close()
	}
}
