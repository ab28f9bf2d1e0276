package gb28181

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gb-ptz-remote/internal/ptz"
)

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = time.Second
)

// Config for the gateway relay
type Config struct {
	// For UDP: address like "192.168.1.10:15060"
	// For TCP: address like "192.168.1.10:15061"
	Address  string `yaml:"address"`
	Protocol string `yaml:"protocol"` // "udp" or "tcp"
}

// AddressFunc returns the PTZ address of a device
type AddressFunc func(deviceID string) uint16

// Controller relays DeviceControl bodies to a SIP gateway, which wraps each
// one in a MESSAGE request to the device. It implements ptz.Transport.
type Controller struct {
	conn     net.Conn
	mu       sync.Mutex
	seqNum   uint32
	protocol string
	address  AddressFunc
	log      zerolog.Logger
	closed   bool
}

// NewController dials the gateway
func NewController(cfg Config, address AddressFunc, log zerolog.Logger) (*Controller, error) {
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = "udp"
	}

	switch protocol {
	case "udp", "tcp":
	default:
		return nil, fmt.Errorf("unsupported gateway protocol: %s", protocol)
	}

	conn, err := net.DialTimeout(protocol, cfg.Address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway over %s: %w", protocol, err)
	}

	if address == nil {
		address = func(string) uint16 { return DefaultAddress }
	}

	return &Controller{
		conn:     conn,
		protocol: protocol,
		address:  address,
		log:      log,
	}, nil
}

// Close closes the gateway connection
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Send relays one command. Every call that returns nil has written its
// packet; pacing of joystick movement is left to the caller.
func (c *Controller) Send(ctx context.Context, cmd ptz.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	body, err := NewDeviceControl(cmd, c.nextSN(), c.address(cmd.DeviceID)).Marshal()
	if err != nil {
		return err
	}
	packet := c.buildPacket(cmd.DeviceID, body)

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if _, err = c.conn.Write(packet); err != nil {
		return fmt.Errorf("failed to relay command to %s: %w", cmd.DeviceID, err)
	}

	c.log.Debug().Str("device", cmd.DeviceID).Str("channel", cmd.ChannelID).
		Stringer("cmd", cmd).Msg("[gateway] sent")
	return nil
}

// nextSN returns the sequence number for the next message, mu held
func (c *Controller) nextSN() uint32 {
	c.seqNum++
	return c.seqNum
}

// buildPacket frames a body for the gateway:
//
//	bytes 0-1: message type (0x01 0x00 for DeviceControl)
//	bytes 2-3: payload length (big endian)
//	bytes 4-7: sequence number (big endian)
//	payload:   device id, CRLF, XML body
func (c *Controller) buildPacket(deviceID string, body []byte) []byte {
	payloadLen := len(deviceID) + 2 + len(body)

	packet := make([]byte, 8, 8+payloadLen)
	packet[0] = 0x01
	packet[1] = 0x00
	binary.BigEndian.PutUint16(packet[2:4], uint16(payloadLen))
	binary.BigEndian.PutUint32(packet[4:8], c.seqNum)

	packet = append(packet, deviceID...)
	packet = append(packet, '\r', '\n')
	return append(packet, body...)
}
