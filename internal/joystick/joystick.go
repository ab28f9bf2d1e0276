// Package joystick turns a stream of analog pan/tilt/zoom updates into
// rate-limited GB/T 28181 movement commands.
package joystick

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gb-ptz-remote/internal/ptz"
)

// DefaultInterval is ~20 commands/sec
const DefaultInterval = 50 * time.Millisecond

const sendTimeout = time.Second

// Coalescer sends the latest vector immediately when possible and schedules
// a trailing send for updates arriving during the cooldown, so the final
// position of the stick always reaches the camera.
type Coalescer struct {
	transport ptz.Transport
	deviceID  string
	channelID string
	interval  time.Duration
	log       zerolog.Logger

	mu            sync.Mutex
	pending, sent ptz.Vector
	lastSendTime  time.Time
	timerRunning  bool
	stopCh        chan struct{}
	closed        bool
}

// New returns a Coalescer driving one device channel
func New(t ptz.Transport, deviceID, channelID string, interval time.Duration, log zerolog.Logger) *Coalescer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coalescer{
		transport: t,
		deviceID:  deviceID,
		channelID: channelID,
		interval:  interval,
		log:       log,
		stopCh:    make(chan struct{}),
	}
}

// Update records the latest stick position
func (c *Coalescer) Update(v ptz.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.pending = v
	if c.pending == c.sent {
		return
	}

	now := time.Now()
	if now.Sub(c.lastSendTime) >= c.interval {
		c.flush()
		c.lastSendTime = now
	} else if !c.timerRunning {
		c.timerRunning = true
		remaining := c.interval - now.Sub(c.lastSendTime)
		go func() {
			select {
			case <-time.After(remaining):
				c.mu.Lock()
				if !c.closed {
					c.flush()
					c.lastSendTime = time.Now()
				}
				c.timerRunning = false
				c.mu.Unlock()
			case <-c.stopCh:
			}
		}()
	}
}

// Stop halts all movement immediately, bypassing the throttle
func (c *Coalescer) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.pending = ptz.Vector{}
	c.sent = ptz.Vector{}
	c.mu.Unlock()

	return c.transport.Send(ctx, c.command(ptz.Vector{}))
}

// Close stops the trailing timer. Pending updates are discarded.
func (c *Coalescer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.stopCh)
}

// flush sends pending if it changed, mu held
func (c *Coalescer) flush() {
	if c.pending == c.sent {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := c.transport.Send(ctx, c.command(c.pending)); err != nil {
		c.log.Warn().Err(err).Str("device", c.deviceID).Msg("[joystick] send")
		return
	}
	c.sent = c.pending
}

func (c *Coalescer) command(v ptz.Vector) ptz.Command {
	cmd := ptz.EncodeVector(v)
	cmd.DeviceID = c.deviceID
	cmd.ChannelID = c.channelID
	return cmd
}
