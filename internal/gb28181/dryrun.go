package gb28181

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"gb-ptz-remote/internal/ptz"
)

// DryRun logs commands instead of sending them. Used when no gateway is
// configured.
type DryRun struct {
	log     zerolog.Logger
	address AddressFunc

	mu   sync.Mutex
	sent []ptz.Command
}

func NewDryRun(address AddressFunc, log zerolog.Logger) *DryRun {
	if address == nil {
		address = func(string) uint16 { return DefaultAddress }
	}
	return &DryRun{log: log, address: address}
}

func (d *DryRun) Send(ctx context.Context, cmd ptz.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.sent = append(d.sent, cmd)
	d.mu.Unlock()

	d.log.Info().Str("device", cmd.DeviceID).Str("channel", cmd.ChannelID).
		Str("ptz_cmd", FrameString(cmd, d.address(cmd.DeviceID))).Msg("[gateway] dry run")
	return nil
}

// Sent returns a copy of the commands seen so far
func (d *DryRun) Sent() []ptz.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ptz.Command(nil), d.sent...)
}

func (d *DryRun) Close() error {
	return nil
}
