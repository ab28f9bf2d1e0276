package ptz

import "context"

// Transport delivers encoded commands to devices. Ordering, delivery and
// per-device serialization are its concern, not the encoder's.
type Transport interface {
	// Send hands one command to the device channel it is addressed to
	Send(ctx context.Context, cmd Command) error

	// Close releases the transport
	Close() error
}
