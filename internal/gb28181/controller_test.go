package gb28181

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gb-ptz-remote/internal/ptz"
)

func listenGateway(t *testing.T) net.PacketConn {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })
	return pc
}

func readPacket(t *testing.T, pc net.PacketConn) []byte {
	buf := make([]byte, 2048)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestControllerSend(t *testing.T) {
	pc := listenGateway(t)

	ctrl, err := NewController(Config{Address: pc.LocalAddr().String()}, nil, zerolog.Nop())
	require.NoError(t, err)
	defer ctrl.Close()

	cmd := ptz.Command{DeviceID: "34020000001320000001", ChannelID: "34020000001310000001", Code: 0x82, Param1: 1, Param2: 10}
	require.NoError(t, ctrl.Send(context.Background(), cmd))

	packet := readPacket(t, pc)
	require.Greater(t, len(packet), 8)
	assert.Equal(t, []byte{0x01, 0x00}, packet[:2])
	assert.Equal(t, len(packet)-8, int(binary.BigEndian.Uint16(packet[2:4])))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(packet[4:8]))

	deviceID, body, ok := bytes.Cut(packet[8:], []byte("\r\n"))
	require.True(t, ok)
	assert.Equal(t, "34020000001320000001", string(deviceID))

	c, err := UnmarshalControl(body)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.SN)
	assert.Equal(t, "A50F0182010A0042", c.PTZCmd)
}

func TestControllerSendsEveryMove(t *testing.T) {
	pc := listenGateway(t)

	address := func(string) uint16 { return 0x123 }
	ctrl, err := NewController(Config{Address: pc.LocalAddr().String()}, address, zerolog.Nop())
	require.NoError(t, err)
	defer ctrl.Close()

	ctx := context.Background()
	left := ptz.Command{DeviceID: "d", ChannelID: "c", Code: ptz.FlagLeft, Param1: 10}
	right := ptz.Command{DeviceID: "d", ChannelID: "c", Code: ptz.FlagRight, Param1: 10}

	require.NoError(t, ctrl.Send(ctx, left))
	require.NoError(t, ctrl.Send(ctx, right))
	require.NoError(t, ctrl.Send(ctx, ptz.Command{DeviceID: "d", ChannelID: "c"}))

	for i, want := range []string{
		FrameString(left, 0x123),
		FrameString(right, 0x123),
		FrameString(ptz.Command{}, 0x123),
	} {
		packet := readPacket(t, pc)
		assert.Equal(t, uint32(i+1), binary.BigEndian.Uint32(packet[4:8]))
		assert.Contains(t, string(packet), want)
	}
}

func TestControllerClosed(t *testing.T) {
	pc := listenGateway(t)

	ctrl, err := NewController(Config{Address: pc.LocalAddr().String()}, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ctrl.Close())
	require.NoError(t, ctrl.Close())

	err = ctrl.Send(context.Background(), ptz.Command{DeviceID: "d"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewControllerBadProtocol(t *testing.T) {
	_, err := NewController(Config{Address: "127.0.0.1:1", Protocol: "sctp"}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestDryRun(t *testing.T) {
	d := NewDryRun(nil, zerolog.Nop())
	require.NoError(t, d.Send(context.Background(), ptz.Command{DeviceID: "d", Code: 0x8C, Param1: 1}))

	sent := d.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, byte(0x8C), sent[0].Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, d.Send(ctx, ptz.Command{}))
	assert.NoError(t, d.Close())
}
