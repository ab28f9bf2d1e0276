package rtsp

import (
	"errors"
	"sync"
	"time"

	"github.com/bluenviron/gortsplib/v4"
	"github.com/bluenviron/gortsplib/v4/pkg/base"
	"github.com/bluenviron/gortsplib/v4/pkg/description"
	"github.com/bluenviron/gortsplib/v4/pkg/format"
	"github.com/pion/rtp"
	"github.com/rs/zerolog"
)

const (
	packetBuffer = 500
	maxBackoff   = 30 * time.Second
)

// ErrNoVideo means the camera offers no video media
var ErrNoVideo = errors.New("rtsp: no video media")

// Source pulls the video of one device camera and exposes its RTP packets
type Source struct {
	url     string
	log     zerolog.Logger
	packets chan []byte
	stopCh  chan struct{}

	// guards packets against sends after Close
	pktMu     sync.RWMutex
	pktClosed bool

	mu        sync.Mutex
	client    *gortsplib.Client
	connected bool
	stopped   bool
}

// NewSource validates the URL; nothing is dialed until Start
func NewSource(rawURL string, log zerolog.Logger) (*Source, error) {
	if _, err := base.ParseURL(rawURL); err != nil {
		return nil, err
	}
	return &Source{
		url:     rawURL,
		log:     log,
		packets: make(chan []byte, packetBuffer),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start connects and begins playing. On a later disconnect the source
// reconnects on its own with exponential backoff.
func (s *Source) Start() error {
	if err := s.connect(); err != nil {
		return err
	}
	go s.monitor()
	return nil
}

// Packets returns the channel of marshaled RTP packets. It is closed by Close.
func (s *Source) Packets() <-chan []byte {
	return s.packets
}

// Connected reports whether the camera is currently playing
func (s *Source) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close stops the source
func (s *Source) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.connected = false
	client := s.client
	s.mu.Unlock()

	close(s.stopCh)
	if client != nil {
		client.Close()
	}

	s.pktMu.Lock()
	s.pktClosed = true
	close(s.packets)
	s.pktMu.Unlock()
	return nil
}

func (s *Source) connect() error {
	u, err := base.ParseURL(s.url)
	if err != nil {
		return err
	}

	transport := gortsplib.TransportTCP
	client := &gortsplib.Client{
		Transport:    &transport,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		OnDecodeError: func(err error) {
			s.log.Debug().Err(err).Msg("[rtsp] decode")
		},
	}

	if err = client.Start(u.Scheme, u.Host); err != nil {
		return err
	}

	desc, _, err := client.Describe(u)
	if err != nil {
		client.Close()
		return err
	}

	media := videoMedia(desc)
	if media == nil {
		client.Close()
		return ErrNoVideo
	}

	if _, err = client.Setup(desc.BaseURL, media, 0, 0); err != nil {
		client.Close()
		return err
	}

	client.OnPacketRTPAny(func(_ *description.Media, _ format.Format, pkt *rtp.Packet) {
		buf, err := pkt.Marshal()
		if err != nil {
			return
		}
		s.pktMu.RLock()
		defer s.pktMu.RUnlock()
		if s.pktClosed {
			return
		}
		select {
		case s.packets <- buf:
		default:
			// consumer is slow, drop
		}
	})

	if _, err = client.Play(nil); err != nil {
		client.Close()
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		client.Close()
		return nil
	}
	s.client = client
	s.connected = true
	s.mu.Unlock()

	s.log.Info().Str("url", s.url).Msg("[rtsp] playing")
	return nil
}

// videoMedia prefers H264/H265 and falls back to the first video media
func videoMedia(desc *description.Session) *description.Media {
	for _, media := range desc.Medias {
		for _, forma := range media.Formats {
			switch forma.(type) {
			case *format.H264, *format.H265:
				return media
			}
		}
	}
	for _, media := range desc.Medias {
		if media.Type == description.MediaTypeVideo && len(media.Formats) > 0 {
			return media
		}
	}
	return nil
}

// monitor waits for the connection to drop and reconnects
func (s *Source) monitor() {
	for {
		s.mu.Lock()
		client := s.client
		s.mu.Unlock()
		if client == nil {
			return
		}

		err := client.Wait()

		s.mu.Lock()
		s.connected = false
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		s.log.Warn().Err(err).Msg("[rtsp] connection lost")

		if !s.reconnect() {
			return
		}
	}
}

// reconnect retries until connected or closed
func (s *Source) reconnect() bool {
	for attempt := 1; ; attempt++ {
		delay := min(time.Duration(1<<uint(attempt-1))*time.Second, maxBackoff)
		s.log.Info().Int("attempt", attempt).Dur("delay", delay).Msg("[rtsp] reconnect")

		select {
		case <-time.After(delay):
		case <-s.stopCh:
			return false
		}

		if err := s.connect(); err != nil {
			s.log.Warn().Err(err).Msg("[rtsp] reconnect failed")
			continue
		}
		return true
	}
}
