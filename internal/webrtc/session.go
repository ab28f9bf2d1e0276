package webrtc

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/rs/zerolog"
)

// Config for WebRTC sessions
type Config struct {
	ICEServers []string `yaml:"ice_servers"` // STUN/TURN server URLs
	// Static server IPs. When set the server runs ICE-lite and advertises
	// only these host candidates.
	ICEIPs []string `yaml:"ice_ips"`
}

// DefaultConfig returns a default WebRTC configuration
func DefaultConfig() Config {
	return Config{
		ICEServers: []string{
			"stun:stun.l.google.com:19302",
		},
	}
}

// NewAPI builds the pion API for cfg. One API is shared by all sessions.
func NewAPI(cfg Config) (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("failed to register codecs: %w", err)
	}

	var se webrtc.SettingEngine
	if len(cfg.ICEIPs) > 0 {
		se.SetLite(true)
		se.SetNAT1To1IPs(cfg.ICEIPs, webrtc.ICECandidateTypeHost)
	}

	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(se)), nil
}

// Session is the WebRTC peer of one browser client, carrying the video of
// the device it controls
type Session struct {
	pc         *webrtc.PeerConnection
	videoTrack *webrtc.TrackLocalStaticRTP
	log        zerolog.Logger
	mu         sync.Mutex
	closed     bool
}

// NewSession creates a peer connection. onICE receives local candidates.
func NewSession(api *webrtc.API, cfg Config, log zerolog.Logger, onICE func(webrtc.ICECandidateInit)) (*Session, error) {
	config := webrtc.Configuration{}
	if len(cfg.ICEIPs) == 0 {
		for _, url := range cfg.ICEServers {
			config.ICEServers = append(config.ICEServers, webrtc.ICEServer{URLs: []string{url}})
		}
	}

	pc, err := api.NewPeerConnection(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}

	s := &Session{pc: pc, log: log}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c != nil && onICE != nil {
			onICE(c.ToJSON())
		}
	})
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		s.log.Debug().Str("state", state.String()).Msg("[webrtc] connection")
	})

	return s, nil
}

// AddVideoTrack adds an H264 video track
func (s *Session) AddVideoTrack(streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264},
		"video",
		streamID,
	)
	if err != nil {
		return fmt.Errorf("failed to create video track: %w", err)
	}

	if _, err = s.pc.AddTrack(track); err != nil {
		return fmt.Errorf("failed to add video track: %w", err)
	}

	s.videoTrack = track
	return nil
}

// CreateOffer creates the local SDP offer, waiting for ICE gathering
func (s *Session) CreateOffer() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create offer: %w", err)
	}

	gatherComplete := webrtc.GatheringCompletePromise(s.pc)
	if err = s.pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("failed to set local description: %w", err)
	}
	<-gatherComplete

	return s.pc.LocalDescription().SDP, nil
}

// SetAnswer sets the remote SDP answer
func (s *Session) SetAnswer(sdp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp}
	if err := s.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("failed to set remote description: %w", err)
	}
	return nil
}

// AddICECandidate adds a remote ICE candidate
func (s *Session) AddICECandidate(candidate, sdpMid string, sdpMLineIndex uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ice := webrtc.ICECandidateInit{
		Candidate:     candidate,
		SDPMid:        &sdpMid,
		SDPMLineIndex: &sdpMLineIndex,
	}
	if err := s.pc.AddICECandidate(ice); err != nil {
		return fmt.Errorf("failed to add ICE candidate: %w", err)
	}
	return nil
}

// WriteRTP writes a marshaled RTP packet to the video track
func (s *Session) WriteRTP(packet []byte) error {
	s.mu.Lock()
	track := s.videoTrack
	closed := s.closed
	s.mu.Unlock()

	if closed || track == nil {
		return fmt.Errorf("no video track")
	}
	_, err := track.Write(packet)
	return err
}

// Close closes the session
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.pc.Close()
}
