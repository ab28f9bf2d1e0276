package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	pwebrtc "github.com/pion/webrtc/v3"
	"github.com/rs/zerolog"

	"gb-ptz-remote/internal/api"
	"gb-ptz-remote/internal/ptz"
	"gb-ptz-remote/internal/registry"
	"gb-ptz-remote/internal/rtsp"
	"gb-ptz-remote/internal/webrtc"
)

// Config for the server
type Config struct {
	Listen           string        `yaml:"listen"`
	JoystickInterval time.Duration `yaml:"joystick_interval"`
	WebRTC           webrtc.Config `yaml:"-"`
}

// Server is the PTZ remote: HTTP API, WebSocket control and live video
type Server struct {
	cfg       Config
	devices   registry.Store
	transport ptz.Transport
	rtcAPI    *pwebrtc.API
	log       zerolog.Logger
	upgrader  websocket.Upgrader

	// sources is filled by startSources and read-only afterwards
	sources map[string]*rtsp.Source

	clients   map[*Client]bool
	clientsMu sync.RWMutex
}

// New creates a new server instance
func New(cfg Config, devices registry.Store, transport ptz.Transport, log zerolog.Logger) (*Server, error) {
	rtcAPI, err := webrtc.NewAPI(cfg.WebRTC)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		devices:   devices,
		transport: transport,
		rtcAPI:    rtcAPI,
		log:       log,
		sources:   make(map[string]*rtsp.Source),
		clients:   make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local use
			},
		},
	}, nil
}

// Routes mounts the HTTP API and the WebSocket endpoint on r
func (s *Server) Routes(r gin.IRouter) {
	api.NewHandler(s.devices, s.transport, s.log).Register(r)
	r.GET("/ws", s.handleWebSocket)
}

// Run serves until ctx is done, then closes every client and source
func (s *Server) Run(ctx context.Context) error {
	s.startSources()
	defer s.Stop()

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router, err := graceful.Default(graceful.WithAddr(s.cfg.Listen))
	if err != nil {
		return err
	}
	router.Use(api.CrossOrigin())
	s.Routes(router)

	s.log.Info().Str("listen", s.cfg.Listen).Msg("[server] listen")

	err = router.RunWithContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startSources connects the camera video of every device that has one
func (s *Server) startSources() {
	devices, err := s.devices.List()
	if err != nil {
		s.log.Warn().Err(err).Msg("[server] list devices")
		return
	}

	for _, d := range devices {
		if d.RTSP == "" {
			continue
		}
		log := s.log.With().Str("device", d.ID).Logger()

		src, err := rtsp.NewSource(d.RTSP, log)
		if err != nil {
			log.Warn().Err(err).Msg("[server] bad rtsp url")
			continue
		}
		if err = src.Start(); err != nil {
			log.Warn().Err(err).Msg("[server] failed to connect to rtsp")
			continue
		}

		s.sources[d.ID] = src
		go s.broadcastRTP(d.ID, src)
	}
}

// broadcastRTP fans the packets of one camera out to the clients watching it
func (s *Server) broadcastRTP(deviceID string, src *rtsp.Source) {
	for packet := range src.Packets() {
		s.clientsMu.RLock()
		for client := range s.clients {
			if client.device.ID != deviceID {
				continue
			}
			// Non-blocking send to each client's RTP channel
			select {
			case client.rtpChan <- packet:
			default:
				// Client's buffer full, drop packet for this client
			}
		}
		s.clientsMu.RUnlock()
	}
}

// Stop closes all clients and video sources
func (s *Server) Stop() {
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
	s.clientsMu.Unlock()

	for _, src := range s.sources {
		src.Close()
	}
}

func (s *Server) addClient(c *Client) {
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()
}

func (s *Server) removeClient(c *Client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()
}
