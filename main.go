package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gb-ptz-remote/internal/app"
	"gb-ptz-remote/internal/gb28181"
	"gb-ptz-remote/internal/ptz"
	"gb-ptz-remote/internal/registry"
	"gb-ptz-remote/internal/server"
	"gb-ptz-remote/internal/webrtc"
)

func main() {
	confPath := flag.String("config", "ptz.yaml", "Path to the YAML config file, or inline YAML")
	listenAddr := flag.String("listen", "", "HTTP listen address")
	gateway := flag.String("gateway", "", "GB/T 28181 gateway address (host:port)")
	gatewayProto := flag.String("gateway-proto", "", "Gateway protocol (udp or tcp)")
	iceIPs := flag.String("ice-ips", "", "Comma-separated list of static server IPs (enables ICE-lite mode)")
	flag.Parse()

	app.Init(*confPath)

	log := app.GetLogger("main")

	var cfg struct {
		API      server.Config     `yaml:"api"`
		Gateway  gb28181.Config    `yaml:"gateway"`
		WebRTC   webrtc.Config     `yaml:"webrtc"`
		Database struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
		Devices []registry.Device `yaml:"devices"`
	}
	cfg.API.Listen = app.GetEnv("PTZ_LISTEN", ":8080")
	cfg.Gateway.Protocol = "udp"
	cfg.WebRTC = webrtc.DefaultConfig()

	app.LoadConfig(&cfg)

	// flags win over the config file
	if *listenAddr != "" {
		cfg.API.Listen = *listenAddr
	}
	if *gateway != "" {
		cfg.Gateway.Address = *gateway
	}
	if *gatewayProto != "" {
		cfg.Gateway.Protocol = *gatewayProto
	}
	if *iceIPs != "" {
		cfg.WebRTC.ICEIPs = strings.Split(*iceIPs, ",")
	}
	cfg.API.WebRTC = cfg.WebRTC

	devices, err := openRegistry(cfg.Database.DSN, cfg.Devices)
	if err != nil {
		log.Fatal().Err(err).Msg("[main] device registry")
	}

	address := func(deviceID string) uint16 {
		d, err := devices.Get(deviceID)
		if err != nil {
			return gb28181.DefaultAddress
		}
		return d.PTZAddress()
	}

	var transport ptz.Transport
	if cfg.Gateway.Address != "" {
		transport, err = gb28181.NewController(cfg.Gateway, address, app.GetLogger("gateway"))
		if err != nil {
			log.Fatal().Err(err).Msg("[main] gateway")
		}
		log.Info().Str("address", cfg.Gateway.Address).Str("protocol", cfg.Gateway.Protocol).Msg("[main] gateway")
	} else {
		transport = gb28181.NewDryRun(address, app.GetLogger("gateway"))
		log.Warn().Msg("[main] no gateway configured, commands are only logged")
	}
	defer transport.Close()

	if len(cfg.WebRTC.ICEIPs) > 0 {
		log.Info().Strs("ips", cfg.WebRTC.ICEIPs).Msg("[main] webrtc ice-lite mode")
	}

	srv, err := server.New(cfg.API, devices, transport, app.GetLogger("server"))
	if err != nil {
		log.Fatal().Err(err).Msg("[main] create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("[main] server")
		return
	}
	log.Info().Msg("[main] shutdown")
}

// openRegistry returns the postgres registry when dsn is set, seeded with the
// configured devices, or an in-memory one
func openRegistry(dsn string, seed []registry.Device) (registry.Store, error) {
	if dsn == "" {
		return registry.NewMemory(seed)
	}

	store, err := registry.OpenGorm(dsn)
	if err != nil {
		return nil, err
	}
	for _, d := range seed {
		if err = store.Add(d); err != nil && !errors.Is(err, registry.ErrAlreadyExists) {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}
