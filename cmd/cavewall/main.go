// Cavewall - head-tracked stereoscopic projection daemon
// Polls a tracking provider, recomputes per-eye off-axis frustums every
// frame and serves them to renderers over HTTP and websocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/teslashibe/go-cave/internal/config"
	ilog "github.com/teslashibe/go-cave/internal/log"
	"github.com/teslashibe/go-cave/pkg/debug"
	"github.com/teslashibe/go-cave/pkg/projection"
	"github.com/teslashibe/go-cave/pkg/rig"
	"github.com/teslashibe/go-cave/pkg/tracking"
	"github.com/teslashibe/go-cave/pkg/tracking/detection"
	"github.com/teslashibe/go-cave/pkg/web"
)

type options struct {
	provider     string
	configPath   string
	port         string
	rate         int
	trackerAddr  string
	sensor       int
	cameraDevice int
	swapEyes     bool
}

func main() {
	opts := parseFlags()
	if debug.Enabled {
		ilog.Init("debug")
	} else {
		ilog.Init("info")
	}

	cfg, err := loadRigConfig(opts)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	r := rig.New(cfg)
	defer r.Close()

	provider, cleanup, err := buildProvider(opts)
	if err != nil {
		log.Fatalf("❌ Tracking setup failed: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	if provider != nil {
		provider.SetEvents(tracking.Events{
			OnAcquired: func() { ilog.Info("tracking acquired", "provider", opts.provider) },
			OnLost:     func() { ilog.Warn("tracking lost, holding last position", "provider", opts.provider) },
		})
		r.SetProvider(provider)
	}

	// Wall updates from the dashboard are applied on the frame loop, never
	// from a handler goroutine.
	wallCh := make(chan projection.Wall, 1)
	srv := web.NewServer(opts.port)
	srv.OnWallUpdate = func(w projection.Wall) error {
		select {
		case wallCh <- w:
		default:
		}
		return nil
	}
	srv.StartAsync()
	defer srv.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ilog.Info("cavewall running",
		"provider", opts.provider,
		"rate_hz", opts.rate,
		"dashboard", "http://localhost:"+opts.port)

	run(ctx, r, srv, wallCh, opts.rate)
	ilog.Info("cavewall stopped")
}

// run drives the frame loop until the context is cancelled.
func run(ctx context.Context, r *rig.Rig, srv *web.Server, wallCh <-chan projection.Wall, rate int) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case w := <-wallCh:
			if err := r.SetWall(w); err != nil {
				ilog.Warn("rejected wall update", "error", err)
			} else {
				ilog.Info("wall geometry updated",
					"width", w.Width, "height", w.Height, "distance", w.Distance)
			}
		case <-ticker.C:
			r.Tick()
			left, right := r.Frustums()
			state := r.State()
			srv.PublishFrame(state, left, right, r.Config().Wall)

			debug.FrameLog("frame %d head=(%.3f %.3f %.3f) L=[%.4f %.4f] R=[%.4f %.4f]\n",
				state.Frame, state.Head.X(), state.Head.Y(), state.Head.Z(),
				left.Left, left.Right, right.Left, right.Right)
		}
	}
}

// buildProvider constructs the tracking provider selected on the command
// line. The cleanup func releases capture hardware, when any was opened.
func buildProvider(opts options) (tracking.Provider, func(), error) {
	switch opts.provider {
	case "static":
		return nil, nil, nil // Rig falls back to the configured static height

	case "udp":
		ucfg := tracking.DefaultUDPConfig()
		host, port, err := net.SplitHostPort(opts.trackerAddr)
		if err != nil {
			return nil, nil, err
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, nil, err
		}
		ucfg.Address, ucfg.Port, ucfg.Sensor = host, p, opts.sensor
		if err := ucfg.Validate(); err != nil {
			return nil, nil, err
		}
		return tracking.NewUDPProvider(ucfg), nil, nil

	case "camera":
		dcfg := detection.DefaultConfig()
		dcfg.ModelPath = config.FaceModelPath()
		det, err := detection.NewYuNet(dcfg)
		if err != nil {
			return nil, nil, err
		}
		source, closer, err := tracking.WebcamSource(opts.cameraDevice)
		if err != nil {
			det.Close()
			return nil, nil, err
		}
		ccfg := tracking.DefaultCameraConfig()
		return tracking.NewCameraProvider(ccfg, source, det), closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q (want static, udp or camera)", opts.provider)
	}
}

// loadRigConfig loads the rig configuration file, or defaults when no file
// is given, and applies command-line overrides.
func loadRigConfig(opts options) (rig.Config, error) {
	cfg := rig.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = rig.LoadConfig(opts.configPath)
		if err != nil {
			return rig.Config{}, err
		}
	}
	if opts.swapEyes {
		cfg.SwapEyes = true
	}
	return cfg, cfg.Validate()
}

// parseFlags parses command line flags.
func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.provider, "provider", "static", "Tracking provider: static, udp, camera")
	flag.StringVar(&opts.configPath, "config", "", "Rig configuration file (YAML)")
	flag.StringVar(&opts.port, "port", config.DashboardPort(), "Dashboard HTTP port")
	flag.IntVar(&opts.rate, "rate", 60, "Frame rate in Hz")
	flag.StringVar(&opts.trackerAddr, "addr",
		config.TrackerAddr("0.0.0.0:"+config.DefaultTrackerPort),
		"UDP tracker listen address (udp provider)")
	flag.IntVar(&opts.sensor, "sensor", 0, "Sensor index to accept (udp provider)")
	flag.IntVar(&opts.cameraDevice, "camera-device", 0, "Capture device index (camera provider)")
	flag.BoolVar(&opts.swapEyes, "swap-eyes", false, "Swap left and right eye outputs")
	flag.BoolVar(&debug.Enabled, "debug", false, "Enable verbose debug logging")
	flag.BoolVar(&debug.Frames, "debug-frames", false, "Log every frame's head pose and frustum extents")

	flag.Parse()

	if opts.rate <= 0 || opts.rate > 1000 {
		log.Fatalf("❌ Invalid frame rate: %d", opts.rate)
	}
	return opts
}
