// Tracksim - synthetic head tracker for testing without hardware
// Streams pose datagrams tracing a figure eight at head height, the kind
// of path a viewer walking in front of the wall would produce.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-cave/internal/config"
	"github.com/teslashibe/go-cave/pkg/tracking"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:"+config.DefaultTrackerPort, "Tracker destination address")
	rate := flag.Int("rate", 120, "Send rate in Hz")
	sensor := flag.Int("sensor", 0, "Sensor index to stamp on datagrams")
	height := flag.Float64("height", 1.64, "Base head height in meters")
	width := flag.Float64("width", 1.5, "Lateral sweep amplitude in meters")
	period := flag.Duration("period", 8*time.Second, "Time for one full figure eight")
	flag.Parse()

	if *rate <= 0 || *period <= 0 {
		log.Fatalf("❌ rate and period must be positive")
	}

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		log.Fatalf("❌ Cannot reach tracker at %s: %v", *addr, err)
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("🎯 Streaming poses to %s at %d Hz (Ctrl+C to stop)", *addr, *rate)

	ticker := time.NewTicker(time.Second / time.Duration(*rate))
	defer ticker.Stop()

	start := time.Now()
	sent := 0
	for {
		select {
		case <-ctx.Done():
			log.Printf("👋 Sent %d poses in %s", sent, time.Since(start).Round(time.Second))
			return
		case <-ticker.C:
			pos := figureEight(time.Since(start), *period, *width, *height)
			if _, err := conn.Write(tracking.EncodePose(*sensor, pos)); err != nil {
				log.Printf("⚠️  Send failed: %v", err)
				continue
			}
			sent++
		}
	}
}

// figureEight traces a lissajous path: full lateral sweep with a gentle
// half-frequency bob in height and a slight forward-back sway.
func figureEight(elapsed, period time.Duration, width, height float64) mgl64.Vec3 {
	t := 2 * math.Pi * elapsed.Seconds() / period.Seconds()
	return mgl64.Vec3{
		width / 2 * math.Sin(t),
		height + 0.08*math.Sin(t/2),
		0.3 * math.Sin(2*t),
	}
}
