// Wallwatch - command line tail of a running cavewall's state feed
// Connects to the dashboard websocket and prints tracking state changes
// and frustum updates as they arrive. Useful for checking a rig without
// opening the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-cave/internal/config"
	"github.com/teslashibe/go-cave/pkg/protocol"
)

func main() {
	host := flag.String("host", "localhost", "Cavewall host")
	port := flag.String("port", config.DashboardPort(), "Cavewall dashboard port")
	every := flag.Int("every", 60, "Print every Nth frustum update (state changes always print)")
	flag.Parse()

	if *every <= 0 {
		log.Fatalf("❌ -every must be positive")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	url := fmt.Sprintf("ws://%s:%s/ws/state", *host, *port)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		log.Fatalf("❌ Cannot connect to %s: %v", url, err)
	}
	defer conn.Close()

	log.Printf("👀 Watching %s (Ctrl+C to stop)", url)

	// Reader goroutine; main blocks on the signal context.
	done := make(chan struct{})
	go func() {
		defer close(done)
		watch(conn, *every)
	}()

	select {
	case <-ctx.Done():
		// Polite close so the server drops us immediately.
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

// watch reads messages until the connection drops.
func watch(conn *websocket.Conn, every int) {
	var lastStatus string
	frames := 0

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("⚠️  Connection lost: %v", err)
			}
			return
		}

		msg, err := protocol.ParseMessage(raw)
		if err != nil {
			continue
		}

		switch msg.Type {
		case protocol.TypeState:
			var s protocol.StateData
			if err := msg.ParseData(&s); err != nil {
				continue
			}
			if s.Status != lastStatus {
				lastStatus = s.Status
				fmt.Printf("[%s] tracking=%v status=%q head=(%.3f %.3f %.3f)\n",
					time.Now().Format("15:04:05"), s.Tracking, s.Status,
					s.Head[0], s.Head[1], s.Head[2])
			}

		case protocol.TypeFrustum:
			frames++
			if frames%every != 0 {
				continue
			}
			var f protocol.FrustumData
			if err := msg.ParseData(&f); err != nil {
				continue
			}
			fmt.Printf("frame %-8d L[%.4f %.4f %.4f %.4f] R[%.4f %.4f %.4f %.4f]\n",
				f.Frame,
				f.Left.Left, f.Left.Right, f.Left.Bottom, f.Left.Top,
				f.Right.Left, f.Right.Right, f.Right.Bottom, f.Right.Top)
		}
	}
}
