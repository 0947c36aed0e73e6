package hub

import (
	"testing"
	"time"
)

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := New("test")
	go h.Run()

	// Broadcasting with no clients must not block or panic.
	for i := 0; i < 10; i++ {
		h.Broadcast(NewJSONMessage([]byte(`{"frame":1}`)))
	}
	if err := h.BroadcastJSON(map[string]int{"frame": 2}); err != nil {
		t.Errorf("BroadcastJSON: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if h.ClientCount() != 0 {
		t.Errorf("client count: got %d, want 0", h.ClientCount())
	}
	if !h.IsRunning() {
		t.Error("hub should report running")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test")
	go h.Run()

	// A client whose send channel is never read: the first undeliverable
	// broadcast must drop it.
	c := &Client{hub: h, send: make(chan Message)}
	h.register <- c
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	// Concurrent readers while the drop happens.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.ClientCount()
			h.IsRunning()
		}
	}()

	h.Broadcast(NewJSONMessage([]byte(`{"frame":1}`)))
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(time.Millisecond)
	}
	<-done
	if _, ok := <-c.send; ok {
		t.Error("dropped client's send channel should be closed")
	}
}

func TestHub_BroadcastJSON_MarshalError(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected marshal error for unencodable value")
	}
}

func TestMessage_Constructors(t *testing.T) {
	j := NewJSONMessage([]byte("{}"))
	if j.Type != JSONMessage {
		t.Errorf("type: got %v, want JSONMessage", j.Type)
	}
	b := NewBinaryMessage([]byte{1, 2, 3})
	if b.Type != BinaryMessage || len(b.Data) != 3 {
		t.Errorf("binary message mangled: %+v", b)
	}
}
