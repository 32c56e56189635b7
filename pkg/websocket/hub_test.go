package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
)

func TestHubTracksClientsUnderConcurrentRegistration(t *testing.T) {
	h := NewHub()
	go h.Run()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Register(&websocket.Conn{})
		}()
	}
	// Unregistering a connection the hub never saw is a no-op
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Unregister(&websocket.Conn{})
	}()
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 8 {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want 8", h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
