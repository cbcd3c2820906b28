package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpURL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToOwnerOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("id"))
	}))
	defer srv.Close()

	owner := dial(t, srv.URL+"?id=1")
	other := dial(t, srv.URL+"?id=2")

	// registration happens after the upgrade returns, so keep publishing
	// until the owner hears something
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Publish("1", Progress{Stage: "library", Message: "Scanning your library..."})
			}
		}
	}()

	owner.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := owner.ReadMessage()
	if err != nil {
		t.Fatalf("no progress received: %v", err)
	}
	var got Progress
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stage != "library" || got.Done {
		t.Fatalf("unexpected progress %+v", got)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("other users must not receive progress")
	}
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"http://allowed.test"})

	req := httptest.NewRequest(http.MethodGet, "/ws/progress", nil)
	req.Header.Set("Origin", "http://evil.test")
	if hub.upgrader.CheckOrigin(req) {
		t.Fatal("expected origin to be rejected")
	}

	req.Header.Set("Origin", "http://allowed.test")
	if !hub.upgrader.CheckOrigin(req) {
		t.Fatal("expected origin to be allowed")
	}
}

func TestServeWSAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "1")
	}))
	defer srv.Close()

	conn := dial(t, srv.URL)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed")
	}
}
