package debug

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, env *testEnv, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Expected websocket dial, got %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("Expected 101, got %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected message, got %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Expected JSON frame, got %v", err)
	}
}

func TestStreamSessionReceivesEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := dial(t, env, nil)

	var hello Hello
	readJSON(t, conn, &hello)
	if _, err := uuid.Parse(hello.Session); err != nil {
		t.Errorf("Expected uuid session id, got %q", hello.Session)
	}
	if n := env.server.Hub().SessionCount(); n != 1 {
		t.Errorf("Expected 1 session, got %d", n)
	}

	_ = env.game.Dispatcher().Emit("debug.ping", map[string]string{"from": "test"})

	var msg Message
	readJSON(t, conn, &msg)
	if msg.Name != "debug.ping" {
		t.Errorf("Expected debug.ping, got %s", msg.Name)
	}
	if msg.ID == "" || msg.Seq == 0 {
		t.Errorf("Expected event id and seq, got %+v", msg)
	}
}

func TestStreamRateLimited(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.StreamRate = 0.001
		c.StreamBurst = 2
	})
	conn := dial(t, env, nil)
	var hello Hello
	readJSON(t, conn, &hello)

	d := env.game.Dispatcher()
	for i := 0; i < 5; i++ {
		_ = d.Emit("debug.flood", i)
	}

	for i := 0; i < 2; i++ {
		var msg Message
		readJSON(t, conn, &msg)
		if msg.Payload != float64(i) {
			t.Errorf("Expected payload %d, got %v", i, msg.Payload)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected no third message within the burst")
	}
}

func TestStreamRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t, nil)
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("Expected handshake rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := dial(t, env, nil)
	var hello Hello
	readJSON(t, conn, &hello)

	env.server.Hub().Close()
	if n := env.server.Hub().SessionCount(); n != 0 {
		t.Errorf("Expected sessions cleared, got %d", n)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("Expected normal close, got %v", err)
	}
}

func TestNewMessageFallsBackForUnencodable(t *testing.T) {
	type withFunc struct{ F func() }
	env := newTestEnv(t, nil)
	_ = env.game.Dispatcher().Emit("debug.func", withFunc{F: func() {}})
	history := env.game.Dispatcher().History()
	msg := NewMessage(history[len(history)-1])
	if _, ok := msg.Payload.(string); !ok {
		t.Errorf("Expected text payload fallback, got %T", msg.Payload)
	}
	if _, err := json.Marshal(msg); err != nil {
		t.Errorf("Expected message encodable, got %v", err)
	}
}

func TestAllowedOrigin(t *testing.T) {
	patterns := []string{"http://localhost:*", "https://game.example"}
	cases := map[string]bool{
		"http://localhost:3000": true,
		"HTTP://LOCALHOST:8080": true,
		"https://game.example":  true,
		"https://other.example": false,
		"http://localhostx":     false,
		"http://127.0.0.1:3000": false,
	}
	for origin, want := range cases {
		if got := allowedOrigin(patterns, origin); got != want {
			t.Errorf("Expected %v for %s, got %v", want, origin, got)
		}
	}
	if !allowedOrigin([]string{"*"}, "anything") {
		t.Error("Expected wildcard to allow any origin")
	}
}
