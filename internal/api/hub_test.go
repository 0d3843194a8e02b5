package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type testFrame struct {
	Type     string `json:"type"`
	Paused   bool   `json:"paused"`
	Selected string `json:"selected"`
	Message  string `json:"message"`
	Snapshot *struct {
		Tick uint64 `json:"tick"`
	} `json:"snapshot"`
}

// readUntil reads frames until one has the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, want string) testFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %q: %v", want, err)
		}
		var f testFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if f.Type == want {
			return f
		}
	}
}

func TestHub_PushesSnapshots(t *testing.T) {
	srv, ts := newTestServer(t, nil, "")
	conn := dial(t, ts.URL)

	first := readUntil(t, conn, "snapshot")
	if first.Snapshot == nil || first.Snapshot.Tick != 0 {
		t.Fatalf("first frame = %+v", first)
	}

	if n := srv.Hub().Clients(); n != 1 {
		t.Fatalf("clients = %d", n)
	}
	srv.Eng.Step(context.Background())

	next := readUntil(t, conn, "snapshot")
	if next.Snapshot == nil || next.Snapshot.Tick != 1 {
		t.Fatalf("pushed frame = %+v", next)
	}
}

func TestHub_Commands(t *testing.T) {
	srv, ts := newTestServer(t, nil, "")
	conn := dial(t, ts.URL)
	readUntil(t, conn, "snapshot")

	if err := conn.WriteJSON(Command{Type: "toggle_pause"}); err != nil {
		t.Fatal(err)
	}
	if ack := readUntil(t, conn, "ack"); !ack.Paused || !srv.Eng.Paused() {
		t.Fatalf("ack = %+v, engine paused = %v", ack, srv.Eng.Paused())
	}

	if err := conn.WriteJSON(Command{Type: "select", AgentID: "npc_1"}); err != nil {
		t.Fatal(err)
	}
	if ack := readUntil(t, conn, "ack"); ack.Selected != "npc_1" {
		t.Fatalf("ack = %+v", ack)
	}

	if err := conn.WriteJSON(Command{Type: "select", AgentID: "nobody"}); err != nil {
		t.Fatal(err)
	}
	if e := readUntil(t, conn, "error"); !strings.Contains(e.Message, "unknown agent") {
		t.Fatalf("error frame = %+v", e)
	}

	if err := conn.WriteJSON(Command{Type: "spawn"}); err != nil {
		t.Fatal(err)
	}
	if e := readUntil(t, conn, "error"); !strings.Contains(e.Message, "unknown command") {
		t.Fatalf("error frame = %+v", e)
	}
	if srv.Sim.Selected() != "npc_1" {
		t.Fatalf("selection changed to %q", srv.Sim.Selected())
	}
}
