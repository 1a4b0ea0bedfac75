package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MarcVCE/TrabajoOpcional/internal/auth"
	"github.com/MarcVCE/TrabajoOpcional/internal/bus"
	"github.com/MarcVCE/TrabajoOpcional/internal/chat"
	"github.com/MarcVCE/TrabajoOpcional/internal/directory"
	"github.com/MarcVCE/TrabajoOpcional/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type env struct {
	srv   *httptest.Server
	svc   *chat.Service
	gate  *auth.Gate
	rooms *registry.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := directory.NewMemory()
	rooms := registry.NewRegistry()
	svc := chat.NewService(dir, rooms, bus.New())
	gate := auth.NewGate(dir)

	engine := gin.New()
	engine.GET("/ws", Serve(svc, gate))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &env{srv: srv, svc: svc, gate: gate, rooms: rooms}
}

func (e *env) wsURL(query string) string {
	return "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?" + query
}

func (e *env) login(t *testing.T, email string) (string, *auth.Identity) {
	t.Helper()
	ctx := context.Background()
	if err := e.svc.SignIn(ctx, email, "pw"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	token, err := e.svc.LogIn(ctx, email, "pw")
	if err != nil {
		t.Fatalf("LogIn() error = %v", err)
	}
	return token, e.gate.Resolve(ctx, token)
}

func TestServe_AnonymousRejected(t *testing.T) {
	e := newEnv(t)

	_, resp, err := websocket.DefaultDialer.Dial(e.wsURL("nombreSala=general"), nil)
	if err == nil {
		t.Fatal("Dial() succeeded without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake status = %v, want 401", resp)
	}
}

func TestServe_AutoCreatesRoom(t *testing.T) {
	e := newEnv(t)
	token, id := e.login(t, "alice@x.com")

	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL("nombreSala=general&token="+token), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	v, ok := e.rooms.Find("general")
	if !ok {
		t.Fatal("room was not created on subscribe")
	}
	if len(v.Members) != 1 || v.Members[0] != id.ID {
		t.Errorf("Members = %v, want sole member %s", v.Members, id.ID)
	}
}

func TestServe_DeliversMensaje(t *testing.T) {
	e := newEnv(t)
	token, id := e.login(t, "alice@x.com")

	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL("nombreSala=general&token="+token), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := e.svc.SendMessage(context.Background(), id, "general", "hi"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var m Mensaje
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if m.Mensaje != "hi" || m.Email != "alice@x.com" {
		t.Errorf("frame = %+v, want {mensaje:hi email:alice@x.com}", m)
	}
}

func TestServe_FiltersOtherRooms(t *testing.T) {
	e := newEnv(t)
	token, id := e.login(t, "alice@x.com")

	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL("nombreSala=general&token="+token), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	e.rooms.Ensure("other", "")
	if err := e.svc.SendMessage(context.Background(), id, "other", "elsewhere"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if err := e.svc.SendMessage(context.Background(), id, "general", "here"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	// Only the event for the subscribed room arrives.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var m Mensaje
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if m.Mensaje != "here" {
		t.Errorf("frame = %+v, want the general-room message", m)
	}
}

func TestServe_DisconnectKeepsMembership(t *testing.T) {
	e := newEnv(t)
	token, id := e.login(t, "alice@x.com")

	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL("nombreSala=general&token="+token), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Membership persists until an explicit quit.
	v, _ := e.rooms.Find("general")
	if len(v.Members) != 1 || v.Members[0] != id.ID {
		t.Errorf("Members after disconnect = %v, want %s still present", v.Members, id.ID)
	}
}
