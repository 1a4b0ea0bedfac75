package auth

import (
	"context"
	"testing"

	"github.com/MarcVCE/TrabajoOpcional/internal/directory"
)

func TestResolve_Anonymous(t *testing.T) {
	dir := directory.NewMemory()
	gate := NewGate(dir)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"unknown token", "no-such-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id := gate.Resolve(ctx, tt.token); id != nil {
				t.Errorf("Resolve(%q) = %+v, want nil", tt.token, id)
			}
		})
	}
}

func TestResolve_KnownToken(t *testing.T) {
	dir := directory.NewMemory()
	gate := NewGate(dir)
	ctx := context.Background()

	u, err := dir.Create(ctx, "alice@x.com", "pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token := NewToken()
	if err := dir.SetToken(ctx, "alice@x.com", "pw", token); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	id := gate.Resolve(ctx, token)
	if id == nil {
		t.Fatal("Resolve() returned anonymous for a valid token")
	}
	if id.ID != u.ID || id.Email != "alice@x.com" {
		t.Errorf("Resolve() = %+v, want id=%s email=alice@x.com", id, u.ID)
	}
}

func TestResolve_ClearedToken(t *testing.T) {
	dir := directory.NewMemory()
	gate := NewGate(dir)
	ctx := context.Background()

	if _, err := dir.Create(ctx, "alice@x.com", "pw"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token := NewToken()
	if err := dir.SetToken(ctx, "alice@x.com", "pw", token); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if err := dir.SetToken(ctx, "alice@x.com", "pw", ""); err != nil {
		t.Fatalf("SetToken(clear) error = %v", err)
	}

	if id := gate.Resolve(ctx, token); id != nil {
		t.Errorf("Resolve() = %+v after token cleared, want nil", id)
	}
}

func TestNewToken_Unique(t *testing.T) {
	t1 := NewToken()
	t2 := NewToken()
	if t1 == "" || t2 == "" {
		t.Fatal("NewToken() returned empty token")
	}
	if t1 == t2 {
		t.Error("NewToken() should generate unique tokens")
	}
	// uuid v4 string form is 36 chars
	if len(t1) != 36 {
		t.Errorf("NewToken() length = %d, want 36", len(t1))
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if id := IdentityFrom(ctx); id != nil {
		t.Errorf("IdentityFrom(empty ctx) = %+v, want nil", id)
	}

	want := &Identity{ID: "u1", Email: "alice@x.com"}
	ctx = WithIdentity(ctx, want)
	if got := IdentityFrom(ctx); got != want {
		t.Errorf("IdentityFrom() = %+v, want %+v", got, want)
	}

	// Anonymous is stored as a nil identity, not a missing key.
	ctx = WithIdentity(context.Background(), nil)
	if got := IdentityFrom(ctx); got != nil {
		t.Errorf("IdentityFrom(anonymous) = %+v, want nil", got)
	}
}
