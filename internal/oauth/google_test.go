package oauth

import (
	"strings"
	"testing"
)

func TestState_RoundTrip(t *testing.T) {
	g := NewGoogle("cid", "secret", "http://localhost/cb", "state-key")

	state := g.MakeState("req-123")
	if !strings.HasPrefix(state, "req-123.") {
		t.Fatalf("state %q does not carry the raw value", state)
	}
	if !g.VerifyState(state) {
		t.Fatal("freshly minted state rejected")
	}
}

func TestState_Tampered(t *testing.T) {
	g := NewGoogle("cid", "secret", "http://localhost/cb", "state-key")
	state := g.MakeState("req-123")

	if g.VerifyState("req-456." + strings.SplitN(state, ".", 2)[1]) {
		t.Fatal("state with swapped payload accepted")
	}
	if g.VerifyState(state + "x") {
		t.Fatal("state with mangled signature accepted")
	}
}

func TestState_Malformed(t *testing.T) {
	g := NewGoogle("cid", "secret", "http://localhost/cb", "state-key")

	for _, s := range []string{"", "no-separator", "a.%%%not-base64%%%"} {
		if g.VerifyState(s) {
			t.Fatalf("malformed state %q accepted", s)
		}
	}
}

func TestState_KeyMismatch(t *testing.T) {
	a := NewGoogle("cid", "secret", "http://localhost/cb", "key-a")
	b := NewGoogle("cid", "secret", "http://localhost/cb", "key-b")

	if b.VerifyState(a.MakeState("req-123")) {
		t.Fatal("state signed with another key accepted")
	}
}

func TestAuthURL_CarriesState(t *testing.T) {
	g := NewGoogle("cid", "secret", "http://localhost/cb", "state-key")
	state := g.MakeState("req-123")
	url := g.AuthURL(state)
	if !strings.Contains(url, "client_id=cid") {
		t.Fatalf("auth url missing client id: %s", url)
	}
	if !strings.Contains(url, "state=") {
		t.Fatalf("auth url missing state: %s", url)
	}
}
