package models

import (
	"testing"
	"time"
)

func TestNexIDShape(t *testing.T) {
	id := NexID()
	if len(id) != 32 {
		t.Fatalf("id length = %d, want 32", len(id))
	}
	for _, r := range id {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			t.Fatalf("non-hex rune %q in id %q", r, id)
		}
	}
}

func TestNexIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := NexID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestScopeListRoundTrip(t *testing.T) {
	in := ScopeList{ScopeOpenID, ScopeOfflineAccess}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var out ScopeList
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out) != 2 || out[0] != ScopeOpenID || out[1] != ScopeOfflineAccess {
		t.Fatalf("round trip = %v", out)
	}
	if !out.Contains(ScopeOfflineAccess) || out.Contains(ScopeEmail) {
		t.Fatal("Contains misbehaves")
	}
}

func TestNilScopeListStoresEmptyArray(t *testing.T) {
	var l ScopeList
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.(string) != "[]" {
		t.Fatalf("nil list stored as %q, want []", v)
	}
}

func TestStringListExactMatch(t *testing.T) {
	l := StringList{"https://app.test/callback"}
	if !l.Contains("https://app.test/callback") {
		t.Fatal("exact match rejected")
	}
	if l.Contains("https://app.test/callback/extra") || l.Contains("https://app.test/") {
		t.Fatal("non-exact match accepted")
	}
}

func TestCredentialStatePredicate(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	token := RefreshToken{ExpiresAt: future}
	if got := token.StateAt(now); got != CredentialActive {
		t.Fatalf("fresh token state = %v", got)
	}
	token.ExpiresAt = past
	if got := token.StateAt(now); got != CredentialExpired {
		t.Fatalf("expired token state = %v", got)
	}
	token.RevokedAt = &past
	if got := token.StateAt(now); got != CredentialRevoked {
		t.Fatalf("revoked+expired state = %v, revocation must win", got)
	}
}

func TestCredentialStateString(t *testing.T) {
	for state, want := range map[CredentialState]string{
		CredentialActive:  "active",
		CredentialRevoked: "revoked",
		CredentialExpired: "expired",
	} {
		if got := state.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}
