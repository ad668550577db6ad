package generates

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/nexauth/nexauth/models"
)

func testKeyPair(t *testing.T) (privPEM, pubPEM []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM
}

func testApp() *models.ClientApp {
	return &models.ClientApp{
		ID:       "app-1",
		URL:      "https://app.example.com",
		ClientID: "client-abc",
		Scopes:   models.ScopeList{models.ScopeOpenID, models.ScopeProfile},
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub := testKeyPair(t)
	a, err := NewJWTAccess("kid-1", priv, pub)
	if err != nil {
		t.Fatalf("NewJWTAccess: %v", err)
	}

	claims := NewClaims("https://auth.example.com", testApp(), "user-9", time.Hour)
	token, err := a.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Sub != "user-9" {
		t.Errorf("sub = %q, want user-9", got.Sub)
	}
	if got.ClientID != "client-abc" {
		t.Errorf("client_id = %q, want client-abc", got.ClientID)
	}
	if got.Aud != "https://app.example.com" {
		t.Errorf("aud = %q", got.Aud)
	}
	if got.Jti == "" {
		t.Error("jti must be set")
	}
	if got.ExpiredAt(time.Now()) {
		t.Error("fresh token reported expired")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	priv, pub := testKeyPair(t)
	a, err := NewJWTAccess("kid-1", priv, pub)
	if err != nil {
		t.Fatalf("NewJWTAccess: %v", err)
	}
	token, err := a.Sign(NewClaims("iss", testApp(), "user-9", time.Hour))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := a.Verify(tampered); err == nil {
		t.Fatal("tampered token verified")
	}
	if _, err := a.Verify("not-a-jwt"); err == nil {
		t.Fatal("garbage verified")
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	privA, pubA := testKeyPair(t)
	privB, pubB := testKeyPair(t)
	signer, err := NewJWTAccess("a", privA, pubA)
	if err != nil {
		t.Fatalf("NewJWTAccess: %v", err)
	}
	verifier, err := NewJWTAccess("b", privB, pubB)
	if err != nil {
		t.Fatalf("NewJWTAccess: %v", err)
	}
	token, err := signer.Sign(NewClaims("iss", testApp(), "user-9", time.Hour))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("token signed with a different key verified")
	}
}

// Expired tokens still verify; expiry is an explicit caller-side check so the
// userinfo path can distinguish a bad signature from a stale token.
func TestExpiredTokenVerifiesButReportsExpiry(t *testing.T) {
	priv, pub := testKeyPair(t)
	a, err := NewJWTAccess("kid-1", priv, pub)
	if err != nil {
		t.Fatalf("NewJWTAccess: %v", err)
	}

	claims := NewClaims("iss", testApp(), "user-9", -time.Minute)
	token, err := a.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := a.Verify(token)
	if err != nil {
		t.Fatalf("expired token must still verify, got %v", err)
	}
	if !got.ExpiredAt(time.Now()) {
		t.Fatal("token should report expired")
	}
}
