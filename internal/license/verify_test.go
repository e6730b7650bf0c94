package license

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func newTestVerifier(t *testing.T) (*Verifier, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier, err := NewVerifier(pub)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return verifier, priv
}

func signPayload(t *testing.T, priv ed25519.PrivateKey, payload string) string {
	t.Helper()
	message, err := CanonicalJSON(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, message))
}

func TestCanonicalJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"sorts keys recursively", `{"b":1,"a":{"d":2,"c":3}}`, `{"a":{"c":3,"d":2},"b":1}`},
		{"strips whitespace", "{ \"a\" : [ 1 , 2 ] }", `{"a":[1,2]}`},
		{"keeps numeric literals", `{"n":1.50,"big":12345678901234567890}`, `{"big":12345678901234567890,"n":1.50}`},
		{"no html escaping", `{"u":"a<b>&c"}`, `{"u":"a<b>&c"}`},
		{"scalars pass through", `"x"`, `"x"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanonicalJSON(json.RawMessage(tc.input))
			if err != nil {
				t.Fatalf("CanonicalJSON(%s): %v", tc.input, err)
			}
			if string(got) != tc.want {
				t.Fatalf("CanonicalJSON(%s) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestVerifier_acceptsKeyOrderVariants(t *testing.T) {
	verifier, priv := newTestVerifier(t)
	sig := signPayload(t, priv, `{"expiresAt":"2099-01-01T00:00:00Z","issuedTo":"Lycee Moderne"}`)

	// Issuer ordering must not matter once canonicalized.
	reordered := json.RawMessage(`{"issuedTo":"Lycee Moderne","expiresAt":"2099-01-01T00:00:00Z"}`)
	if err := verifier.Verify(&Envelope{Payload: reordered, Sig: sig}); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifier_urlSafeSignature(t *testing.T) {
	verifier, priv := newTestVerifier(t)
	payload := `{"expiresAt":"2099-01-01T00:00:00Z"}`
	message, err := CanonicalJSON(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	sig := base64.RawURLEncoding.EncodeToString(ed25519.Sign(priv, message))
	if err := verifier.Verify(&Envelope{Payload: json.RawMessage(payload), Sig: sig}); err != nil {
		t.Fatalf("Verify with url-safe sig: %v", err)
	}
}

func TestVerifier_tamperedPayload(t *testing.T) {
	verifier, priv := newTestVerifier(t)
	sig := signPayload(t, priv, `{"expiresAt":"2099-01-01T00:00:00Z"}`)

	tampered := json.RawMessage(`{"expiresAt":"2099-01-01T00:00:01Z"}`)
	err := verifier.Verify(&Envelope{Payload: tampered, Sig: sig})
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifier_signatureLength(t *testing.T) {
	verifier, _ := newTestVerifier(t)
	payload := json.RawMessage(`{"expiresAt":"2099-01-01T00:00:00Z"}`)

	cases := []struct {
		name string
		sig  string
	}{
		{"not base64", "***"},
		{"too short", base64.StdEncoding.EncodeToString(make([]byte, 63))},
		{"too long", base64.StdEncoding.EncodeToString(make([]byte, 65))},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := verifier.Verify(&Envelope{Payload: payload, Sig: tc.sig})
			if !errors.Is(err, ErrBadSignatureFormat) {
				t.Fatalf("err = %v, want ErrBadSignatureFormat", err)
			}
		})
	}
}

func TestDefaultVerifier_embeddedKey(t *testing.T) {
	verifier, err := DefaultVerifier()
	if err != nil {
		t.Fatalf("DefaultVerifier: %v", err)
	}
	// A random 64-byte signature must fail cryptographically, not structurally.
	sig := base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize))
	err = verifier.Verify(&Envelope{Payload: json.RawMessage(`{"expiresAt":"2099-01-01T00:00:00Z"}`), Sig: sig})
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}
