package license

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// The issuer's signing key is fixed for the product; its public half ships
// embedded here and is not configurable at runtime.
const publicKeyPEM = `-----BEGIN PUBLIC KEY-----
MCowBQYDK2VwAyEAp7ey28fjapuGn97ILi4Qpk8Uq3Aar0Vzwv0C8mTBst0=
-----END PUBLIC KEY-----`

// Verifier checks envelope signatures against a fixed Ed25519 public key.
type Verifier struct {
	publicKey ed25519.PublicKey
}

// NewVerifier builds a verifier for the provided public key. Used directly in
// tests; production code goes through DefaultVerifier.
func NewVerifier(publicKey ed25519.PublicKey) (*Verifier, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key size: %d", len(publicKey))
	}
	return &Verifier{publicKey: publicKey}, nil
}

// DefaultVerifier returns a verifier using the embedded issuer key.
func DefaultVerifier() (*Verifier, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("embedded license key is not valid PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse embedded license key: %w", err)
	}
	key, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("embedded license key is %T, want ed25519", parsed)
	}
	return NewVerifier(key)
}

// Verify checks the envelope signature over the canonical payload bytes.
// It is deterministic and performs no I/O.
func (v *Verifier) Verify(env *Envelope) error {
	sig, err := base64.StdEncoding.DecodeString(NormalizeBase64(env.Sig))
	if err != nil {
		return fmt.Errorf("decode signature: %w", ErrBadSignatureFormat)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("signature is %d bytes, want %d: %w", len(sig), ed25519.SignatureSize, ErrBadSignatureFormat)
	}

	message, err := CanonicalJSON(env.Payload)
	if err != nil {
		return fmt.Errorf("canonicalize payload: %w", ErrInvalidFormat)
	}

	if !ed25519.Verify(v.publicKey, message, sig) {
		return ErrBadSignature
	}
	return nil
}
