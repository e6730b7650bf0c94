package license

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// maxEnvelopeBytes caps the decoded envelope size; anything larger is abuse,
// real licenses are well under 1 KiB.
const maxEnvelopeBytes = 16 * 1024

// Envelope is the outer signed container carrying a license. Payload is the
// raw signed object, not yet trusted; Sig is its detached signature, still in
// transport encoding.
type Envelope struct {
	Payload json.RawMessage
	Sig     string
}

type wireEnvelope struct {
	Payload json.RawMessage `json:"payload"`
	Sig     string          `json:"sig"`
}

// NormalizeBase64 converts user-supplied base64 into the standard alphabet:
// whitespace stripped, URL-safe characters mapped, padded to a multiple of 4.
func NormalizeBase64(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '-':
			b.WriteByte('+')
		case '_':
			b.WriteByte('/')
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}

// ParseEnvelope decodes a license key string into an Envelope. The input is
// either raw JSON (starts with '{', kept for manual testing) or base64 of the
// JSON, possibly base64url and whitespace-polluted.
func ParseEnvelope(licenseKey string) (*Envelope, error) {
	trimmed := strings.TrimSpace(licenseKey)
	if trimmed == "" {
		return nil, fmt.Errorf("empty license: %w", ErrInvalidFormat)
	}

	raw := []byte(trimmed)
	if !strings.HasPrefix(trimmed, "{") {
		decoded, err := base64.StdEncoding.DecodeString(NormalizeBase64(trimmed))
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", ErrInvalidFormat)
		}
		if len(decoded) == 0 {
			return nil, fmt.Errorf("empty envelope: %w", ErrInvalidFormat)
		}
		if len(decoded) > maxEnvelopeBytes {
			return nil, fmt.Errorf("license too large: %w", ErrInvalidFormat)
		}
		raw = decoded
	}

	var wire wireEnvelope
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parse envelope json: %w", ErrInvalidFormat)
	}
	if len(wire.Payload) == 0 || string(wire.Payload) == "null" {
		return nil, fmt.Errorf("missing payload: %w", ErrInvalidFormat)
	}
	if wire.Payload[0] != '{' {
		return nil, fmt.Errorf("payload must be an object: %w", ErrInvalidFormat)
	}
	if wire.Sig == "" {
		return nil, fmt.Errorf("missing signature: %w", ErrInvalidFormat)
	}

	return &Envelope{Payload: wire.Payload, Sig: wire.Sig}, nil
}
