package license

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the signed business data inside an envelope. It is never
// persisted as-is; only the fields of a successful Grant are copied into the
// stored record.
type Payload struct {
	ExpiresAt  string  `json:"expiresAt"`
	SchoolCode *string `json:"schoolCode"`
	IssuedTo   *string `json:"issuedTo"`
}

// Grant is the evaluator's verdict on a verified payload, ready to persist.
type Grant struct {
	IssuedTo   *string
	SchoolCode *string
	ExpiresAt  time.Time
}

// Evaluate applies the business rules to an already signature-verified
// payload. currentSchoolCode is the code of the installed school profile,
// nil when no profile exists. Pure aside from the caller-supplied clock.
func Evaluate(raw json.RawMessage, currentSchoolCode *string, now time.Time) (*Grant, error) {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", ErrInvalidFormat)
	}

	if payload.ExpiresAt == "" {
		return nil, ErrBadExpiry
	}
	expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse expiresAt %q: %w", payload.ExpiresAt, ErrBadExpiry)
	}

	if now.After(expiresAt) {
		return nil, ErrExpired
	}

	if currentSchoolCode != nil && payload.SchoolCode != nil && *currentSchoolCode != *payload.SchoolCode {
		return nil, ErrSchoolMismatch
	}

	return &Grant{
		IssuedTo:   payload.IssuedTo,
		SchoolCode: payload.SchoolCode,
		ExpiresAt:  expiresAt,
	}, nil
}
