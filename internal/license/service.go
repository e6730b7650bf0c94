package license

import (
	"context"
	"time"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/enums"
)

// SchoolCodeReader supplies the installed school profile's code, nil when no
// profile or code exists.
type SchoolCodeReader interface {
	Code(ctx context.Context) (*string, error)
}

// Service drives the activation lifecycle: codec, signature check, business
// evaluation, then persistence.
type Service struct {
	store    *Store
	verifier *Verifier
	schools  SchoolCodeReader
	now      func() time.Time
}

// NewService wires the license service.
func NewService(store *Store, verifier *Verifier, schools SchoolCodeReader) *Service {
	return &Service{
		store:    store,
		verifier: verifier,
		schools:  schools,
		now:      time.Now,
	}
}

// Status is the read-time view of the stored license. Missing/expired are
// computed against the caller's clock, not the stored status column, so the
// gate reacts to expiry immediately rather than waiting for the nightly
// enforcement run.
type Status struct {
	Status     enums.LicenseStatus
	IssuedTo   *string
	SchoolCode *string
	ExpiresAt  *time.Time
}

// Status reports the current license state.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	record, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if record == nil || record.ExpiresAt == nil {
		return &Status{Status: enums.LicenseStatusMissing}, nil
	}

	status := enums.LicenseStatusActive
	if s.now().After(*record.ExpiresAt) {
		status = enums.LicenseStatusExpired
	}
	return &Status{
		Status:     status,
		IssuedTo:   record.IssuedTo,
		SchoolCode: record.SchoolCode,
		ExpiresAt:  record.ExpiresAt,
	}, nil
}

// Activate verifies the raw envelope and, on success, persists it as the
// current license. Verification failures come back as the package's sentinel
// errors and leave the stored record untouched.
func (s *Service) Activate(ctx context.Context, rawKey string) (*models.License, error) {
	env, err := ParseEnvelope(rawKey)
	if err != nil {
		return nil, err
	}
	if err := s.verifier.Verify(env); err != nil {
		return nil, err
	}

	schoolCode, err := s.schools.Code(ctx)
	if err != nil {
		return nil, err
	}

	grant, err := Evaluate(env.Payload, schoolCode, s.now())
	if err != nil {
		return nil, err
	}

	return s.store.Activate(ctx, rawKey, grant, s.now())
}

// Deactivate removes the stored license.
func (s *Service) Deactivate(ctx context.Context) error {
	return s.store.Deactivate(ctx)
}
