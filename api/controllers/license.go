package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/registra-app/registra-backend/api/responses"
	"github.com/registra-app/registra-backend/api/validators"
	"github.com/registra-app/registra-backend/internal/license"
	"github.com/registra-app/registra-backend/pkg/db/models"
	pkgerrors "github.com/registra-app/registra-backend/pkg/errors"
	"github.com/registra-app/registra-backend/pkg/logger"
)

// LicenseService is the slice of the license service the controllers need.
type LicenseService interface {
	Status(ctx context.Context) (*license.Status, error)
	Activate(ctx context.Context, licenseKey string) (*models.License, error)
	Deactivate(ctx context.Context) error
}

type licenseStatusResponse struct {
	Status     string     `json:"status"`
	IssuedTo   *string    `json:"issuedTo"`
	SchoolCode *string    `json:"schoolCode"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

type activateLicenseRequest struct {
	LicenseKey string `json:"licenseKey" validate:"required"`
}

type activateLicenseResponse struct {
	Status      string     `json:"status"`
	IssuedTo    *string    `json:"issuedTo"`
	SchoolCode  *string    `json:"schoolCode"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	ActivatedAt *time.Time `json:"activatedAt"`
}

func GetLicense(logg *logger.Logger, svc LicenseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load license status"))
			return
		}
		responses.WriteSuccess(w, licenseStatusResponse{
			Status:     status.Status.String(),
			IssuedTo:   status.IssuedTo,
			SchoolCode: status.SchoolCode,
			ExpiresAt:  status.ExpiresAt,
		})
	}
}

func ActivateLicense(logg *logger.Logger, svc LicenseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activateLicenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Activate(r.Context(), req.LicenseKey)
		if err != nil {
			if license.IsVerificationError(err) {
				verr := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid license").
					WithDetails(map[string]any{"reason": license.Reason(err)})
				responses.WriteError(r.Context(), logg, w, verr)
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate license"))
			return
		}

		responses.WriteSuccess(w, activateLicenseResponse{
			Status:      record.Status.String(),
			IssuedTo:    record.IssuedTo,
			SchoolCode:  record.SchoolCode,
			ExpiresAt:   record.ExpiresAt,
			ActivatedAt: record.ActivatedAt,
		})
	}
}

func DeactivateLicense(logg *logger.Logger, svc LicenseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Deactivate(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate license"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "missing"})
	}
}
