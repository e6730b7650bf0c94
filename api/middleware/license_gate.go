package middleware

import (
	"context"
	"net/http"

	"github.com/registra-app/registra-backend/api/responses"
	"github.com/registra-app/registra-backend/internal/license"
	"github.com/registra-app/registra-backend/pkg/enums"
	pkgerrors "github.com/registra-app/registra-backend/pkg/errors"
	"github.com/registra-app/registra-backend/pkg/logger"
)

type licenseStatusReader interface {
	Status(ctx context.Context) (*license.Status, error)
}

// LicenseGate blocks protected routes unless the stored license is currently
// active. The license management endpoints themselves stay outside the gate,
// otherwise an expired install could never be reactivated.
func LicenseGate(logg *logger.Logger, licenses licenseStatusReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			status, err := licenses.Status(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "license check failed"))
				return
			}
			if status.Status != enums.LicenseStatusActive {
				gateErr := pkgerrors.New(pkgerrors.CodeLicense, "License missing or expired").
					WithDetails(map[string]any{"status": string(status.Status)})
				responses.WriteError(ctx, logg, w, gateErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
