package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/registra-app/registra-backend/internal/license"
	"github.com/registra-app/registra-backend/pkg/enums"
	pkgerrors "github.com/registra-app/registra-backend/pkg/errors"
	"github.com/registra-app/registra-backend/pkg/types"
)

type fakeStatusReader struct {
	status *license.Status
	err    error
}

func (f *fakeStatusReader) Status(ctx context.Context) (*license.Status, error) {
	return f.status, f.err
}

func gateRequest(t *testing.T, reader *fakeStatusReader, method string) *httptest.ResponseRecorder {
	t.Helper()
	var reached bool
	handler := LicenseGate(nil, reader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, "/api/students", nil))
	if rec.Code == http.StatusNoContent && !reached {
		t.Fatalf("handler not reached despite 204")
	}
	return rec
}

func TestLicenseGate_activePasses(t *testing.T) {
	rec := gateRequest(t, &fakeStatusReader{status: &license.Status{Status: enums.LicenseStatusActive}}, http.MethodGet)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestLicenseGate_missingAndExpiredBlocked(t *testing.T) {
	for _, status := range []enums.LicenseStatus{enums.LicenseStatusMissing, enums.LicenseStatusExpired} {
		rec := gateRequest(t, &fakeStatusReader{status: &license.Status{Status: status}}, http.MethodGet)
		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("status(%s) = %d, want 402", status, rec.Code)
		}
		var envelope types.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Error.Code != string(pkgerrors.CodeLicense) {
			t.Fatalf("code = %s", envelope.Error.Code)
		}
		details, ok := envelope.Error.Details.(map[string]any)
		if !ok || details["status"] != string(status) {
			t.Fatalf("details = %+v", envelope.Error.Details)
		}
	}
}

func TestLicenseGate_preflightAlwaysAllowed(t *testing.T) {
	rec := gateRequest(t, &fakeStatusReader{status: &license.Status{Status: enums.LicenseStatusMissing}}, http.MethodOptions)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 for preflight", rec.Code)
	}
}

func TestLicenseGate_readFailureIs500(t *testing.T) {
	rec := gateRequest(t, &fakeStatusReader{err: errors.New("db down")}, http.MethodGet)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
