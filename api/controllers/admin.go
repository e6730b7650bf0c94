package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/registra-app/registra-backend/api/responses"
	"github.com/registra-app/registra-backend/internal/retention"
	pkgerrors "github.com/registra-app/registra-backend/pkg/errors"
	"github.com/registra-app/registra-backend/pkg/logger"
)

// PurgeRunner triggers a retention cycle on demand.
type PurgeRunner interface {
	RunCycle(ctx context.Context) (retention.Result, error)
}

type purgeResponse struct {
	Deleted int64  `json:"deleted"`
	Stage   string `json:"stage"`
}

// PurgeInactive runs a manual retention cycle. It shares the run lock with
// the nightly scheduler, so an overlapping trigger is a conflict, not a
// second concurrent purge.
func PurgeInactive(logg *logger.Logger, runner PurgeRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := runner.RunCycle(r.Context())
		if err != nil {
			if errors.Is(err, retention.ErrRunInProgress) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a retention run is already in progress"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "manual purge"))
			return
		}
		responses.WriteSuccess(w, purgeResponse{
			Deleted: result.Deleted,
			Stage:   string(result.Stage),
		})
	}
}
