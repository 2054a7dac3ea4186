package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/apierr"
)

// writeError maps an error to the status code its apierr.Kind names,
// falling back to a generic 500 for anything else so internal details
// (row contents, driver errors) never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		status := http.StatusInternalServerError
		switch apiErr.Kind {
		case apierr.KindValidation:
			status = http.StatusBadRequest
		case apierr.KindNotAuthorized:
			status = http.StatusUnauthorized
		case apierr.KindNotFound:
			status = http.StatusNotFound
		}
		helpers.RespondError(w, status, apiErr.Message)
		return
	}

	slog.Error("unhandled error", "error", err)
	helpers.RespondError(w, http.StatusInternalServerError, "internal server error")
}
