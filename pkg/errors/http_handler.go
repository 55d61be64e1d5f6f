package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError renders err as the standard JSON error envelope, mapping any
// non-AppError to an opaque internal error.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	return json.NewEncoder(w).Encode(ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
