package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "plotlease/pkg/errors"
	"plotlease/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID := ""
					if rid := r.Context().Value(RequestIDKey); rid != nil {
						requestID, _ = rid.(string)
					}

					log.Error("Panic recovered",
						"request_id", requestID,
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					_ = apperrors.WriteError(w, apperrors.Internal("Internal server error", fmt.Errorf("panic: %v", err)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
