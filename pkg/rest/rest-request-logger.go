package rest

import (
	"context"
	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
	"net/http"
)

type contextKey string

const loggerKey contextKey = "requestLogger"

// RequestLogger tags every request with a unique identifier and stores a request-scoped
// field logger in the context, for handlers to retrieve with GetLogger.
func RequestLogger(base logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqUUID, err := uuid.NewV4()
			if err != nil {
				base.WithError(err).Error("can't generate a request UUID")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			var logger = base.WithFields(logrus.Fields{
				"reqid":     reqUUID.String(),
				"remote-ip": r.RemoteAddr,
			})

			logger.Debugf("%s %s", r.Method, r.URL.Path)

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerKey, logger)))
		})
	}
}

// GetLogger returns the request-scoped logger, falling back to the standard one when the
// logging middleware wasn't applied to the route.
func GetLogger(request *http.Request) logrus.FieldLogger {
	if logger, ok := request.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return logrus.StandardLogger()
}
