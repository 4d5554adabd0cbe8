// Package requestid assigns each request a correlation ID, honoring one
// supplied by the caller via X-Request-ID.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"nomadpool/pkg/requestcontext"
)

const headerName = "X-Request-ID"

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerName, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
