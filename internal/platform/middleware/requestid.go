package middleware

import (
	"net/http"

	"github.com/Bahjat/llms-txt-generator/internal/platform/requestid"
)

const maxRequestIDLen = 128

// RequestID is middleware that assigns a unique request ID to each request.
// An incoming X-Request-ID header is reused when it is short enough to be
// sane; otherwise a new UUID v4 is generated. The ID is echoed on the response
// so stream clients can correlate server logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if id == "" || len(id) > maxRequestIDLen {
			id = requestid.New()
		}

		w.Header().Set(requestid.Header, id)
		ctx := requestid.NewContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
