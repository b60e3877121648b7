package middlewares

import (
	"fmt"
	"net/http"
)

// RequestSizeLimitMiddleware rejects bodies larger than limit bytes.
// A declared Content-Length over the limit is refused before the handler runs;
// streamed bodies are cut off by http.MaxBytesReader. A limit of zero or less disables the check.
func RequestSizeLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}

		message := fmt.Sprintf("request body too large (limit %s)", formatBytes(limit))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				WriteError(w, http.StatusRequestEntityTooLarge, message)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// formatBytes renders a limit in the largest whole binary unit
func formatBytes(n int64) string {
	const unit = 1024
	units := []string{"B", "KB", "MB", "GB", "TB"}

	i := 0
	for n >= unit && n%unit == 0 && i < len(units)-1 {
		n /= unit
		i++
	}
	return fmt.Sprintf("%d%s", n, units[i])
}
