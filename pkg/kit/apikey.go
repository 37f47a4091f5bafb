package kit

import "net/http"

const HeaderAPIKey = "X-API-Key"

// APIKey allows a request through only when the named header carries exactly
// the shared secret. Everything else gets 401 with msg.
func APIKey(header, secret, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || !equalSecret(r.Header.Get(header), secret) {
				WriteError(w, r, http.StatusUnauthorized, msg, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
