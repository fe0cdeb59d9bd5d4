package kit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsAuth guards the scrape endpoint with a static bearer token.
// An empty token disables scraping entirely.
func MetricsAuth(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if len(want) == 0 || !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsHandler serves reg behind MetricsAuth.
func MetricsHandler(reg *prometheus.Registry, token string) http.Handler {
	return MetricsAuth(token)(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}
