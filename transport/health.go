package transport

import "net/http"

// HealthHandler reports liveness, including a database round trip.
func (t *Transport) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := t.persistenceClient.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
