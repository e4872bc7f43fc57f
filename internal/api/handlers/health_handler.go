package handlers

import "net/http"

// Health reports liveness for load balancers and uptime checks.
func Health(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}
