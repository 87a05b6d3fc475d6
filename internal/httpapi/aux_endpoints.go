package httpapi

import (
	"net/http"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// readyz verifies the storage backend is reachable.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ready(r.Context()); err != nil {
		writeErr(w, http.StatusServiceUnavailable, "storage not ready", "not_ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}
