package server

import (
	"encoding/json"
	"net/http"
	"sort"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleHealth answers liveness probes. The body carries no meaning beyond
// the status code.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleListLanguages returns the language tags the sandbox accepts, for the
// front-end's language picker.
func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	tags := s.sandbox.Languages()
	sort.Strings(tags)
	writeJSON(w, http.StatusOK, map[string][]string{"languages": tags})
}
