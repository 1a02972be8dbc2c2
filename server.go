package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/shield"
)

// Server handles incoming HTTP requests for observing the configured
// shield instance
type Server struct {
	Logger *slog.Logger
	Shield *shield.Shield
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.ServeHTTP(w, r)
}

// handleStatus reports the bring-up state machine's position
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type StatusResponse struct {
		State        string `json:"state"`
		Registration string `json:"registration,omitempty"`
		Error        string `json:"error,omitempty"`
	}

	resp := StatusResponse{State: s.Shield.State().String()}
	if s.Shield.State() == shield.StateNetworkVerified {
		resp.Registration = s.Shield.Registration().String()
	}
	if err := s.Shield.LastError(); err != nil {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("Failed to encode status", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
