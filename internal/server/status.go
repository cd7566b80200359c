package server

import (
	"encoding/json"
	"net/http"

	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

// Status is the /status response body
type Status struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Alive   bool   `json:"alive"`
	Clients int    `json:"clients"`
}

// handleStatus probes the device and reports it as JSON
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := Status{
		Host:    s.config.Device.Host(),
		Port:    s.config.Device.Port(),
		Alive:   s.config.Device.IsAlive(),
		Clients: s.GetActiveConnections(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logging.Debug("Failed to write status", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
	}
}
