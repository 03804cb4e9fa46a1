package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// healthResponse is the GET /health body.
type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// systemStatusResponse is the GET /api/system/status body.
type systemStatusResponse struct {
	Status       string  `json:"status"`
	UptimeHours  float64 `json:"uptime_hours"`
	CPUPercent   float64 `json:"cpu_percent"`
	RAMPercent   float64 `json:"ram_percent"`
	HoldingCount int     `json:"holding_count"`
	WatchCount   int     `json:"watch_count"`
}

// handleHealth is a liveness probe.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSystemStatus reports process resource usage and store counts.
// GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := s.systemStats()

	holdingCount := 0
	if holdings, err := s.store.Holdings(); err == nil {
		holdingCount = len(holdings)
	}
	watchCount := 0
	if items, err := s.store.Watchlist(); err == nil {
		watchCount = len(items)
	}

	s.writeJSON(w, http.StatusOK, systemStatusResponse{
		Status:       "ok",
		UptimeHours:  time.Since(s.startupTime).Hours(),
		CPUPercent:   cpuPercent,
		RAMPercent:   ramPercent,
		HoldingCount: holdingCount,
		WatchCount:   watchCount,
	})
}

// systemStats samples CPU over a short window so the endpoint stays
// responsive for polling dashboards.
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
