package server

import (
	"net/http"

	"github.com/jonathan/quote-pipeline/internal/jobs"
)

// JobSummary is the listing view of a job definition
type JobSummary struct {
	JobType    string         `json:"job_type"`
	Category   jobs.Category  `json:"category"`
	Name       string         `json:"name"`
	UnitType   jobs.Unit      `json:"unit_type"`
	HourlyRate jobs.RateRange `json:"hourly_rate"`
	Deduction  string         `json:"applicable_deduction"`
}

// handleListJobs lists the job registry, the generic fallback last
func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.All()
	out := make([]JobSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, JobSummary{
			JobType:    d.JobType,
			Category:   d.Category,
			Name:       d.Name,
			UnitType:   d.UnitType,
			HourlyRate: d.HourlyRate,
			Deduction:  string(d.Deduction),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": out, "count": len(out)})
}

// handleGetJob returns one full job definition by job type or category
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobType := r.PathValue("job_type")
	def, ok := s.registry.Lookup(jobType)
	if !ok {
		s.failure(w, r, &ErrJobNotFound{JobType: jobType})
		return
	}
	s.jsonResponse(w, http.StatusOK, def)
}
