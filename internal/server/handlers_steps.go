package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/pipeline/steps"
)

// StepsResponse represents the response for GET /steps
type StepsResponse struct {
	Steps  []steps.StepDefinition `json:"steps"`
	Status StepsStatus            `json:"status"`
}

// StepsStatus splits the stages given a set of completed ones
type StepsStatus struct {
	Completed []string `json:"completed"`
	Available []string `json:"available"`
	Blocked   []string `json:"blocked"`
}

// handleListSteps returns the stage graph in run order.
// ?completed=a,b reports which stages could run next after a and b.
func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	completed := map[string]bool{}
	completedList := []string{}
	if v := r.URL.Query().Get("completed"); v != "" {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := steps.StepRegistry[name]; !ok {
				s.failure(w, r, &ErrValidation{Field: "completed", Message: "unknown step " + name})
				return
			}
			if !completed[name] {
				completed[name] = true
				completedList = append(completedList, name)
			}
		}
	}

	defs := make([]steps.StepDefinition, 0, len(steps.Order))
	for _, name := range steps.Order {
		defs = append(defs, steps.StepRegistry[name])
	}

	s.jsonResponse(w, http.StatusOK, StepsResponse{
		Steps: defs,
		Status: StepsStatus{
			Completed: completedList,
			Available: nonNil(steps.GetAvailableSteps(completed)),
			Blocked:   nonNil(steps.GetBlockedSteps(completed)),
		},
	})
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
