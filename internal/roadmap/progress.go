package roadmap

import (
	"math"

	"axiom/internal/domain"
)

// PhaseProgress returns the completion percentage of a phase, counting only
// tasks that reference it. Orphan tasks never contribute to any phase.
func PhaseProgress(phase domain.Phase, tasks []domain.Task) int {
	total, done := 0, 0
	for _, t := range tasks {
		if t.PhaseID != phase.PhaseID {
			continue
		}
		total++
		if t.State == domain.StateDone {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// ProjectProgress returns the overall completion percentage.
func ProjectProgress(p domain.Project) int {
	if len(p.Tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range p.Tasks {
		if t.State == domain.StateDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(p.Tasks)) * 100))
}
