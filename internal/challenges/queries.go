package challenges

import (
	"slices"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

// Every aggregate here is computed on read from current state.

func (r *Registry) Challenge(id string) (models.Challenge, bool) {
	c, ok := r.byID[id]
	if !ok {
		return models.Challenge{}, false
	}
	return clone(*c), true
}

func (r *Registry) All() []models.Challenge {
	return r.filter(func(*models.Challenge) bool { return true })
}

func (r *Registry) ByCategory(category string) []models.Challenge {
	return r.filter(func(c *models.Challenge) bool { return c.Category == category })
}

func (r *Registry) ByStatus(status models.ChallengeStatus) []models.Challenge {
	return r.filter(func(c *models.Challenge) bool { return c.Status == status })
}

func (r *Registry) AssignedTo(memberID string) []models.Challenge {
	return r.filter(func(c *models.Challenge) bool { return slices.Contains(c.AssignedTo, memberID) })
}

func (r *Registry) Assignment(id string) (models.Assignment, bool) {
	a, ok := r.assignments[id]
	if !ok {
		return models.Assignment{}, false
	}
	a.Members = slices.Clone(a.Members)
	return a, true
}

func (r *Registry) ProgressHistory(id string) []models.ProgressEntry {
	return slices.Clone(r.progress[id])
}

// Submissions lists every submission, or those for one challenge when
// challengeID is set.
func (r *Registry) Submissions(challengeID string) []models.Submission {
	out := make([]models.Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		if challengeID == "" || s.ChallengeID == challengeID {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) SolvedCount() int {
	return len(r.ByStatus(models.ChallengeSolved))
}

func (r *Registry) TotalPoints() int {
	total := 0
	for _, id := range r.order {
		total += r.byID[id].Points
	}
	return total
}

func (r *Registry) SolvedPoints() int {
	total := 0
	for _, id := range r.order {
		if c := r.byID[id]; c.Status == models.ChallengeSolved {
			total += c.Points
		}
	}
	return total
}

type Stats struct {
	Total        int            `json:"total"`
	Solved       int            `json:"solved"`
	TotalPoints  int            `json:"total_points"`
	SolvedPoints int            `json:"solved_points"`
	ByCategory   map[string]int `json:"by_category"`
}

func (r *Registry) Stats() Stats {
	st := Stats{
		Total:        len(r.order),
		Solved:       r.SolvedCount(),
		TotalPoints:  r.TotalPoints(),
		SolvedPoints: r.SolvedPoints(),
		ByCategory:   map[string]int{},
	}
	for _, id := range r.order {
		st.ByCategory[r.byID[id].Category]++
	}
	return st
}

func (r *Registry) filter(keep func(*models.Challenge) bool) []models.Challenge {
	out := make([]models.Challenge, 0, len(r.order))
	for _, id := range r.order {
		if c := r.byID[id]; keep(c) {
			out = append(out, clone(*c))
		}
	}
	return out
}
