package challenges

import (
	"sort"
	"time"
)

// NameLookup resolves member display names. The member registry
// satisfies it.
type NameLookup interface {
	Nickname(id string) string
}

type LeaderboardEntry struct {
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name"`
	TotalPoints int       `json:"total_points"`
	SolvedCount int       `json:"solved_count"`
	LastSolveAt time.Time `json:"last_solve_at"`
	Rank        int       `json:"rank"`
}

// Leaderboard ranks members from the submission history. A member scores
// a challenge's points once, on their first correct submission for a
// challenge that still exists. Ties on points go to whoever reached the
// total first, then to member id.
func (r *Registry) Leaderboard(names NameLookup) []LeaderboardEntry {
	type key struct{ member, challenge string }
	credited := map[key]bool{}
	byMember := map[string]*LeaderboardEntry{}

	for _, s := range r.submissions {
		if !s.Correct {
			continue
		}
		c, ok := r.byID[s.ChallengeID]
		if !ok {
			continue
		}
		k := key{s.MemberID, s.ChallengeID}
		if credited[k] {
			continue
		}
		credited[k] = true

		e, ok := byMember[s.MemberID]
		if !ok {
			e = &LeaderboardEntry{MemberID: s.MemberID}
			byMember[s.MemberID] = e
		}
		e.TotalPoints += c.Points
		e.SolvedCount++
		if s.SubmittedAt.After(e.LastSolveAt) {
			e.LastSolveAt = s.SubmittedAt
		}
	}

	out := make([]LeaderboardEntry, 0, len(byMember))
	for _, e := range byMember {
		e.MemberName = e.MemberID
		if names != nil {
			e.MemberName = names.Nickname(e.MemberID)
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if !a.LastSolveAt.Equal(b.LastSolveAt) {
			return a.LastSolveAt.Before(b.LastSolveAt)
		}
		return a.MemberID < b.MemberID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
