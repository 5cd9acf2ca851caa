// Package challenges is the CTF task registry: definitions, assignment,
// progress history, flag submissions and scoring.
//
// Status moves open -> in_progress -> solved. Assignment forces
// in_progress from any status, solved included; that permissive edge is
// kept on purpose. Once solved, the first solver and solve time are never
// overwritten.
package challenges

import (
	"slices"
	"time"

	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/ordering"
)

type Registry struct {
	order       []string
	byID        map[string]*models.Challenge
	assignments map[string]models.Assignment
	progress    map[string][]models.ProgressEntry
	submissions []models.Submission
	seen        map[string]struct{} // submission ids

	now   func() time.Time
	newID func() string
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDs overrides how local submission ids are minted.
func WithIDs(newID func() string) Option {
	return func(r *Registry) { r.newID = newID }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{now: time.Now, newID: ordering.NewKey}
	for _, o := range opts {
		o(r)
	}
	r.Reset()
	return r
}

func (r *Registry) Reset() {
	r.order = nil
	r.byID = map[string]*models.Challenge{}
	r.assignments = map[string]models.Assignment{}
	r.progress = map[string][]models.ProgressEntry{}
	r.submissions = nil
	r.seen = map[string]struct{}{}
}

// SetChallenges replaces the challenge definitions. Assignment, progress
// and submission history are kept.
func (r *Registry) SetChallenges(list []models.Challenge) {
	r.order = nil
	r.byID = map[string]*models.Challenge{}
	for _, c := range list {
		r.Add(c)
	}
}

func (r *Registry) Add(c models.Challenge) bool {
	if !ordering.ValidKey(c.ID) {
		return false
	}
	if _, ok := r.byID[c.ID]; ok {
		return false
	}
	if c.Status == "" {
		c.Status = models.ChallengeOpen
	}
	cp := clone(c)
	if cp.Status == models.ChallengeSolved {
		cp.Progress = 100
	}
	r.byID[c.ID] = &cp
	r.order = append(r.order, c.ID)
	return true
}

func (r *Registry) Update(id string, p models.ChallengePatch) bool {
	c, ok := r.byID[id]
	if !ok {
		return false
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Difficulty != nil {
		c.Difficulty = *p.Difficulty
	}
	if p.Points != nil {
		c.Points = *p.Points
	}
	if p.Flag != nil {
		c.Flag = *p.Flag
	}
	if p.Status != nil {
		c.Status = *p.Status
		if c.Status == models.ChallengeSolved {
			c.Progress = 100
		}
	}
	return true
}

func (r *Registry) Remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return true
}

// Assign sets the assigned members and forces in_progress, whatever the
// current status.
func (r *Registry) Assign(id string, memberIDs []string) bool {
	c, ok := r.byID[id]
	if !ok {
		return false
	}
	c.AssignedTo = slices.Clone(memberIDs)
	c.Status = models.ChallengeInProgress
	r.assignments[id] = models.Assignment{Members: slices.Clone(memberIDs), AssignedAt: r.now()}
	return true
}

// UpdateProgress records value (clamped to 0..100) and appends it to the
// history. Status is untouched; a solved challenge stays at 100.
func (r *Registry) UpdateProgress(id string, value int) bool {
	c, ok := r.byID[id]
	if !ok {
		return false
	}
	value = min(max(value, 0), 100)
	if c.Status != models.ChallengeSolved {
		c.Progress = value
	}
	r.progress[id] = append(r.progress[id], models.ProgressEntry{Value: value, Timestamp: r.now()})
	return true
}

// SubmitFlag compares flag verbatim against the stored flag and records a
// submission either way. An unknown challenge, or one whose flag the
// replica does not know, is simply incorrect.
func (r *Registry) SubmitFlag(id, memberID, flag string) bool {
	c, ok := r.byID[id]
	correct := ok && c.Flag != "" && c.Flag == flag

	at := r.now()
	r.record(models.Submission{
		ID:          r.newID(),
		ChallengeID: id,
		MemberID:    memberID,
		Flag:        flag,
		Correct:     correct,
		SubmittedAt: at,
	})
	if correct {
		solve(c, memberID, at)
	}
	return correct
}

// ApplySubmissionResult records a result judged by the remote authority.
// Each submission id is applied once.
func (r *Registry) ApplySubmissionResult(s models.Submission) bool {
	if s.ID == "" {
		s.ID = r.newID()
	}
	if _, dup := r.seen[s.ID]; dup {
		return false
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = r.now()
	}
	r.record(s)
	if c, ok := r.byID[s.ChallengeID]; ok && s.Correct {
		solve(c, s.MemberID, s.SubmittedAt)
	}
	return true
}

func (r *Registry) record(s models.Submission) {
	r.seen[s.ID] = struct{}{}
	r.submissions = append(r.submissions, s)
}

// solve marks c solved. The first recorded solver wins.
func solve(c *models.Challenge, memberID string, at time.Time) {
	c.Status = models.ChallengeSolved
	c.Progress = 100
	if c.SolvedBy == "" {
		c.SolvedBy = memberID
		t := at
		c.SolvedAt = &t
	}
}

func clone(c models.Challenge) models.Challenge {
	c.AssignedTo = slices.Clone(c.AssignedTo)
	if c.SolvedAt != nil {
		t := *c.SolvedAt
		c.SolvedAt = &t
	}
	return c
}
