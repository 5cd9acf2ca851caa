// Package members keeps the roster of channel participants.
package members

import (
	"slices"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

// Registry is the member roster. It is not safe for concurrent use; the
// session serializes access.
type Registry struct {
	order []string
	byID  map[string]*models.Member
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]*models.Member{}}
}

// SetMembers replaces the roster. Later duplicates of an id are dropped.
func (r *Registry) SetMembers(list []models.Member) {
	r.Reset()
	for _, m := range list {
		r.Add(m)
	}
}

// Add inserts m unless its id is already known.
func (r *Registry) Add(m models.Member) bool {
	if m.ID == "" {
		return false
	}
	if _, ok := r.byID[m.ID]; ok {
		return false
	}
	cp := cloneMember(m)
	r.byID[m.ID] = &cp
	r.order = append(r.order, m.ID)
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

// Update merges p onto the member. Unknown ids are ignored.
func (r *Registry) Update(id string, p models.MemberPatch) bool {
	m, ok := r.byID[id]
	if !ok {
		return false
	}
	if p.Nickname != nil {
		m.Nickname = *p.Nickname
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.Skills != nil {
		m.Skills = append([]string(nil), p.Skills...)
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Avatar != nil {
		m.Avatar = *p.Avatar
	}
	return true
}

func (r *Registry) UpdateStatus(id, status string) bool {
	return r.Update(id, models.MemberPatch{Status: &status})
}

// UpdateTask sets (or clears, with nil) the member's current task.
func (r *Registry) UpdateTask(id string, task *models.TaskRef) bool {
	m, ok := r.byID[id]
	if !ok {
		return false
	}
	m.CurrentTask = cloneTask(task)
	return true
}

func (r *Registry) Reset() {
	r.order = nil
	r.byID = map[string]*models.Member{}
}

func (r *Registry) Member(id string) (models.Member, bool) {
	m, ok := r.byID[id]
	if !ok {
		return models.Member{}, false
	}
	return cloneMember(*m), true
}

// Nickname resolves a display name, falling back to the id.
func (r *Registry) Nickname(id string) string {
	if m, ok := r.byID[id]; ok && m.Nickname != "" {
		return m.Nickname
	}
	return id
}

func (r *Registry) All() []models.Member {
	return r.filter(func(*models.Member) bool { return true })
}

func (r *Registry) Online() []models.Member {
	return r.filter(func(m *models.Member) bool { return m.Online() })
}

func (r *Registry) Offline() []models.Member {
	return r.filter(func(m *models.Member) bool { return !m.Online() })
}

func (r *Registry) BySkill(skill string) []models.Member {
	return r.filter(func(m *models.Member) bool { return slices.Contains(m.Skills, skill) })
}

func (r *Registry) Count() int { return len(r.order) }

func (r *Registry) OnlineCount() int {
	n := 0
	for _, id := range r.order {
		if r.byID[id].Online() {
			n++
		}
	}
	return n
}

func (r *Registry) filter(keep func(*models.Member) bool) []models.Member {
	out := make([]models.Member, 0, len(r.order))
	for _, id := range r.order {
		if m := r.byID[id]; keep(m) {
			out = append(out, cloneMember(*m))
		}
	}
	return out
}

func cloneMember(m models.Member) models.Member {
	m.Skills = append([]string(nil), m.Skills...)
	m.CurrentTask = cloneTask(m.CurrentTask)
	return m
}

func cloneTask(t *models.TaskRef) *models.TaskRef {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Teammates = append([]string(nil), t.Teammates...)
	return &cp
}
