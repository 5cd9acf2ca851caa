// Package channels holds the main channel, the dynamic sub-channels, the
// active selection and unread accounting.
package channels

import (
	"slices"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

const (
	mainChannelName   = "Main"
	defaultMaxMembers = 50
)

type Registry struct {
	current  models.ChannelInfo
	main     models.Channel
	subs     []models.Channel
	selected string
}

func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset restores an empty main channel, drops every sub-channel and
// selects main.
func (r *Registry) Reset() {
	r.current = models.ChannelInfo{MaxMembers: defaultMaxMembers}
	r.main = models.Channel{ID: models.MainChannelID, Name: mainChannelName, Kind: models.ChannelMain}
	r.subs = nil
	r.selected = models.MainChannelID
}

// SetCurrentChannel merges p onto the joined session's channel info.
func (r *Registry) SetCurrentChannel(p models.ChannelInfoPatch) {
	c := &r.current
	if p.ID != nil {
		c.ID = *p.ID
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.CreatedAt != nil {
		c.CreatedAt = *p.CreatedAt
	}
	if p.TransportMode != nil {
		c.TransportMode = *p.TransportMode
	}
	if p.MaxMembers != nil {
		c.MaxMembers = *p.MaxMembers
	}
	if p.MemberCount != nil {
		c.MemberCount = *p.MemberCount
	}
}

func (r *Registry) CurrentChannel() models.ChannelInfo { return r.current }

// SetSubChannels replaces every sub-channel. Unread counts start at zero.
func (r *Registry) SetSubChannels(list []models.Channel) {
	r.subs = make([]models.Channel, 0, len(list))
	for _, ch := range list {
		r.AddSubChannel(ch)
	}
}

// AddSubChannel inserts ch unless a sub-channel with its id exists.
func (r *Registry) AddSubChannel(ch models.Channel) bool {
	if ch.ID == "" || ch.ID == models.MainChannelID || r.subIndex(ch.ID) >= 0 {
		return false
	}
	r.subs = append(r.subs, models.Channel{
		ID:           ch.ID,
		Name:         ch.Name,
		Kind:         models.ChannelSub,
		MessageCount: ch.MessageCount,
	})
	return true
}

func (r *Registry) RemoveSubChannel(id string) bool {
	i := r.subIndex(id)
	if i < 0 {
		return false
	}
	r.subs = slices.Delete(r.subs, i, i+1)
	return true
}

func (r *Registry) UpdateSubChannel(id string, p models.ChannelPatch) bool {
	i := r.subIndex(id)
	if i < 0 {
		return false
	}
	apply(&r.subs[i], p)
	return true
}

// UpdateChannel patches main or a sub-channel.
func (r *Registry) UpdateChannel(id string, p models.ChannelPatch) bool {
	ch := r.lookup(id)
	if ch == nil {
		return false
	}
	apply(ch, p)
	return true
}

// AddChannel merges a main-kind channel into main and adds anything else
// as a sub-channel.
func (r *Registry) AddChannel(ch models.Channel) bool {
	if ch.Kind == models.ChannelMain || ch.ID == models.MainChannelID {
		p := models.ChannelPatch{MessageCount: &ch.MessageCount}
		if ch.Name != "" {
			p.Name = &ch.Name
		}
		apply(&r.main, p)
		return true
	}
	return r.AddSubChannel(ch)
}

// RemoveChannel removes a sub-channel. Main is never removed, only reset.
func (r *Registry) RemoveChannel(id string) bool {
	if id == models.MainChannelID {
		r.Reset()
		return true
	}
	return r.RemoveSubChannel(id)
}

// SelectChannel makes id the active channel and marks it read.
func (r *Registry) SelectChannel(id string) {
	r.selected = id
	if ch := r.lookup(id); ch != nil {
		ch.UnreadCount = 0
	}
}

// IncrementUnread bumps the unread count of id unless it is selected.
func (r *Registry) IncrementUnread(id string) bool {
	ch := r.lookup(id)
	if ch == nil || id == r.selected {
		return false
	}
	ch.UnreadCount++
	return true
}

// RecordMessage bumps the message count of id.
func (r *Registry) RecordMessage(id string) bool {
	ch := r.lookup(id)
	if ch == nil {
		return false
	}
	ch.MessageCount++
	return true
}

func (r *Registry) SelectedID() string { return r.selected }

func (r *Registry) Selected() (models.Channel, bool) {
	return r.Channel(r.selected)
}

func (r *Registry) Channel(id string) (models.Channel, bool) {
	if ch := r.lookup(id); ch != nil {
		return *ch, true
	}
	return models.Channel{}, false
}

// Channels lists main first, then sub-channels in insertion order.
func (r *Registry) Channels() []models.Channel {
	out := make([]models.Channel, 0, len(r.subs)+1)
	out = append(out, r.main)
	return append(out, r.subs...)
}

func (r *Registry) SubChannels() []models.Channel {
	return slices.Clone(r.subs)
}

func (r *Registry) TotalUnread() int {
	total := r.main.UnreadCount
	for _, ch := range r.subs {
		total += ch.UnreadCount
	}
	return total
}

func (r *Registry) lookup(id string) *models.Channel {
	if id == models.MainChannelID {
		return &r.main
	}
	if i := r.subIndex(id); i >= 0 {
		return &r.subs[i]
	}
	return nil
}

func (r *Registry) subIndex(id string) int {
	return slices.IndexFunc(r.subs, func(c models.Channel) bool { return c.ID == id })
}

func apply(ch *models.Channel, p models.ChannelPatch) {
	if p.Name != nil {
		ch.Name = *p.Name
	}
	if p.MessageCount != nil {
		ch.MessageCount = *p.MessageCount
	}
}
