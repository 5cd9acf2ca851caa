// Package messages is the per-channel message ledger: deduplicated,
// timestamp ordered, soft-deletable, with a bounded pinned set per channel.
package messages

import (
	"slices"
	"time"

	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/ordering"
)

type channelLedger struct {
	msgs   []*models.Message
	byID   map[string]*models.Message
	pinned []models.PinnedRef
}

func newChannelLedger() *channelLedger {
	return &channelLedger{byID: map[string]*models.Message{}}
}

func (c *channelLedger) pinIndex(id string) int {
	return slices.IndexFunc(c.pinned, func(p models.PinnedRef) bool { return p.MessageID == id })
}

// Ledger owns every channel's messages. A message id belongs to exactly one
// channel for its lifetime; owner records which.
type Ledger struct {
	channels map[string]*channelLedger
	owner    map[string]string
	editing  *models.Message
	now      func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the clock used to stamp pins.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, o := range opts {
		o(l)
	}
	l.ClearAll()
	return l
}

// channel returns the ledger for id, creating it on first use so messages
// may arrive before the channel registry knows the channel.
func (l *Ledger) channel(id string) *channelLedger {
	ch, ok := l.channels[id]
	if !ok {
		ch = newChannelLedger()
		l.channels[id] = ch
	}
	return ch
}

func (l *Ledger) lookup(channelID, id string) *models.Message {
	ch, ok := l.channels[channelID]
	if !ok {
		return nil
	}
	return ch.byID[id]
}

// Ingest inserts m into channelID unless its id is already known, which
// makes re-delivery a no-op. The one exception is a tombstoned message
// re-delivered with deleted=false: the source of truth is correcting us, so
// the message is restored. Reports whether the ledger changed.
func (l *Ledger) Ingest(channelID string, m models.Message) bool {
	if !ordering.ValidKey(m.ID) || channelID == "" {
		return false
	}
	if owner, ok := l.owner[m.ID]; ok && owner != channelID {
		return false
	}
	ch := l.channel(channelID)
	m.ChannelID = channelID

	if existing, ok := ch.byID[m.ID]; ok {
		if !existing.Deleted || m.Deleted {
			return false
		}
		restored := m.Clone()
		restored.Pinned = m.Pinned || ch.pinIndex(m.ID) >= 0
		*existing = restored
		return true
	}

	cp := m.Clone()
	if cp.Deleted {
		cp.Content = models.MessageContent{Text: models.Tombstone}
	}
	cp.Pinned = cp.Pinned || ch.pinIndex(cp.ID) >= 0
	ch.msgs = append(ch.msgs, &cp)
	ch.byID[cp.ID] = &cp
	l.owner[cp.ID] = channelID
	return true
}

// IngestBatch ingests each message, then re-sorts the channel by timestamp.
// The sort is stable, so equal timestamps keep arrival order. Returns the
// number of messages that changed the ledger.
func (l *Ledger) IngestBatch(channelID string, batch []models.Message) int {
	if channelID == "" {
		return 0
	}
	n := 0
	for _, m := range batch {
		if l.Ingest(channelID, m) {
			n++
		}
	}
	ch := l.channel(channelID)
	ordering.SortByTime(ch.msgs, func(m *models.Message) time.Time { return m.Timestamp })
	return n
}

// Update merges p onto an existing message. Absent and tombstoned messages
// are left alone; a patch can legitimately arrive before the message does.
func (l *Ledger) Update(channelID, id string, p models.MessagePatch) bool {
	m := l.lookup(channelID, id)
	if m == nil || m.Deleted {
		return false
	}
	if p.Content != nil {
		m.Content = *p.Content
		if p.Content.Code != nil {
			code := *p.Content.Code
			m.Content.Code = &code
		}
	}
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.ReplyToID != nil {
		m.ReplyToID = *p.ReplyToID
	}
	if p.Reactions != nil {
		m.Reactions = models.Message{Reactions: p.Reactions}.Clone().Reactions
	}
	return true
}

// React adds or removes memberID's emoji on a message in whichever channel
// owns it. Reactions are sets; an emoji left with no members is dropped.
func (l *Ledger) React(messageID, emoji, memberID string, add bool) bool {
	channelID, ok := l.owner[messageID]
	if !ok || emoji == "" || memberID == "" {
		return false
	}
	m := l.lookup(channelID, messageID)
	if m == nil || m.Deleted {
		return false
	}

	next := m.Clone().Reactions
	if next == nil {
		next = map[string][]string{}
	}
	ids := next[emoji]
	has := slices.Contains(ids, memberID)
	switch {
	case add && !has:
		next[emoji] = append(ids, memberID)
	case !add && has:
		ids = slices.DeleteFunc(ids, func(s string) bool { return s == memberID })
		if len(ids) == 0 {
			delete(next, emoji)
		} else {
			next[emoji] = ids
		}
	default:
		return false
	}
	return l.Update(channelID, messageID, models.MessagePatch{Reactions: next})
}

// SoftDelete tombstones a message. Id, channel, reactions and pin state
// are kept.
func (l *Ledger) SoftDelete(channelID, id string) bool {
	m := l.lookup(channelID, id)
	if m == nil || m.Deleted {
		return false
	}
	m.Deleted = true
	m.Content = models.MessageContent{Text: models.Tombstone}
	return true
}

// Pin appends m to the channel's pinned set. At capacity the oldest pin is
// evicted. Pinning an already pinned id is a no-op.
func (l *Ledger) Pin(channelID string, m models.Message) bool {
	if !ordering.ValidKey(m.ID) || channelID == "" {
		return false
	}
	ch := l.channel(channelID)
	if ch.pinIndex(m.ID) >= 0 {
		return false
	}
	if len(ch.pinned) >= models.MaxPinned {
		evicted := ch.pinned[0]
		ch.pinned = slices.Delete(ch.pinned, 0, 1)
		if em := ch.byID[evicted.MessageID]; em != nil {
			em.Pinned = false
		}
	}
	snap := m.Clone()
	snap.ChannelID = channelID
	snap.Pinned = true
	ch.pinned = append(ch.pinned, models.PinnedRef{MessageID: m.ID, PinnedAt: l.now(), Message: snap})
	if lm := ch.byID[m.ID]; lm != nil {
		lm.Pinned = true
	}
	return true
}

func (l *Ledger) Unpin(channelID, id string) bool {
	ch, ok := l.channels[channelID]
	if !ok {
		return false
	}
	i := ch.pinIndex(id)
	if i < 0 {
		return false
	}
	ch.pinned = slices.Delete(ch.pinned, i, i+1)
	if m := ch.byID[id]; m != nil {
		m.Pinned = false
	}
	return true
}

// Clear empties one channel's ledger and pinned set. A sub-channel's entry
// is dropped entirely; main always stays.
func (l *Ledger) Clear(channelID string) {
	if channelID == "" {
		l.ClearAll()
		return
	}
	ch, ok := l.channels[channelID]
	if !ok {
		return
	}
	for id := range ch.byID {
		delete(l.owner, id)
	}
	if channelID == models.MainChannelID {
		l.channels[channelID] = newChannelLedger()
		return
	}
	delete(l.channels, channelID)
}

// ClearAll resets to a single empty main channel.
func (l *Ledger) ClearAll() {
	l.channels = map[string]*channelLedger{models.MainChannelID: newChannelLedger()}
	l.owner = map[string]string{}
	l.editing = nil
}

// Messages returns copies of the channel's messages in ledger order.
func (l *Ledger) Messages(channelID string) []models.Message {
	ch, ok := l.channels[channelID]
	if !ok {
		return []models.Message{}
	}
	out := make([]models.Message, 0, len(ch.msgs))
	for _, m := range ch.msgs {
		out = append(out, m.Clone())
	}
	return out
}

// Message finds a message by id in any channel.
func (l *Ledger) Message(id string) (models.Message, bool) {
	channelID, ok := l.owner[id]
	if !ok {
		return models.Message{}, false
	}
	return l.lookup(channelID, id).Clone(), true
}

// Pinned returns the pinned set oldest first. Entries show the ledger's
// copy of the message when it is known.
func (l *Ledger) Pinned(channelID string) []models.PinnedRef {
	ch, ok := l.channels[channelID]
	if !ok {
		return []models.PinnedRef{}
	}
	out := make([]models.PinnedRef, 0, len(ch.pinned))
	for _, p := range ch.pinned {
		ref := p
		if m := ch.byID[p.MessageID]; m != nil {
			ref.Message = m.Clone()
		} else {
			ref.Message = p.Message.Clone()
		}
		out = append(out, ref)
	}
	return out
}

func (l *Ledger) Count(channelID string) int {
	if ch, ok := l.channels[channelID]; ok {
		return len(ch.msgs)
	}
	return 0
}

// ChannelIDs lists the channels that have a ledger, sorted.
func (l *Ledger) ChannelIDs() []string {
	ids := make([]string, 0, len(l.channels))
	for id := range l.channels {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SetEditing records the message the user is editing; nil clears it.
func (l *Ledger) SetEditing(m *models.Message) {
	if m == nil {
		l.editing = nil
		return
	}
	cp := m.Clone()
	l.editing = &cp
}

func (l *Ledger) Editing() (models.Message, bool) {
	if l.editing == nil {
		return models.Message{}, false
	}
	return l.editing.Clone(), true
}
