// Package session owns the registries of one client session and
// serializes access to them. Mutations run under an exclusive lock and
// complete before any reader or subscriber observes the new state.
package session

import (
	"sync"
	"time"

	"github.com/sirdesai22/crosswire-replica/internal/challenges"
	"github.com/sirdesai22/crosswire-replica/internal/channels"
	"github.com/sirdesai22/crosswire-replica/internal/files"
	"github.com/sirdesai22/crosswire-replica/internal/members"
	"github.com/sirdesai22/crosswire-replica/internal/messages"
	"github.com/sirdesai22/crosswire-replica/internal/metrics"
)

type Topic string

const (
	TopicMessages   Topic = "messages"
	TopicChannels   Topic = "channels"
	TopicChallenges Topic = "challenges"
	TopicMembers    Topic = "members"
	TopicFiles      Topic = "files"
	TopicSession    Topic = "session"
)

// Change describes a mutation that altered state.
type Change struct {
	Topic     Topic
	Event     string
	ChannelID string
	IDs       []string
}

// State groups the registries. It must only be touched inside Mutate or Read.
type State struct {
	Messages   *messages.Ledger
	Channels   *channels.Registry
	Challenges *challenges.Registry
	Members    *members.Registry
	Files      *files.Registry
}

type Options struct {
	Clock func() time.Time
	NewID func() string
}

type Session struct {
	mu    sync.RWMutex
	state State

	subMu sync.Mutex
	subs  map[int]chan Change
	next  int
}

func New(opts Options) *Session {
	var ledgerOpts []messages.Option
	var challengeOpts []challenges.Option
	if opts.Clock != nil {
		ledgerOpts = append(ledgerOpts, messages.WithClock(opts.Clock))
		challengeOpts = append(challengeOpts, challenges.WithClock(opts.Clock))
	}
	if opts.NewID != nil {
		challengeOpts = append(challengeOpts, challenges.WithIDs(opts.NewID))
	}
	return &Session{
		state: State{
			Messages:   messages.NewLedger(ledgerOpts...),
			Channels:   channels.NewRegistry(),
			Challenges: challenges.NewRegistry(challengeOpts...),
			Members:    members.NewRegistry(),
			Files:      files.NewRegistry(),
		},
		subs: map[int]chan Change{},
	}
}

// Mutate runs fn under the exclusive lock. Subscribers are notified with c
// after the lock is released, and only when fn reports a change.
func (s *Session) Mutate(c Change, fn func(st *State) bool) bool {
	s.mu.Lock()
	changed := fn(&s.state)
	s.mu.Unlock()
	if changed {
		s.publish(c)
	}
	return changed
}

// Read runs fn under the shared lock. fn must not retain registry pointers.
func (s *Session) Read(fn func(st *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Reset clears every registry, as on disconnect.
func (s *Session) Reset() {
	s.Mutate(Change{Topic: TopicSession, Event: "reset"}, func(st *State) bool {
		st.Messages.ClearAll()
		st.Channels.Reset()
		st.Challenges.Reset()
		st.Members.Reset()
		st.Files.Reset()
		return true
	})
}

// Subscribe returns a channel of changes and a cancel func. A subscriber
// whose buffer is full misses the notification.
func (s *Session) Subscribe(buffer int) (<-chan Change, func()) {
	ch := make(chan Change, max(buffer, 1))
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Session) publish(c Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
			metrics.DroppedNotifications.Inc()
		}
	}
}
