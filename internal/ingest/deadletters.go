package ingest

import (
	"sync"
	"time"

	"github.com/sirdesai22/crosswire-replica/internal/metrics"
	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// DeadLetters keeps the most recent failed events in memory. The oldest
// entry is dropped once capacity is reached.
type DeadLetters struct {
	mu       sync.Mutex
	capacity int
	items    []models.DeadLetter
	now      func() time.Time
}

func NewDeadLetters(capacity int) *DeadLetters {
	return &DeadLetters{capacity: max(capacity, 1), now: time.Now}
}

func (q *DeadLetters) Put(e wire.Event, msg string) {
	metrics.DeadLetters.Inc()
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, models.DeadLetter{
		Seq:       e.Seq,
		Type:      e.Type,
		ChannelID: e.ChannelID,
		ErrorMsg:  msg,
		Payload:   append([]byte(nil), e.Data...),
		CreatedAt: q.now(),
	})
}

// List returns the parked events, newest first.
func (q *DeadLetters) List() []models.DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.DeadLetter, len(q.items))
	for i, d := range q.items {
		out[len(q.items)-1-i] = d
	}
	return out
}

func (q *DeadLetters) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
