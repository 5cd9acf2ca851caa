package feed

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// Applier consumes one event. The ingest dispatcher satisfies it.
type Applier interface {
	Apply(ctx context.Context, e wire.Event) error
}

type Poller struct {
	Source    Source
	Apply     Applier
	Interval  time.Duration
	BatchSize int

	cursor int64
}

// Run polls until ctx ends. The cursor lives in memory only; replaying the
// feed after a restart is safe because ingestion is idempotent.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := p.processOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("feed poll error: %v", err)
			}
		}
	}
}

func (p *Poller) Cursor() int64 { return p.cursor }

// processOnce applies one batch and returns how many events it read.
// Events that fail to apply are already dead-lettered by the applier, so
// the cursor moves past them.
func (p *Poller) processOnce(ctx context.Context) (int, error) {
	batch, err := p.Source.Fetch(ctx, p.cursor, p.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	failed := 0
	for _, fe := range batch {
		if err := p.Apply.Apply(ctx, ToEvent(fe)); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return 0, err
			}
			failed++
		}
		p.cursor = fe.ID
	}
	log.Printf("📥 feed batch applied=%d failed=%d cursor=%d", len(batch)-failed, failed, p.cursor)
	return len(batch), nil
}
