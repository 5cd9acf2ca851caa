package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Rejecter parks frames that could not be parsed into an event. The ingest
// dispatcher satisfies it.
type Rejecter interface {
	Reject(e wire.Event, err error)
}

// WebsocketSource reads JSON event frames pushed by the remote authority.
type WebsocketSource struct {
	URL    string
	Dialer *websocket.Dialer
	Apply  Applier
}

// Run reads frames until ctx ends, reconnecting with backoff when the
// connection drops.
func (s *WebsocketSource) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		n, err := s.readOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if n > 0 {
			backoff = minBackoff
		}
		log.Printf("🔌 feed websocket closed after %d events: %v (retry in %s)", n, err, backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// readOnce holds one connection open and returns the number of frames read.
func (s *WebsocketSource) readOnce(ctx context.Context) (int, error) {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("dial %s: %w", s.URL, err)
	}
	defer conn.Close()
	log.Printf("✅ Connected to feed websocket %s", s.URL)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	n := 0
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return n, err
		}
		n++
		e, err := wire.ParseEvent(frame)
		if err != nil {
			if r, ok := s.Apply.(Rejecter); ok {
				r.Reject(wire.Event{Data: json.RawMessage(frame)}, fmt.Errorf("parse frame: %w", err))
			} else {
				log.Printf("feed websocket: %v", err)
			}
			continue
		}
		// Failures are dead-lettered by the applier.
		_ = s.Apply.Apply(ctx, e)
	}
}
