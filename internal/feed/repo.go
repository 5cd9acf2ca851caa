// Package feed moves remote events into the ingestion boundary, either by
// polling the Postgres event feed or by reading a websocket push stream.
package feed

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// Source returns feed events with an id greater than after, in id order.
type Source interface {
	Fetch(ctx context.Context, after int64, limit int) ([]models.FeedEvent, error)
}

// GormSource reads the feed_events table.
type GormSource struct{ DB *gorm.DB }

func (s GormSource) Fetch(ctx context.Context, after int64, limit int) ([]models.FeedEvent, error) {
	var evts []models.FeedEvent
	tx := s.DB.WithContext(ctx).
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&evts)
	return evts, tx.Error
}

// ToEvent maps a stored feed row onto the wire envelope.
func ToEvent(fe models.FeedEvent) wire.Event {
	return wire.Event{
		Seq:       fe.ID,
		Type:      fe.Type,
		ChannelID: fe.ChannelID,
		Data:      json.RawMessage(fe.Payload),
	}
}
