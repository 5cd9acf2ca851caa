// Package services appends events to the Postgres event feed.
package services

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

// Draft is an event not yet written to the feed.
type Draft struct {
	Type      string
	ChannelID string
	Payload   any
}

// AddFeedEvent inserts one event into the feed.
func AddFeedEvent(tx *gorm.DB, d Draft) (models.FeedEvent, error) {
	data, err := json.Marshal(d.Payload)
	if err != nil {
		return models.FeedEvent{}, fmt.Errorf("encode %s payload: %w", d.Type, err)
	}
	event := models.FeedEvent{
		Type:      d.Type,
		ChannelID: d.ChannelID,
		Payload:   datatypes.JSON(data),
	}
	if err := tx.Create(&event).Error; err != nil {
		log.Printf("❌ Failed to create feed event: %v", err)
		return models.FeedEvent{}, err
	}
	return event, nil
}

// AddFeedEvents inserts drafts in order inside one transaction, so readers
// see either all of them or none.
func AddFeedEvents(db *gorm.DB, drafts []Draft) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, d := range drafts {
			if _, err := AddFeedEvent(tx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("📦 %d feed events created", len(drafts))
	return nil
}
