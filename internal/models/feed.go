package models

import (
	"time"

	"gorm.io/datatypes"
)

// ---------------- FEED (events written by the remote authority) ----------------
type FeedEvent struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Type      string `gorm:"index;not null"` // message:received | challenge:assigned | ...
	ChannelID string `gorm:"index"`
	Payload   datatypes.JSON
	CreatedAt time.Time
}
