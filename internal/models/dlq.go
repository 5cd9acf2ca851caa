package models

import "time"

// DeadLetter is an ingested event the boundary could not apply.
type DeadLetter struct {
	Seq       int64     `json:"seq"`
	Type      string    `json:"type"`
	ChannelID string    `json:"channel_id,omitempty"`
	ErrorMsg  string    `json:"error"`
	Payload   []byte    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
