package elastic

import (
	"encoding/json"
	"time"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

type MessageDoc struct {
	ChannelID      string    `json:"channel_id"`
	SenderID       string    `json:"sender_id"`
	SenderNickname string    `json:"sender_nickname,omitempty"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	Language       string    `json:"language,omitempty"`
	ReplyToID      string    `json:"reply_to_id,omitempty"`
	Deleted        bool      `json:"deleted"`
	Pinned         bool      `json:"pinned"`
	Timestamp      time.Time `json:"timestamp"`
}

// BuildMessageDoc flattens m for indexing. Tombstones keep their redacted
// text so a deleted message stops matching its old content.
func BuildMessageDoc(m models.Message) ([]byte, error) {
	doc := MessageDoc{
		ChannelID:      m.ChannelID,
		SenderID:       m.SenderID,
		SenderNickname: m.SenderNickname,
		Type:           string(m.Type),
		Content:        m.Content.Plain(),
		ReplyToID:      m.ReplyToID,
		Deleted:        m.Deleted,
		Pinned:         m.Pinned,
		Timestamp:      m.Timestamp,
	}
	if m.Content.Code != nil {
		doc.Language = m.Content.Code.Language
	}
	return json.Marshal(doc)
}
