package db

import (
	"log"

	"gorm.io/gorm"

	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/services"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// SeedEvents is a short session: a member joins, takes challenge c1, gets
// halfway and solves it, with a little chatter in a sub-channel.
func SeedEvents() []services.Draft {
	return []services.Draft{
		{Type: wire.ChannelJoined, Payload: map[string]any{"id": "ctf-night", "name": "CTF Night", "transport_mode": "relay", "max_members": 50}},
		{Type: wire.ChannelSync, Payload: []map[string]any{{"id": "web-100", "name": "web-100"}}},
		{Type: wire.MemberJoined, Payload: map[string]any{"id": "m1", "nickname": "alice", "role": "member", "status": "online", "skills": []string{"web"}}},
		{Type: wire.ChallengeCreated, Payload: map[string]any{"id": "c1", "title": "Warmup", "category": "web", "points": 100, "flag": "F1"}},
		{Type: wire.ChallengeAssigned, Payload: map[string]any{"challenge_id": "c1", "member_ids": []string{"m1"}}},
		{Type: wire.MessageReceived, ChannelID: "web-100", Payload: map[string]any{"id": "msg-1", "sender_id": "m1", "content": "looking at the login form", "timestamp": 1740830400}},
		{Type: wire.ChallengeProgress, Payload: map[string]any{"challenge_id": "c1", "progress": 50}},
		{Type: wire.ChallengeSubmission, Payload: map[string]any{"id": "sub-1", "challenge_id": "c1", "member_id": "m1", "is_correct": true, "submitted_at": 1740830700}},
		{Type: wire.MessageReceived, ChannelID: "web-100", Payload: map[string]any{"id": "msg-2", "sender_id": "m1", "content": "solved c1", "timestamp": 1740830710}},
	}
}

// Seed writes SeedEvents into an empty feed.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.FeedEvent{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("🌱 Feed already has events, skipping seed.")
		return nil
	}
	if err := services.AddFeedEvents(db, SeedEvents()); err != nil {
		return err
	}
	log.Println("🌱 Sample feed inserted successfully.")
	return nil
}
