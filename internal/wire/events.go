package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

// Event types pushed by the remote authority.
const (
	MessageReceived   = "message:received"
	MessageBackfilled = "message:backfilled"
	MessageUpdated    = "message:updated"
	MessageReaction   = "message:reaction"
	MessageDeleted    = "message:deleted"
	MessagePinned     = "message:pinned"
	MessageUnpinned   = "message:unpinned"
	MessagesCleared   = "message:cleared"

	ChannelJoined  = "channel:joined"
	ChannelSync    = "channel:sync"
	ChannelCreated = "channel:created"
	ChannelUpdated = "channel:updated"
	ChannelRemoved = "channel:removed"

	ChallengeSync       = "challenge:sync"
	ChallengeCreated    = "challenge:created"
	ChallengeUpdated    = "challenge:updated"
	ChallengeRemoved    = "challenge:removed"
	ChallengeAssigned   = "challenge:assigned"
	ChallengeProgress   = "challenge:progress"
	ChallengeSubmission = "challenge:submission"

	MemberRoster      = "member:roster"
	MemberJoined      = "member:joined"
	MemberLeft        = "member:left"
	MemberUpdated     = "member:updated"
	MemberTaskChanged = "member:task"
	StatusChanged     = "status:changed"

	FileList              = "file:list"
	FileUploadStarted     = "file:upload:started"
	FileUploadProgress    = "file:upload:progress"
	FileUploadCompleted   = "file:upload:completed"
	FileUploadFailed      = "file:upload:failed"
	FileUploadCancelled   = "file:upload:cancelled"
	FileDownloadStarted   = "file:download:started"
	FileDownloadProgress  = "file:download:progress"
	FileDownloadCompleted = "file:download:completed"
	FileDownloadFailed    = "file:download:failed"
	FileDownloadCancelled = "file:download:cancelled"

	SessionDisconnected = "session:disconnected"
)

// Event is one pushed change. Data stays raw until a handler decodes it.
type Event struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	ChannelID string          `json:"channel_id"`
	Data      json.RawMessage `json:"data"`
}

func (e *Event) UnmarshalJSON(b []byte) error {
	type alias Event
	var raw struct {
		alias
		ChannelIDAlt string          `json:"ChannelID"`
		Payload      json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Event(raw.alias)
	e.ChannelID = firstNonEmpty(e.ChannelID, raw.ChannelIDAlt)
	if len(e.Data) == 0 {
		e.Data = raw.Payload
	}
	return nil
}

// ParseEvent decodes a single event frame.
func ParseEvent(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("parse event: missing type")
	}
	return e, nil
}

// Decode unmarshals the payload of e into T.
func Decode[T any](e Event) (T, error) {
	var out T
	if len(e.Data) == 0 {
		return out, fmt.Errorf("%s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return out, fmt.Errorf("%s: %w", e.Type, err)
	}
	return out, nil
}

// DecodeEntity reads either a bare object or one wrapped under key.
func DecodeEntity[T any](e Event, key string) (T, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &wrapped); err == nil {
		if inner := bytes.TrimSpace(wrapped[key]); len(inner) > 0 && inner[0] == '{' {
			e.Data = inner
		}
	}
	return Decode[T](e)
}

// ---------------- PAYLOADS ----------------

type Reaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	MemberID  string `json:"member_id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
}

func (r Reaction) Member() string { return firstNonEmpty(r.MemberID, r.UserID) }

// Add reports whether the reaction is being added; absent action means add.
func (r Reaction) Add() bool { return r.Action != "remove" }

type MessageRef struct {
	MessageID string   `json:"message_id"`
	Message   *Message `json:"message"`
}

// ID resolves the referenced id from either field.
func (r MessageRef) ID() string {
	if r.MessageID != "" || r.Message == nil {
		return r.MessageID
	}
	return r.Message.ID
}

// Channel is the channel the embedded message names, if any.
func (r MessageRef) Channel() string {
	if r.Message == nil {
		return ""
	}
	return firstNonEmpty(r.Message.ChannelID, r.Message.ChannelIDAlt)
}

type Update struct {
	MessageID string   `json:"message_id"`
	Content   *Content `json:"content"`
	Type      string   `json:"type"`
}

type Assign struct {
	ChallengeID string     `json:"challenge_id"`
	MemberIDs   StringList `json:"member_ids"`
	Members     StringList `json:"members"`
	AssignedTo  StringList `json:"assigned_to"`
}

func (a Assign) IDs() []string {
	for _, l := range []StringList{a.MemberIDs, a.Members, a.AssignedTo} {
		if len(l) > 0 {
			return []string(l)
		}
	}
	return nil
}

type Progress struct {
	ChallengeID string `json:"challenge_id"`
	Progress    int    `json:"progress"`
}

type Status struct {
	MemberID  string `json:"member_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	NewStatus string `json:"new_status"`
}

func (s Status) Member() string { return firstNonEmpty(s.MemberID, s.UserID) }
func (s Status) Value() string  { return firstNonEmpty(s.NewStatus, s.Status) }

type MemberTask struct {
	MemberID string `json:"member_id"`
	Task     *Task  `json:"task"`
}

// Ref names the subject of a removal or lifecycle event. A bare JSON
// string is read as the id.
type Ref struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	ChallengeID string `json:"challenge_id"`
	MemberID    string `json:"member_id"`
	UserID      string `json:"user_id"`
	FileID      string `json:"file_id"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		*r = Ref{}
		return json.Unmarshal(b, &r.ID)
	}
	type alias Ref
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*r = Ref(a)
	return nil
}

func (r Ref) Channel() string   { return firstNonEmpty(r.ChannelID, r.ID) }
func (r Ref) Challenge() string { return firstNonEmpty(r.ChallengeID, r.ID) }
func (r Ref) Member() string    { return firstNonEmpty(r.MemberID, r.UserID, r.ID) }
func (r Ref) File() string      { return firstNonEmpty(r.FileID, r.ID) }

// Joined describes the channel session the client has entered.
type Joined struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CreatedAt     Stamp  `json:"created_at"`
	TransportMode string `json:"transport_mode"`
	MaxMembers    *int   `json:"max_members"`
	MemberCount   *int   `json:"member_count"`
}

func (j Joined) Patch() models.ChannelInfoPatch {
	p := models.ChannelInfoPatch{MaxMembers: j.MaxMembers, MemberCount: j.MemberCount}
	if j.ID != "" {
		p.ID = &j.ID
	}
	if j.Name != "" {
		p.Name = &j.Name
	}
	if j.TransportMode != "" {
		p.TransportMode = &j.TransportMode
	}
	if !j.CreatedAt.IsZero() {
		t := j.CreatedAt.Time
		p.CreatedAt = &t
	}
	return p
}

type FileProgress struct {
	FileID   string `json:"file_id"`
	Progress int    `json:"progress"`
}

type FileComplete struct {
	FileID string `json:"file_id"`
	File   *File  `json:"file"`
}

func (c FileComplete) ID() string {
	if c.FileID != "" || c.File == nil {
		return c.FileID
	}
	return c.File.ID
}

type FileFailed struct {
	FileID string `json:"file_id"`
	Error  string `json:"error"`
}
