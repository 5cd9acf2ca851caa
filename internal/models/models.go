package models

import (
	"time"
)

// MainChannelID is the fixed identity of the main channel.
const MainChannelID = "main"

// Tombstone replaces the content of a soft-deleted message.
const Tombstone = "This message was deleted"

// MaxPinned bounds the pinned set of a channel.
const MaxPinned = 5

// ---------------- MESSAGES ----------------
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageCode   MessageType = "code"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

// CodeBlock is the structured content of a code message.
type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
	Filename string `json:"filename,omitempty"`
}

// MessageContent is either plain text or a code block.
type MessageContent struct {
	Text string     `json:"text,omitempty"`
	Code *CodeBlock `json:"code,omitempty"`
}

// Plain returns the searchable text of the content.
func (c MessageContent) Plain() string {
	if c.Code != nil {
		return c.Code.Code
	}
	return c.Text
}

type Message struct {
	ID             string              `json:"id"`
	ChannelID      string              `json:"channel_id"`
	SenderID       string              `json:"sender_id"`
	SenderNickname string              `json:"sender_nickname,omitempty"`
	Type           MessageType         `json:"type"`
	Content        MessageContent      `json:"content"`
	Timestamp      time.Time           `json:"timestamp"`
	ReplyToID      string              `json:"reply_to_id,omitempty"`
	Deleted        bool                `json:"deleted"`
	Pinned         bool                `json:"pinned"`
	Reactions      map[string][]string `json:"reactions,omitempty"` // emoji -> member ids
}

// Clone returns a deep copy so callers cannot reach ledger state.
func (m Message) Clone() Message {
	out := m
	if m.Content.Code != nil {
		code := *m.Content.Code
		out.Content.Code = &code
	}
	if m.Reactions != nil {
		out.Reactions = make(map[string][]string, len(m.Reactions))
		for emoji, ids := range m.Reactions {
			out.Reactions[emoji] = append([]string(nil), ids...)
		}
	}
	return out
}

// MessagePatch is a partial update; nil fields are left untouched.
type MessagePatch struct {
	Content   *MessageContent
	Type      *MessageType
	ReplyToID *string
	Reactions map[string][]string
}

// PinnedRef is one entry of a channel's pinned set. Message is the copy
// supplied with the pin event, used until the ledger knows the message.
type PinnedRef struct {
	MessageID string    `json:"message_id"`
	PinnedAt  time.Time `json:"pinned_at"`
	Message   Message   `json:"message"`
}

// ---------------- CHANNELS ----------------
type ChannelKind string

const (
	ChannelMain ChannelKind = "main"
	ChannelSub  ChannelKind = "sub"
)

type Channel struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Kind         ChannelKind `json:"type"`
	UnreadCount  int         `json:"unread_count"`
	MessageCount int64       `json:"message_count"`
}

type ChannelPatch struct {
	Name         *string
	MessageCount *int64
}

// ChannelInfo describes the channel session the client joined.
type ChannelInfo struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	TransportMode string    `json:"transport_mode"`
	MaxMembers    int       `json:"max_members"`
	MemberCount   int       `json:"member_count"`
}

type ChannelInfoPatch struct {
	ID            *string
	Name          *string
	CreatedAt     *time.Time
	TransportMode *string
	MaxMembers    *int
	MemberCount   *int
}

// ---------------- MEMBERS ----------------
const StatusOffline = "offline"

// TaskRef is what a member is currently working on.
type TaskRef struct {
	ChallengeID string    `json:"challenge"`
	StartedAt   time.Time `json:"start_time"`
	Progress    int       `json:"progress"`
	Notes       string    `json:"notes,omitempty"`
	Teammates   []string  `json:"teammates,omitempty"`
}

type Member struct {
	ID          string   `json:"id"`
	Nickname    string   `json:"nickname"`
	Role        string   `json:"role"`
	Skills      []string `json:"skills,omitempty"`
	Status      string   `json:"status"` // opaque, supplied by the remote authority
	Avatar      string   `json:"avatar,omitempty"`
	CurrentTask *TaskRef `json:"current_task,omitempty"`
}

func (m Member) Online() bool { return m.Status != StatusOffline }

type MemberPatch struct {
	Nickname *string
	Role     *string
	Skills   []string
	Status   *string
	Avatar   *string
}

// ---------------- CHALLENGES ----------------
type ChallengeStatus string

const (
	ChallengeOpen       ChallengeStatus = "open"
	ChallengeInProgress ChallengeStatus = "in_progress"
	ChallengeSolved     ChallengeStatus = "solved"
)

type Challenge struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Points      int             `json:"points"`
	Status      ChallengeStatus `json:"status"`
	AssignedTo  []string        `json:"assigned_to,omitempty"`
	Progress    int             `json:"progress"`
	Flag        string          `json:"-"` // compared verbatim, never exposed
	SolvedBy    string          `json:"solved_by,omitempty"`
	SolvedAt    *time.Time      `json:"solved_at,omitempty"`
}

type ChallengePatch struct {
	Title       *string
	Description *string
	Category    *string
	Difficulty  *string
	Points      *int
	Status      *ChallengeStatus
	Flag        *string
}

// Submission is append-only.
type Submission struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challenge_id"`
	MemberID    string    `json:"member_id"`
	Flag        string    `json:"-"`
	Correct     bool      `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ProgressEntry struct {
	Value     int       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type Assignment struct {
	Members    []string  `json:"members"`
	AssignedAt time.Time `json:"assigned_at"`
}

// ---------------- FILES ----------------
type TransferStatus string

const (
	TransferUploading TransferStatus = "uploading"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
	TransferCancelled TransferStatus = "cancelled"
)

type Direction string

const (
	Upload   Direction = "upload"
	Download Direction = "download"
)

type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type,omitempty"`
	UploaderID string    `json:"uploader_id,omitempty"`
	ChannelID  string    `json:"channel_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Transfer is an in-flight upload or download.
type Transfer struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Size      int64          `json:"size"`
	Progress  int            `json:"progress"`
	Status    TransferStatus `json:"status"`
	Direction Direction      `json:"direction"`
	Error     string         `json:"error,omitempty"`
}
