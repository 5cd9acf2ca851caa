package wire

import (
	"encoding/json"
	"fmt"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

// Field pairs such as message_count/MessageCount cover the two casings the
// remote authority has shipped. Plain id/ID and name/Name need no pair:
// encoding/json matches keys case-insensitively.

type Message struct {
	ID             string    `json:"id"`
	ChannelID      string    `json:"channel_id"`
	ChannelIDAlt   string    `json:"ChannelID"`
	SenderID       string    `json:"sender_id"`
	SenderIDAlt    string    `json:"SenderID"`
	SenderNickname string    `json:"sender_nickname"`
	SenderName     string    `json:"sender_name"`
	Type           string    `json:"type"`
	Content        Content   `json:"content"`
	ContentText    string    `json:"content_text"`
	Timestamp      Stamp     `json:"timestamp"`
	ReplyToID      *string   `json:"reply_to_id"`
	Deleted        bool      `json:"deleted"`
	IsDeleted      bool      `json:"is_deleted"`
	Pinned         bool      `json:"pinned"`
	IsPinned       bool      `json:"is_pinned"`
	Reactions      Reactions `json:"reactions"`
}

func (m Message) Canonical() models.Message {
	out := models.Message{
		ID:             m.ID,
		ChannelID:      firstNonEmpty(m.ChannelID, m.ChannelIDAlt),
		SenderID:       firstNonEmpty(m.SenderID, m.SenderIDAlt),
		SenderNickname: firstNonEmpty(m.SenderNickname, m.SenderName),
		Type:           models.MessageType(m.Type),
		Timestamp:      m.Timestamp.Time,
		Deleted:        m.Deleted || m.IsDeleted,
		Pinned:         m.Pinned || m.IsPinned,
	}
	if m.Content.IsCode {
		out.Content.Code = &models.CodeBlock{Language: m.Content.Language, Code: m.Content.Code, Filename: m.Content.Filename}
		out.Content.Text = m.Content.Text
	} else {
		out.Content.Text = firstNonEmpty(m.Content.Text, m.ContentText)
	}
	if out.Type == "" {
		out.Type = models.MessageText
		if out.Content.Code != nil {
			out.Type = models.MessageCode
		}
	}
	if m.ReplyToID != nil {
		out.ReplyToID = *m.ReplyToID
	}
	if len(m.Reactions) > 0 {
		out.Reactions = map[string][]string(m.Reactions)
	}
	return out
}

type Channel struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	ParentChannelID string `json:"parent_channel_id"`
	MessageCount    *int64 `json:"message_count"`
	MessageCountAlt *int64 `json:"MessageCount"`
}

func (c Channel) Canonical() models.Channel {
	out := models.Channel{ID: c.ID, Name: c.Name, Kind: models.ChannelSub}
	if c.Type == string(models.ChannelMain) || c.ID == models.MainChannelID {
		out.Kind = models.ChannelMain
	}
	switch {
	case c.MessageCount != nil:
		out.MessageCount = *c.MessageCount
	case c.MessageCountAlt != nil:
		out.MessageCount = *c.MessageCountAlt
	}
	return out
}

// Patch keeps only the fields the event carried.
func (c Channel) Patch() models.ChannelPatch {
	p := models.ChannelPatch{}
	if c.Name != "" {
		name := c.Name
		p.Name = &name
	}
	if n := c.Canonical().MessageCount; c.MessageCount != nil || c.MessageCountAlt != nil {
		p.MessageCount = &n
	}
	return p
}

type Task struct {
	Challenge   string   `json:"challenge"`
	ChallengeID string   `json:"challenge_id"`
	StartTime   Stamp    `json:"start_time"`
	Progress    int      `json:"progress"`
	Notes       string   `json:"notes"`
	Teammates   []string `json:"teammates"`
}

func (t *Task) Canonical() *models.TaskRef {
	if t == nil {
		return nil
	}
	return &models.TaskRef{
		ChallengeID: firstNonEmpty(t.ChallengeID, t.Challenge),
		StartedAt:   t.StartTime.Time,
		Progress:    t.Progress,
		Notes:       t.Notes,
		Teammates:   t.Teammates,
	}
}

type Member struct {
	ID             string  `json:"id"`
	Nickname       string  `json:"nickname"`
	Role           string  `json:"role"`
	Status         string  `json:"status"`
	Avatar         string  `json:"avatar"`
	Skills         *Skills `json:"skills"`
	CurrentTask    *Task   `json:"current_task"`
	CurrentTaskAlt *Task   `json:"CurrentTask"`
}

func (m Member) Canonical() models.Member {
	out := models.Member{
		ID:       m.ID,
		Nickname: m.Nickname,
		Role:     m.Role,
		Status:   m.Status,
		Avatar:   m.Avatar,
	}
	if out.Status == "" {
		out.Status = models.StatusOffline
	}
	if m.Skills != nil {
		out.Skills = []string(*m.Skills)
	}
	if m.CurrentTask != nil {
		out.CurrentTask = m.CurrentTask.Canonical()
	} else {
		out.CurrentTask = m.CurrentTaskAlt.Canonical()
	}
	return out
}

func (m Member) Patch() models.MemberPatch {
	p := models.MemberPatch{}
	if m.Nickname != "" {
		p.Nickname = &m.Nickname
	}
	if m.Role != "" {
		p.Role = &m.Role
	}
	if m.Status != "" {
		p.Status = &m.Status
	}
	if m.Avatar != "" {
		p.Avatar = &m.Avatar
	}
	if m.Skills != nil {
		p.Skills = []string(*m.Skills)
	}
	return p
}

type Challenge struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Difficulty    string     `json:"difficulty"`
	Points        *int       `json:"points"`
	Status        string     `json:"status"`
	IsSolved      bool       `json:"is_solved"`
	AssignedTo    StringList `json:"assigned_to"`
	AssignedToAlt StringList `json:"AssignedTo"`
	Progress      int        `json:"progress"`
	Flag          string     `json:"flag"`
	SolvedBy      StringList `json:"solved_by"`
	SolvedAt      Stamp      `json:"solved_at"`
}

func (c Challenge) Canonical() models.Challenge {
	out := models.Challenge{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Difficulty:  c.Difficulty,
		Status:      models.ChallengeStatus(c.Status),
		Progress:    min(max(c.Progress, 0), 100),
		Flag:        c.Flag,
		SolvedBy:    c.SolvedBy.First(),
	}
	if c.Points != nil {
		out.Points = *c.Points
	}
	out.AssignedTo = []string(c.AssignedTo)
	if len(out.AssignedTo) == 0 {
		out.AssignedTo = []string(c.AssignedToAlt)
	}
	if out.Status == "" {
		switch {
		case c.IsSolved:
			out.Status = models.ChallengeSolved
		case len(out.AssignedTo) > 0:
			out.Status = models.ChallengeInProgress
		default:
			out.Status = models.ChallengeOpen
		}
	}
	if !c.SolvedAt.IsZero() {
		t := c.SolvedAt.Time
		out.SolvedAt = &t
	}
	return out
}

func (c Challenge) Patch() models.ChallengePatch {
	p := models.ChallengePatch{Points: c.Points}
	set := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	p.Title = set(c.Title)
	p.Description = set(c.Description)
	p.Category = set(c.Category)
	p.Difficulty = set(c.Difficulty)
	p.Flag = set(c.Flag)
	if c.Status != "" {
		st := models.ChallengeStatus(c.Status)
		p.Status = &st
	}
	return p
}

type Submission struct {
	ID          string `json:"id"`
	ChallengeID string `json:"challenge_id"`
	MemberID    string `json:"member_id"`
	Flag        string `json:"flag"`
	IsCorrect   bool   `json:"is_correct"`
	Correct     bool   `json:"correct"`
	SubmittedAt Stamp  `json:"submitted_at"`
	Timestamp   Stamp  `json:"timestamp"`
}

func (s Submission) Canonical() models.Submission {
	at := s.SubmittedAt.Time
	if at.IsZero() {
		at = s.Timestamp.Time
	}
	return models.Submission{
		ID:          s.ID,
		ChallengeID: s.ChallengeID,
		MemberID:    s.MemberID,
		Flag:        s.Flag,
		Correct:     s.IsCorrect || s.Correct,
		SubmittedAt: at,
	}
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	UploaderID   string `json:"uploader_id"`
	SenderID     string `json:"sender_id"`
	ChannelID    string `json:"channel_id"`
	UploadedAt   Stamp  `json:"uploaded_at"`
	UploadTime   Stamp  `json:"upload_time"`
}

func (f File) Canonical() models.File {
	at := f.UploadedAt.Time
	if at.IsZero() {
		at = f.UploadTime.Time
	}
	return models.File{
		ID:         f.ID,
		Name:       firstNonEmpty(f.Name, f.OriginalName, f.Filename),
		Size:       f.Size,
		MimeType:   f.MimeType,
		UploaderID: firstNonEmpty(f.UploaderID, f.SenderID),
		ChannelID:  f.ChannelID,
		UploadedAt: at,
	}
}

// canonicalList applies conv to each decoded wire item.
func canonicalList[W any, C any](data json.RawMessage, key string, conv func(W) C) ([]C, error) {
	list, err := DecodeList[W](data, key)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	out := make([]C, 0, len(list))
	for _, w := range list {
		out = append(out, conv(w))
	}
	return out, nil
}

func Messages(data json.RawMessage) ([]models.Message, error) {
	return canonicalList(data, "messages", Message.Canonical)
}

func Channels(data json.RawMessage) ([]models.Channel, error) {
	return canonicalList(data, "channels", Channel.Canonical)
}

func Members(data json.RawMessage) ([]models.Member, error) {
	return canonicalList(data, "members", Member.Canonical)
}

func Challenges(data json.RawMessage) ([]models.Challenge, error) {
	return canonicalList(data, "challenges", Challenge.Canonical)
}

func Files(data json.RawMessage) ([]models.File, error) {
	return canonicalList(data, "files", File.Canonical)
}
