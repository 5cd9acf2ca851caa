package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

func TestStampFormats(t *testing.T) {
	want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"seconds":        `1740830400`,
		"millis":         `1740830400000`,
		"numeric string": `"1740830400"`,
		"rfc3339":        `"2025-03-01T12:00:00Z"`,
		"offset":         `"2025-03-01T13:00:00+01:00"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var s Stamp
			require.NoError(t, json.Unmarshal([]byte(raw), &s))
			assert.True(t, want.Equal(s.Time), "got %s", s.Time)
		})
	}

	var s Stamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.True(t, s.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &s))
}

func TestMessageVariants(t *testing.T) {
	raw := `{
		"ID": "m-1",
		"ChannelID": "sub-a",
		"SenderID": "u1",
		"sender_name": "alice",
		"content": {"code": "print(1)", "language": "python", "filename": "a.py"},
		"timestamp": 1740830400000,
		"is_deleted": false,
		"is_pinned": true,
		"reply_to_id": null,
		"reactions": [{"emoji": "👍", "user_ids": ["u2", "u3"]}, {"emoji": "", "user_ids": ["x"]}]
	}`
	var w Message
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	m := w.Canonical()

	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, "sub-a", m.ChannelID)
	assert.Equal(t, "u1", m.SenderID)
	assert.Equal(t, "alice", m.SenderNickname)
	assert.Equal(t, models.MessageCode, m.Type)
	require.NotNil(t, m.Content.Code)
	assert.Equal(t, "python", m.Content.Code.Language)
	assert.Equal(t, "a.py", m.Content.Code.Filename)
	assert.True(t, m.Pinned)
	assert.Empty(t, m.ReplyToID)
	assert.Equal(t, map[string][]string{"👍": {"u2", "u3"}}, m.Reactions)
}

func TestReactionsDeduplicateMembers(t *testing.T) {
	var r Reactions
	require.NoError(t, json.Unmarshal([]byte(`[{"emoji":"👍","user_ids":["m1","m1"],"member_ids":["m1","m2"]},{"emoji":"","user_ids":["m3"]}]`), &r))
	assert.Equal(t, Reactions{"👍": {"m1", "m2"}}, r)

	require.NoError(t, json.Unmarshal([]byte(`{"👍":["m1","m1"],"🔥":[]}`), &r))
	assert.Equal(t, Reactions{"👍": {"m1"}}, r)
}

func TestMessagePlainContent(t *testing.T) {
	var w Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m","channel_id":"main","content":"hi","reply_to_id":"p","reactions":{"🔥":["u1"]}}`), &w))
	m := w.Canonical()
	assert.Equal(t, models.MessageText, m.Type)
	assert.Equal(t, "hi", m.Content.Text)
	assert.Nil(t, m.Content.Code)
	assert.Equal(t, "p", m.ReplyToID)
	assert.Equal(t, []string{"u1"}, m.Reactions["🔥"])

	require.NoError(t, json.Unmarshal([]byte(`{"id":"m","content":{"text":"obj"}}`), &w))
	assert.Equal(t, "obj", w.Canonical().Content.Text)
}

func TestChannelCountVariants(t *testing.T) {
	list, err := Channels(json.RawMessage(`{"channels":[
		{"id":"a","name":"A","message_count":4},
		{"id":"b","name":"B","MessageCount":7},
		{"id":"main","name":"Main"}
	]}`))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(4), list[0].MessageCount)
	assert.Equal(t, int64(7), list[1].MessageCount)
	assert.Equal(t, models.ChannelSub, list[1].Kind)
	assert.Equal(t, models.ChannelMain, list[2].Kind)

	var w Channel
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","MessageCount":0}`), &w))
	p := w.Patch()
	assert.Nil(t, p.Name)
	require.NotNil(t, p.MessageCount)
	assert.Zero(t, *p.MessageCount)
}

func TestMemberSkillsAndTask(t *testing.T) {
	list, err := Members(json.RawMessage(`[
		{"id":"u1","nickname":"alice","skills":["web",{"category":"pwn","level":3},{"name":"crypto"}],
		 "CurrentTask":{"challenge":"c1","progress":20,"start_time":"2025-03-01T12:00:00Z"}},
		{"id":"u2","nickname":"bob"}
	]`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"web", "pwn", "crypto"}, list[0].Skills)
	require.NotNil(t, list[0].CurrentTask)
	assert.Equal(t, "c1", list[0].CurrentTask.ChallengeID)
	assert.Equal(t, 20, list[0].CurrentTask.Progress)
	assert.Equal(t, models.StatusOffline, list[1].Status)
	assert.Nil(t, list[1].CurrentTask)
}

func TestChallengeVariants(t *testing.T) {
	var w Challenge
	require.NoError(t, json.Unmarshal([]byte(`{
		"id":"c1","title":"Warmup","category":"web","points":100,"flag":"F1",
		"is_solved":true,"solved_by":["u1","u2"],"solved_at":1740830400,"AssignedTo":"u1","progress":150
	}`), &w))
	c := w.Canonical()
	assert.Equal(t, models.ChallengeSolved, c.Status)
	assert.Equal(t, "u1", c.SolvedBy)
	require.NotNil(t, c.SolvedAt)
	assert.Equal(t, int64(1740830400), c.SolvedAt.Unix())
	assert.Equal(t, []string{"u1"}, c.AssignedTo)
	assert.Equal(t, 100, c.Progress)
	assert.Equal(t, "F1", c.Flag)

	var assigned Challenge
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c2","assigned_to":["u3"]}`), &assigned))
	assert.Equal(t, models.ChallengeInProgress, assigned.Canonical().Status)
	assert.Nil(t, assigned.Canonical().SolvedAt)

	p := Challenge{Title: "New", Points: new(int)}.Patch()
	require.NotNil(t, p.Title)
	assert.Equal(t, "New", *p.Title)
	assert.NotNil(t, p.Points)
	assert.Nil(t, p.Category)
	assert.Nil(t, p.Status)
}

func TestSubmissionAndFileVariants(t *testing.T) {
	var s Submission
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","challenge_id":"c1","member_id":"u1","correct":true,"timestamp":"2025-03-01T12:00:00Z"}`), &s))
	sub := s.Canonical()
	assert.True(t, sub.Correct)
	assert.False(t, sub.SubmittedAt.IsZero())

	files, err := Files(json.RawMessage(`[{"id":"f1","original_name":"dump.pcap","size":2048,"sender_id":"u1","upload_time":1740830400}]`))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "dump.pcap", files[0].Name)
	assert.Equal(t, "u1", files[0].UploaderID)
	assert.False(t, files[0].UploadedAt.IsZero())
}

func TestDecodeListRejectsWrongKey(t *testing.T) {
	_, err := Messages(json.RawMessage(`{"items":[]}`))
	assert.Error(t, err)

	list, err := Messages(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent([]byte(`{"seq":9,"type":"message:received","ChannelID":"sub-a","payload":{"id":"m1"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), e.Seq)
	assert.Equal(t, "sub-a", e.ChannelID)

	m, err := Decode[Message](e)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)

	_, err = ParseEvent([]byte(`{"channel_id":"main"}`))
	assert.Error(t, err)
	_, err = Decode[Message](Event{Type: MessageReceived})
	assert.Error(t, err)
}

func TestPayloadHelpers(t *testing.T) {
	r := Reaction{UserID: "u2"}
	assert.Equal(t, "u2", r.Member())
	assert.True(t, r.Add())
	assert.False(t, Reaction{Action: "remove"}.Add())

	var a Assign
	require.NoError(t, json.Unmarshal([]byte(`{"challenge_id":"c1","assigned_to":"u1"}`), &a))
	assert.Equal(t, []string{"u1"}, a.IDs())

	s := Status{UserID: "u1", Status: "busy", NewStatus: "away"}
	assert.Equal(t, "u1", s.Member())
	assert.Equal(t, "away", s.Value())

	ref := MessageRef{Message: &Message{ID: "m9"}}
	assert.Equal(t, "m9", ref.ID())
}

func TestRefAndEntity(t *testing.T) {
	var r Ref
	require.NoError(t, json.Unmarshal([]byte(`"c1"`), &r))
	assert.Equal(t, "c1", r.Challenge())
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u1"}`), &r))
	assert.Equal(t, "u1", r.Member())

	wrapped := Event{Type: ChallengeCreated, Data: json.RawMessage(`{"challenge":{"id":"c1","points":50}}`)}
	c, err := DecodeEntity[Challenge](wrapped, "challenge")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	bare := Event{Type: ChallengeCreated, Data: json.RawMessage(`{"id":"c2","points":50}`)}
	c, err = DecodeEntity[Challenge](bare, "challenge")
	require.NoError(t, err)
	assert.Equal(t, "c2", c.ID)
}

func TestJoinedPatch(t *testing.T) {
	var j Joined
	require.NoError(t, json.Unmarshal([]byte(`{"id":"ch-1","name":"ctf-night","transport_mode":"relay","max_members":20}`), &j))
	p := j.Patch()
	require.NotNil(t, p.Name)
	assert.Equal(t, "ctf-night", *p.Name)
	require.NotNil(t, p.MaxMembers)
	assert.Equal(t, 20, *p.MaxMembers)
	assert.Nil(t, p.MemberCount)
	assert.Nil(t, p.CreatedAt)
}
