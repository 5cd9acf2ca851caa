package messages

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func msg(id string, at int, text string) models.Message {
	return models.Message{
		ID:        id,
		SenderID:  "m1",
		Type:      models.MessageText,
		Content:   models.MessageContent{Text: text},
		Timestamp: t0.Add(time.Duration(at) * time.Second),
	}
}

func ids(list []models.Message) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

// TestIngestIdempotent verifies re-delivery of the same id leaves one entry.
func TestIngestIdempotent(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Ingest("main", msg("a", 1, "hello")))
	assert.False(t, l.Ingest("main", msg("a", 1, "hello again")))

	got := l.Messages("main")
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Content.Text)
	assert.Equal(t, "main", got[0].ChannelID)

	edited := models.MessageContent{Text: "edited"}
	require.True(t, l.Update("main", "a", models.MessagePatch{Content: &edited}))
	assert.False(t, l.Ingest("main", msg("a", 1, "stale")))
	m, ok := l.Message("a")
	require.True(t, ok)
	assert.Equal(t, "edited", m.Content.Text)
}

// TestIngestBatchOrders verifies a batch delivered [T3, T1, T2] ends ordered.
func TestIngestBatchOrders(t *testing.T) {
	l := NewLedger()
	n := l.IngestBatch("main", []models.Message{msg("t3", 3, ""), msg("t1", 1, ""), msg("t2", 2, "")})
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(l.Messages("main")))
}

// TestIngestBatchStableTies verifies equal timestamps keep arrival order.
func TestIngestBatchStableTies(t *testing.T) {
	l := NewLedger()
	l.Ingest("main", msg("late", 9, ""))
	l.IngestBatch("main", []models.Message{msg("x", 5, ""), msg("y", 5, ""), msg("late", 9, ""), msg("z", 1, "")})
	assert.Equal(t, []string{"z", "x", "y", "late"}, ids(l.Messages("main")))
}

// TestUnknownChannelCreatedLazily verifies ingestion does not need the channel registry.
func TestUnknownChannelCreatedLazily(t *testing.T) {
	l := NewLedger()
	assert.Empty(t, l.Messages("web-100"))
	require.True(t, l.Ingest("web-100", msg("a", 1, "x")))
	assert.Equal(t, 1, l.Count("web-100"))
	assert.Contains(t, l.ChannelIDs(), "web-100")
}

// TestMessageStaysInOneChannel verifies an id cannot migrate between channels.
func TestMessageStaysInOneChannel(t *testing.T) {
	l := NewLedger()
	l.Ingest("main", msg("a", 1, "x"))
	assert.False(t, l.Ingest("web-100", msg("a", 1, "x")))
	assert.Equal(t, 0, l.Count("web-100"))
}

// TestUpdateAbsentIsNoop verifies patches for unknown messages are ignored.
func TestUpdateAbsentIsNoop(t *testing.T) {
	l := NewLedger()
	c := models.MessageContent{Text: "x"}
	assert.False(t, l.Update("main", "ghost", models.MessagePatch{Content: &c}))
	assert.False(t, l.Update("nowhere", "ghost", models.MessagePatch{Content: &c}))
	assert.False(t, l.React("ghost", "👍", "m1", true))
	assert.False(t, l.SoftDelete("main", "ghost"))
}

// TestSoftDeleteKeepsIdentityAndReactions verifies tombstoning.
func TestSoftDeleteKeepsIdentityAndReactions(t *testing.T) {
	l := NewLedger()
	l.Ingest("web-100", msg("a", 1, "secret"))
	require.True(t, l.React("a", "🔥", "m2", true))

	require.True(t, l.SoftDelete("web-100", "a"))
	m, ok := l.Message("a")
	require.True(t, ok)
	assert.True(t, m.Deleted)
	assert.Equal(t, models.Tombstone, m.Content.Text)
	assert.Equal(t, "a", m.ID)
	assert.Equal(t, "web-100", m.ChannelID)
	assert.Equal(t, []string{"m2"}, m.Reactions["🔥"])

	c := models.MessageContent{Text: "sneaky edit"}
	assert.False(t, l.Update("web-100", "a", models.MessagePatch{Content: &c}))
	assert.False(t, l.React("a", "🔥", "m3", true))
	assert.False(t, l.SoftDelete("web-100", "a"))
}

// TestDeletedMessageRestoredByIngest verifies the authoritative correction path.
func TestDeletedMessageRestoredByIngest(t *testing.T) {
	l := NewLedger()
	l.Ingest("main", msg("a", 1, "original"))
	l.SoftDelete("main", "a")

	stillDeleted := msg("a", 1, "whatever")
	stillDeleted.Deleted = true
	assert.False(t, l.Ingest("main", stillDeleted))

	require.True(t, l.Ingest("main", msg("a", 1, "original")))
	m, _ := l.Message("a")
	assert.False(t, m.Deleted)
	assert.Equal(t, "original", m.Content.Text)
	assert.Equal(t, 1, l.Count("main"))
}

func TestIngestDeletedArrivesAsTombstone(t *testing.T) {
	l := NewLedger()
	d := msg("a", 1, "leak")
	d.Deleted = true
	l.Ingest("main", d)
	m, _ := l.Message("a")
	assert.Equal(t, models.Tombstone, m.Content.Text)
}

// TestReactionsAreSets verifies add/remove semantics per emoji.
func TestReactionsAreSets(t *testing.T) {
	l := NewLedger()
	l.Ingest("main", msg("a", 1, "x"))

	assert.True(t, l.React("a", "👍", "m1", true))
	assert.False(t, l.React("a", "👍", "m1", true))
	assert.True(t, l.React("a", "👍", "m2", true))
	m, _ := l.Message("a")
	assert.Equal(t, []string{"m1", "m2"}, m.Reactions["👍"])

	assert.True(t, l.React("a", "👍", "m1", false))
	assert.True(t, l.React("a", "👍", "m2", false))
	assert.False(t, l.React("a", "👍", "m2", false))
	m, _ = l.Message("a")
	assert.NotContains(t, m.Reactions, "👍")
}

// TestPinnedSetFIFOEviction verifies six pins leave the last five.
func TestPinnedSetFIFOEviction(t *testing.T) {
	l := NewLedger()
	for i := 1; i <= 6; i++ {
		m := msg(fmt.Sprintf("p%d", i), i, "")
		l.Ingest("main", m)
		require.True(t, l.Pin("main", m))
	}

	pinned := l.Pinned("main")
	require.Len(t, pinned, models.MaxPinned)
	got := make([]string, 0, len(pinned))
	for _, p := range pinned {
		got = append(got, p.MessageID)
	}
	assert.Equal(t, []string{"p2", "p3", "p4", "p5", "p6"}, got)

	first, _ := l.Message("p1")
	assert.False(t, first.Pinned)
	last, _ := l.Message("p6")
	assert.True(t, last.Pinned)
}

func TestPinDuplicateAndUnpin(t *testing.T) {
	l := NewLedger(WithClock(func() time.Time { return t0 }))
	m := msg("a", 1, "x")
	l.Ingest("main", m)

	require.True(t, l.Pin("main", m))
	assert.False(t, l.Pin("main", m))
	require.Len(t, l.Pinned("main"), 1)
	assert.Equal(t, t0, l.Pinned("main")[0].PinnedAt)

	assert.True(t, l.Unpin("main", "a"))
	assert.False(t, l.Unpin("main", "a"))
	assert.False(t, l.Unpin("nowhere", "a"))
	got, _ := l.Message("a")
	assert.False(t, got.Pinned)
}

// TestPinBeforeBackfill verifies a pin can precede the message itself.
func TestPinBeforeBackfill(t *testing.T) {
	l := NewLedger()
	early := msg("a", 1, "from pin event")
	require.True(t, l.Pin("main", early))
	assert.Equal(t, "from pin event", l.Pinned("main")[0].Message.Content.Text)

	l.IngestBatch("main", []models.Message{msg("a", 1, "backfilled")})
	pinned := l.Pinned("main")
	assert.Equal(t, "backfilled", pinned[0].Message.Content.Text)
	got, _ := l.Message("a")
	assert.True(t, got.Pinned)
}

func TestClear(t *testing.T) {
	l := NewLedger()
	l.Ingest("main", msg("a", 1, ""))
	l.Ingest("web", msg("b", 1, ""))
	l.Pin("web", msg("b", 1, ""))

	l.Clear("web")
	assert.Empty(t, l.Messages("web"))
	assert.Empty(t, l.Pinned("web"))
	assert.Equal(t, 1, l.Count("main"))
	_, ok := l.Message("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"main"}, l.ChannelIDs())

	l.Clear("main")
	assert.Equal(t, []string{"main"}, l.ChannelIDs())
	assert.Zero(t, l.Count("main"))

	l.Ingest("web", msg("b", 2, ""))
	l.ClearAll()
	assert.Equal(t, []string{"main"}, l.ChannelIDs())
	assert.Empty(t, l.Messages("main"))
}

// TestReadsAreCopies verifies callers cannot reach ledger state.
func TestReadsAreCopies(t *testing.T) {
	l := NewLedger()
	l.Ingest("main", msg("a", 1, "x"))
	l.React("a", "👍", "m1", true)

	got := l.Messages("main")
	got[0].Reactions["👍"][0] = "tampered"
	got[0].Content.Text = "tampered"

	m, _ := l.Message("a")
	assert.Equal(t, "x", m.Content.Text)
	assert.Equal(t, []string{"m1"}, m.Reactions["👍"])
}

func TestEditing(t *testing.T) {
	l := NewLedger()
	_, ok := l.Editing()
	assert.False(t, ok)

	m := msg("a", 1, "draft")
	l.SetEditing(&m)
	got, ok := l.Editing()
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	l.SetEditing(nil)
	_, ok = l.Editing()
	assert.False(t, ok)
}
