package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/crosswire-replica/internal/ingest"
	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// TestSeedEventsReplay checks the seeded feed decodes and lands where the
// dev scenario expects.
func TestSeedEventsReplay(t *testing.T) {
	s := session.New(session.Options{})
	d := ingest.NewDispatcher(s, ingest.NewDeadLetters(10))

	for i, draft := range SeedEvents() {
		data, err := json.Marshal(draft.Payload)
		require.NoError(t, err)
		e := wire.Event{Seq: int64(i + 1), Type: draft.Type, ChannelID: draft.ChannelID, Data: data}
		require.NoError(t, d.Apply(context.Background(), e), draft.Type)
	}
	assert.Zero(t, d.Dead.Len())

	s.Read(func(st *session.State) {
		c, ok := st.Challenges.Challenge("c1")
		require.True(t, ok)
		assert.Equal(t, models.ChallengeSolved, c.Status)
		assert.Equal(t, 100, c.Progress)
		assert.Equal(t, "m1", c.SolvedBy)
		assert.Equal(t, 100, st.Challenges.SolvedPoints())

		assert.Equal(t, 2, st.Messages.Count("web-100"))
		web, ok := st.Channels.Channel("web-100")
		require.True(t, ok)
		assert.Equal(t, 2, web.UnreadCount)
		assert.Equal(t, "CTF Night", st.Channels.CurrentChannel().Name)
	})
}
