package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

func withSubs() *Registry {
	r := NewRegistry()
	r.SetSubChannels([]models.Channel{
		{ID: "web-100", Name: "web-100", MessageCount: 4},
		{ID: "pwn-200", Name: "pwn-200"},
	})
	return r
}

// TestUnreadAccounting verifies the selected channel never accrues unread.
func TestUnreadAccounting(t *testing.T) {
	r := withSubs()
	r.SelectChannel("web-100")

	assert.False(t, r.IncrementUnread("web-100"))
	ch, _ := r.Channel("web-100")
	assert.Equal(t, 0, ch.UnreadCount)

	r.SelectChannel(models.MainChannelID)
	r.IncrementUnread("web-100")
	r.IncrementUnread("web-100")
	ch, _ = r.Channel("web-100")
	assert.Equal(t, 2, ch.UnreadCount)
	assert.Equal(t, 2, r.TotalUnread())

	r.SelectChannel("web-100")
	ch, _ = r.Channel("web-100")
	assert.Equal(t, 0, ch.UnreadCount)
	assert.Equal(t, 0, r.TotalUnread())
}

func TestIncrementUnknownChannel(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.IncrementUnread("nope"))
	assert.Equal(t, 0, r.TotalUnread())
}

// TestMainIsFixed verifies main is never removed, only reset.
func TestMainIsFixed(t *testing.T) {
	r := withSubs()
	r.IncrementUnread(models.MainChannelID)
	r.SelectChannel("pwn-200")
	r.IncrementUnread(models.MainChannelID)

	main, ok := r.Channel(models.MainChannelID)
	require.True(t, ok)
	assert.Equal(t, 1, main.UnreadCount)

	assert.True(t, r.RemoveChannel(models.MainChannelID))
	chs := r.Channels()
	require.Len(t, chs, 1)
	assert.Equal(t, models.MainChannelID, chs[0].ID)
	assert.Equal(t, models.ChannelMain, chs[0].Kind)
	assert.Equal(t, 0, chs[0].UnreadCount)
	assert.Equal(t, models.MainChannelID, r.SelectedID())

	assert.False(t, r.AddSubChannel(models.Channel{ID: models.MainChannelID}))
}

func TestSubChannelOps(t *testing.T) {
	r := withSubs()
	assert.False(t, r.AddSubChannel(models.Channel{ID: "web-100", Name: "dup"}))
	assert.True(t, r.AddSubChannel(models.Channel{ID: "rev-300", Name: "rev"}))

	name := "web (solved)"
	assert.True(t, r.UpdateSubChannel("web-100", models.ChannelPatch{Name: &name}))
	assert.False(t, r.UpdateSubChannel("ghost", models.ChannelPatch{Name: &name}))

	ch, _ := r.Channel("web-100")
	assert.Equal(t, "web (solved)", ch.Name)
	assert.Equal(t, int64(4), ch.MessageCount)
	assert.Equal(t, models.ChannelSub, ch.Kind)

	assert.True(t, r.RemoveSubChannel("pwn-200"))
	assert.False(t, r.RemoveSubChannel("pwn-200"))

	ids := []string{}
	for _, c := range r.Channels() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"main", "web-100", "rev-300"}, ids)
}

// TestSetSubChannelsReplaces verifies a bulk sync drops prior channels and unread.
func TestSetSubChannelsReplaces(t *testing.T) {
	r := withSubs()
	r.IncrementUnread("pwn-200")
	r.SetSubChannels([]models.Channel{{ID: "pwn-200", Name: "pwn", UnreadCount: 9}})

	subs := r.SubChannels()
	require.Len(t, subs, 1)
	assert.Equal(t, 0, subs[0].UnreadCount)
}

func TestAddChannelMainMerges(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.AddChannel(models.Channel{ID: "main", Kind: models.ChannelMain, Name: "Lobby", MessageCount: 7}))
	main, _ := r.Channel("main")
	assert.Equal(t, "Lobby", main.Name)
	assert.Equal(t, int64(7), main.MessageCount)

	r.RecordMessage("main")
	main, _ = r.Channel("main")
	assert.Equal(t, int64(8), main.MessageCount)
}

func TestCurrentChannelMerge(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 50, r.CurrentChannel().MaxMembers)

	name, mode := "ctf-finals", "https"
	r.SetCurrentChannel(models.ChannelInfoPatch{Name: &name, TransportMode: &mode})
	cur := r.CurrentChannel()
	assert.Equal(t, "ctf-finals", cur.Name)
	assert.Equal(t, "https", cur.TransportMode)
	assert.Equal(t, 50, cur.MaxMembers)
}

func TestUpdateChannelCoversMain(t *testing.T) {
	r := NewRegistry()
	r.AddSubChannel(models.Channel{ID: "a", Name: "A"})
	name := "Lobby"
	require.True(t, r.UpdateChannel(models.MainChannelID, models.ChannelPatch{Name: &name}))
	main, ok := r.Channel(models.MainChannelID)
	require.True(t, ok)
	assert.Equal(t, "Lobby", main.Name)

	count := int64(3)
	assert.True(t, r.UpdateChannel("a", models.ChannelPatch{MessageCount: &count}))
	assert.False(t, r.UpdateChannel("ghost", models.ChannelPatch{MessageCount: &count}))
	a, _ := r.Channel("a")
	assert.Equal(t, int64(3), a.MessageCount)
	assert.Equal(t, "A", a.Name)
}
