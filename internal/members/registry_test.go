package members

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

func roster() []models.Member {
	return []models.Member{
		{ID: "m1", Nickname: "alice", Role: "owner", Skills: []string{"web", "crypto"}, Status: "online"},
		{ID: "m2", Nickname: "bob", Role: "member", Skills: []string{"pwn"}, Status: "busy"},
		{ID: "m3", Nickname: "carol", Role: "member", Skills: []string{"web"}, Status: models.StatusOffline},
	}
}

// TestAddIsIdempotent verifies a repeated id does not overwrite the first.
func TestAddIsIdempotent(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Add(models.Member{ID: "m1", Nickname: "alice"}))
	assert.False(t, r.Add(models.Member{ID: "m1", Nickname: "mallory"}))

	m, ok := r.Member("m1")
	require.True(t, ok)
	assert.Equal(t, "alice", m.Nickname)
	assert.Equal(t, 1, r.Count())
}

// TestPartitions verifies online/offline/skill views over the roster.
func TestPartitions(t *testing.T) {
	r := NewRegistry()
	r.SetMembers(roster())

	assert.Len(t, r.Online(), 2)
	assert.Equal(t, 2, r.OnlineCount())
	require.Len(t, r.Offline(), 1)
	assert.Equal(t, "m3", r.Offline()[0].ID)

	web := r.BySkill("web")
	require.Len(t, web, 2)
	assert.Equal(t, "m1", web[0].ID)
	assert.Equal(t, "m3", web[1].ID)
}

// TestStatusAndTask verifies externally driven mutators.
func TestStatusAndTask(t *testing.T) {
	r := NewRegistry()
	r.SetMembers(roster())

	require.True(t, r.UpdateStatus("m3", "away"))
	assert.Equal(t, 3, r.OnlineCount())
	assert.False(t, r.UpdateStatus("ghost", "online"))

	task := &models.TaskRef{ChallengeID: "c1", StartedAt: time.Unix(10, 0), Teammates: []string{"m2"}}
	require.True(t, r.UpdateTask("m1", task))
	task.Teammates[0] = "changed"

	m, _ := r.Member("m1")
	require.NotNil(t, m.CurrentTask)
	assert.Equal(t, "c1", m.CurrentTask.ChallengeID)
	assert.Equal(t, []string{"m2"}, m.CurrentTask.Teammates)

	require.True(t, r.UpdateTask("m1", nil))
	m, _ = r.Member("m1")
	assert.Nil(t, m.CurrentTask)
}

func TestRemoveAndNickname(t *testing.T) {
	r := NewRegistry()
	r.SetMembers(roster())

	assert.True(t, r.Remove("m2"))
	assert.False(t, r.Remove("m2"))
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "alice", r.Nickname("m1"))
	assert.Equal(t, "m2", r.Nickname("m2"))

	nick := "al"
	r.Update("m1", models.MemberPatch{Nickname: &nick, Skills: []string{"rev"}})
	m, _ := r.Member("m1")
	assert.Equal(t, "al", m.Nickname)
	assert.Equal(t, []string{"rev"}, m.Skills)
}

// TestReturnedCopies verifies callers cannot mutate registry state.
func TestReturnedCopies(t *testing.T) {
	r := NewRegistry()
	r.SetMembers(roster())

	all := r.All()
	all[0].Skills[0] = "tampered"
	m, _ := r.Member("m1")
	assert.Equal(t, "web", m.Skills[0])
}
