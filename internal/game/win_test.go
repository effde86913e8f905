package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVillageWinPreemptsAllOtherRules(t *testing.T) {
	m, st, msg := newTestManager(t)
	ctx := context.Background()
	// Wolves 0 after the exile, village 3, third-party 1: rule one wins even
	// though a third-party player is still standing.
	r := rigDay(m, []Role{RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleCupid, RoleVillager})
	r.Players["p6"].Status = StatusDead

	allVote(ctx, m, r, "1")

	assert.Equal(t, PhaseEnded, r.Phase)
	assert.Equal(t, string(CampVillage), r.Winner)
	require.NotNil(t, r.EndedAt)
	assert.True(t, msg.broadcastContaining("village side wins"))
	assert.True(t, msg.broadcastContaining("archive "+r.ArchiveCode))

	// Archived and gone from live memory.
	assert.Nil(t, m.rooms[r.ID])
	arch, err := st.GetArchive(ctx, r.ArchiveCode)
	require.NoError(t, err)
	assert.Equal(t, string(CampVillage), arch.Winner)
}

func TestWolfWinOnParity(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	// Seats: 1 wolf, 2 wolf, 3 seer, 4 villager, 5 villager, 6 villager.
	r := rigRoom(m, []Role{RoleWolf, RoleWolf, RoleSeer, RoleVillager, RoleVillager, RoleVillager})
	r.Players["p4"].Status = StatusDead

	// Killing the villager leaves wolves 2 vs village 2: parity, wolves win.
	m.HandleCommand(ctx, cmd("p1", VerbKill, "5"))
	m.HandleCommand(ctx, cmd("p3", VerbCheck, "1"))

	assert.Equal(t, PhaseEnded, r.Phase)
	assert.Equal(t, string(CampWolf), r.Winner)
}

func TestLoversExcludedFromParity(t *testing.T) {
	m, _, _ := newTestManager(t)
	// One wolf, one plain villager, two villager lovers. With lovers out of
	// the comparison this is 1 >= 1 and the wolf wins; counting them would
	// leave 1 < 3 and the game running.
	r := rigRoom(m, []Role{RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleVillager, RoleVillager})
	pair(r, "p2", "p3")
	r.Players["p4"].Status = StatusDead
	r.Players["p5"].Status = StatusDead

	ended := m.evaluateWin(context.Background(), r)
	require.True(t, ended)
	assert.Equal(t, string(CampWolf), r.Winner)
}

func TestAllLoverBoardFallsToVillageRule(t *testing.T) {
	m, _, _ := newTestManager(t)
	// Once only the pair is left, the wolf count is zero and the village
	// rule matches before the lover rule is ever consulted.
	r := rigRoom(m, []Role{RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleVillager, RoleVillager})
	pair(r, "p2", "p3")
	for _, id := range []string{"p1", "p4", "p5", "p6"} {
		r.Players[id].Status = StatusDead
	}

	ended := m.evaluateWin(context.Background(), r)
	require.True(t, ended)
	assert.Equal(t, string(CampVillage), r.Winner)
}

func TestWinEvaluationUsesOriginalRoleForDisguise(t *testing.T) {
	m, _, _ := newTestManager(t)
	// A painter disguised as the seer still counts as a wolf.
	r := rigRoom(m, []Role{RolePainter, RoleVillager, RoleVillager, RoleVillager, RoleVillager, RoleVillager})
	r.Players["p1"].Role = RoleSeer
	for _, id := range []string{"p3", "p4", "p5", "p6"} {
		r.Players[id].Status = StatusDead
	}

	ended := m.evaluateWin(context.Background(), r)
	require.True(t, ended)
	assert.Equal(t, string(CampWolf), r.Winner)
}

func TestHiddenWolfAwakensWhenPackFalls(t *testing.T) {
	m, _, msg := newTestManager(t)
	ctx := context.Background()
	// Seats: 1 wolf, 2 hidden wolf, 3 seer, 4 witch, 5 villager, 6 villager.
	r := rigRoom(m, []Role{RoleWolf, RoleHiddenWolf, RoleSeer, RoleWitch, RoleVillager, RoleVillager})

	assert.Contains(t, m.HandleCommand(ctx, cmd("p2", VerbKill, "5")), "no night action",
		"dormant hidden wolf has no kill")

	m.HandleCommand(ctx, cmd("p1", VerbKill, "5"))
	m.HandleCommand(ctx, cmd("p3", VerbCheck, "2"))
	require.Equal(t, PhaseWitchSave, r.Phase)
	m.HandleCommand(ctx, cmd("p4", VerbSkip))
	require.Equal(t, PhaseDay, r.Phase)

	// Exiling the only open wolf wakes the hidden one.
	allVote(ctx, m, r, "1")

	require.True(t, r.Players["p2"].Alive())
	assert.True(t, r.HiddenWolfAwakened)
	assert.True(t, msg.whisperContaining("p2", "hunt alone"))
	require.Equal(t, PhaseNight, r.Phase)

	// The awakened hidden wolf now carries the pack's kill and gates the night.
	m.HandleCommand(ctx, cmd("p3", VerbCheck, "2"))
	reply := m.HandleCommand(ctx, cmd("p2", VerbKill, "6"))
	assert.Contains(t, reply, "seat 6")
	require.Equal(t, PhaseWitchSave, r.Phase)
	m.HandleCommand(ctx, cmd("p4", VerbSkip))
	assert.False(t, r.Players["p6"].Alive())
}

func TestSuccessorInheritsAdjacentSpecial(t *testing.T) {
	m, _, msg := newTestManager(t)
	ctx := context.Background()
	// Seats: 1 wolf, 2 wolf, 3 seer, 4 successor, 5 villager, 6 villager.
	r := rigRoom(m, []Role{RoleWolf, RoleWolf, RoleSeer, RoleSuccessor, RoleVillager, RoleVillager})

	m.HandleCommand(ctx, cmd("p1", VerbKill, "3"))
	m.HandleCommand(ctx, cmd("p3", VerbCheck, "1"))

	require.False(t, r.Players["p3"].Alive())
	assert.Equal(t, RoleSeer, r.Players["p4"].Role)
	assert.Equal(t, RoleSuccessor, r.Players["p4"].OriginalRole)
	assert.True(t, msg.whisperContaining("p4", "Seer"))
}

// Scenario: 6 players, one wolf. Night one, the wolf kills the seer's seat,
// the witch declines her antidote, and the seer's check lands before dawn.
func TestScenarioNightOneSeerDies(t *testing.T) {
	m, _, msg := newTestManager(t)
	ctx := context.Background()
	// Seats: 1 villager, 2 villager, 3 seer, 4 witch, 5 hunter, 6 wolf.
	r := rigRoom(m, []Role{RoleVillager, RoleVillager, RoleSeer, RoleWitch, RoleHunter, RoleWolf})

	reply := m.HandleCommand(ctx, cmd("p3", VerbCheck, "6"))
	assert.Contains(t, reply, "wolf-aligned")

	m.HandleCommand(ctx, cmd("p6", VerbKill, "3"))
	require.Equal(t, PhaseWitchSave, r.Phase)
	m.HandleCommand(ctx, cmd("p4", VerbSkip))

	assert.Equal(t, PhaseDay, r.Phase)
	assert.False(t, r.Players["p3"].Alive())
	assert.True(t, msg.broadcastContaining("seat 3 (Player3)"))
}

func TestArchiveLookupByCode(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	r := rigDay(m, []Role{RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleVillager, RoleVillager})
	allVote(ctx, m, r, "1")
	require.Equal(t, PhaseEnded, r.Phase)

	reply := m.HandleCommand(ctx, cmd("p2", VerbArchive, r.ArchiveCode))
	assert.Contains(t, reply, r.ID)
	assert.Contains(t, reply, "village")
	assert.Contains(t, reply, "Werewolf")

	assert.Contains(t, m.HandleCommand(ctx, cmd("p2", VerbArchive, "nope")), "No archived game")
}

func TestProfilesRollUpAfterWin(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	r := rigDay(m, []Role{RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleVillager, RoleVillager})
	allVote(ctx, m, r, "1")
	require.Equal(t, string(CampVillage), r.Winner)

	// Villagers won; the wolf lost; every voter on seat 1 got a vote-kill.
	wolf, err := st.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, wolf.Wins)
	assert.Equal(t, 1, wolf.Losses)

	for _, id := range []string{"p2", "p3", "p4", "p5", "p6"} {
		p, err := st.GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Wins, "profile %s", id)
		assert.Equal(t, 1, p.VoteKills, "profile %s", id)
		assert.InDelta(t, 1.0, p.RecentWinRate, 0.001)
	}
}
