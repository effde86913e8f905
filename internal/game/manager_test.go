package game

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostAndJoinLobby(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	reply := m.HandleCommand(ctx, cmd("host1", VerbHost))
	require.Contains(t, reply, "created")

	r := m.roomOf("host1")
	require.NotNil(t, r)
	assert.Equal(t, PhaseSetup, r.Phase)
	assert.Equal(t, 1, r.Players["host1"].Seat)

	reply = m.HandleCommand(ctx, cmd("p2", VerbJoin, r.ID))
	assert.Contains(t, reply, "seat 2")
	assert.Len(t, r.Players, 2)

	// Same player cannot join twice.
	reply = m.HandleCommand(ctx, cmd("p2", VerbJoin, r.ID))
	assert.Contains(t, reply, "already in an unfinished game")

	// Snapshot was written.
	_, err := st.GetRoom(ctx, r.ID)
	assert.NoError(t, err)
}

func TestHostRejectedWhileInUnfinishedGame(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	m.HandleCommand(ctx, cmd("host1", VerbHost))
	reply := m.HandleCommand(ctx, cmd("host1", VerbHost))
	assert.Contains(t, reply, "already in an unfinished game")
}

func TestSettingsValidation(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	m.HandleCommand(ctx, cmd("host1", VerbHost))
	r := m.roomOf("host1")

	assert.Contains(t, m.HandleCommand(ctx, cmd("host1", VerbSettings, "players", "3")), "between 6 and 18")
	assert.Contains(t, m.HandleCommand(ctx, cmd("host1", VerbSettings, "players", "25")), "between 6 and 18")
	assert.Contains(t, m.HandleCommand(ctx, cmd("host1", VerbSettings, "players", "10")), "set to 10")
	assert.Equal(t, 10, r.Setup.PlayerCount)

	assert.Contains(t, m.HandleCommand(ctx, cmd("host1", VerbSettings, "roles", "wolf", "-1")), "cannot be negative")
	assert.Contains(t, m.HandleCommand(ctx, cmd("host1", VerbSettings, "roles", "ghost", "1")), "Unknown role")
	m.HandleCommand(ctx, cmd("host1", VerbSettings, "roles", "wolf", "3"))
	assert.Equal(t, 3, r.Setup.Roles[RoleWolf])

	// Non-host cannot touch settings.
	m.HandleCommand(ctx, cmd("p2", VerbJoin, r.ID))
	assert.Contains(t, m.HandleCommand(ctx, cmd("p2", VerbSettings, "players", "8")), "Only the host")
}

func TestStartAssignsRolesBijectively(t *testing.T) {
	m, _, msg := newTestManager(t)
	ctx := context.Background()

	m.HandleCommand(ctx, cmd("host1", VerbHost))
	r := m.roomOf("host1")
	m.HandleCommand(ctx, cmd("host1", VerbSettings, "players", "6"))
	for role, n := range map[string]string{"villager": "2", "seer": "1", "witch": "1", "hunter": "1", "wolf": "1"} {
		m.HandleCommand(ctx, cmd("host1", VerbSettings, "roles", role, n))
	}
	m.HandleCommand(ctx, cmd("host1", VerbSettings, "roles", "guard", "0"))
	for i := 2; i <= 6; i++ {
		m.HandleCommand(ctx, cmd(fmt.Sprintf("p%d", i), VerbJoin, r.ID))
	}

	reply := m.HandleCommand(ctx, cmd("host1", VerbStart))
	require.Equal(t, "Game started.", reply)
	assert.Equal(t, PhaseNight, r.Phase)
	assert.Equal(t, 1, r.DayCount)

	// Every seat got exactly one role and the dealt multiset equals the
	// configured one.
	dealt := make(map[Role]int)
	for _, p := range r.Players {
		require.NotEmpty(t, p.Role)
		assert.Equal(t, p.Role, p.OriginalRole)
		dealt[p.Role]++
	}
	want := map[Role]int{RoleVillager: 2, RoleSeer: 1, RoleWitch: 1, RoleHunter: 1, RoleWolf: 1}
	assert.Equal(t, want, dealt)

	// Everyone received a private briefing.
	for id := range r.Players {
		assert.True(t, msg.whisperContaining(id, "You are seat"), "briefing for %s", id)
	}
}

func TestStartRejectsMismatchedRoleSum(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	m.HandleCommand(ctx, cmd("host1", VerbHost))
	r := m.roomOf("host1")
	m.HandleCommand(ctx, cmd("host1", VerbSettings, "players", "6"))
	for i := 2; i <= 6; i++ {
		m.HandleCommand(ctx, cmd(fmt.Sprintf("p%d", i), VerbJoin, r.ID))
	}

	// Default mix sums to 8, but only 6 players are seated.
	reply := m.HandleCommand(ctx, cmd("host1", VerbStart))
	assert.Contains(t, reply, "Cannot start")
	assert.Equal(t, PhaseSetup, r.Phase)
}

func TestDestroyBypassesPhaseGate(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	r := rigRoom(m, []Role{RoleWolf, RoleSeer, RoleWitch, RoleVillager, RoleVillager, RoleHunter})
	require.Equal(t, PhaseNight, r.Phase)

	assert.Contains(t, m.HandleCommand(ctx, cmd("p2", VerbDestroy)), "Only the host")

	reply := m.HandleCommand(ctx, cmd("p1", VerbDestroy))
	assert.Contains(t, reply, "destroyed")
	assert.Nil(t, m.roomOf("p1"))
	_, err := st.GetRoom(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReaperArchivesInactiveRooms(t *testing.T) {
	m, st, msg := newTestManager(t)
	ctx := context.Background()
	now := fixedClock(m, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	r := rigRoom(m, []Role{RoleWolf, RoleSeer, RoleWitch, RoleVillager, RoleVillager, RoleHunter})
	r.LastActivity = *now

	// Inside the play timeout: untouched.
	*now = now.Add(29 * time.Minute)
	m.ReapOnce(ctx)
	assert.NotNil(t, m.rooms[r.ID])

	// Past it: force-ended as inactive and archived.
	*now = now.Add(2 * time.Minute)
	m.ReapOnce(ctx)
	assert.Nil(t, m.rooms[r.ID])
	assert.Equal(t, "inactive", r.Winner)
	assert.Equal(t, PhaseEnded, r.Phase)
	assert.True(t, msg.broadcastContaining("closed for inactivity"))

	arch, err := st.GetArchive(ctx, r.ArchiveCode)
	require.NoError(t, err)
	assert.Equal(t, r.ID, arch.ID)

	// Nobody wins an inactive game.
	for id := range r.Players {
		p, err := st.GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Wins)
		assert.Equal(t, 1, p.TotalGames)
	}
}

func TestArchiveIsIdempotent(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	r := rigRoom(m, []Role{RoleWolf, RoleSeer, RoleWitch, RoleVillager, RoleVillager, RoleHunter})
	r.Winner = string(CampVillage)
	now := m.now()
	r.EndedAt = &now
	r.Phase = PhaseEnded

	code := m.archive(ctx, r)
	require.NotEmpty(t, code)

	// Second call for the already-removed room changes nothing.
	again := m.archive(ctx, r)
	assert.Equal(t, code, again)
	assert.Len(t, st.archives, 1)
	for id := range r.Players {
		p, err := st.GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, p.TotalGames, "profile %s rolled up twice", id)
	}
}

func TestRestoreLoadsLiveRooms(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	r := rigRoom(m, []Role{RoleWolf, RoleSeer, RoleWitch, RoleVillager, RoleVillager, RoleHunter})
	m.persist(ctx, r)

	m2 := NewManager(Config{}, st, newRecordMessenger(), m.logger)
	require.NoError(t, m2.Restore(ctx))
	restored := m2.roomOf("p1")
	require.NotNil(t, restored)
	assert.Equal(t, r.ID, restored.ID)
	assert.Equal(t, PhaseNight, restored.Phase)
}

func TestProfileNameAndView(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	assert.Contains(t, m.HandleCommand(ctx, cmd("p1", VerbName, "view")), "no nickname yet")
	assert.Contains(t, m.HandleCommand(ctx, cmd("p1", VerbName, "set", "Moon", "Howler")), "Moon Howler")
	assert.Contains(t, m.HandleCommand(ctx, cmd("p1", VerbName, "view")), "Moon Howler")

	long := strings.Repeat("x", 21)
	assert.Contains(t, m.HandleCommand(ctx, cmd("p1", VerbName, "set", long)), "limited to 20")
}

func TestProfileRecentWindowCapsAtTen(t *testing.T) {
	p := &Profile{PlayerID: "p1"}
	for i := 0; i < 14; i++ {
		p.recordOutcome(GameOutcome{Code: fmt.Sprintf("c%d", i), Won: i%2 == 0})
	}
	assert.Equal(t, 14, p.TotalGames)
	assert.Len(t, p.RecentGames, recentWindow)
	assert.Equal(t, "c4", p.RecentGames[0].Code)
	assert.InDelta(t, 0.5, p.RecentWinRate, 0.001)
}

func TestStatusHidesRolesUntilEnded(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	r := rigRoom(m, []Role{RoleWolf, RoleSeer, RoleWitch, RoleVillager, RoleVillager, RoleHunter})
	status := m.HandleCommand(ctx, cmd("p2", VerbStatus))
	assert.NotContains(t, status, "— Werewolf")
	assert.Contains(t, status, "night")

	r.Phase = PhaseEnded
	status = m.statusText(r)
	assert.Contains(t, status, "— Werewolf")
}
