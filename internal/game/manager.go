package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Config carries the deployment knobs the engine reads.
type Config struct {
	MinPlayers   int
	MaxPlayers   int
	SetupTimeout time.Duration
	PlayTimeout  time.Duration
}

// Manager owns the live room map and the profile access path. It is an
// explicitly constructed service: tests build isolated instances with fake
// stores and messengers. All command handling is serialized through mu, which
// preserves the one-command-at-a-time contract of the chat host under a
// concurrent HTTP surface.
type Manager struct {
	cfg    Config
	store  Store
	msg    Messenger
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewManager(cfg Config, store Store, msg Messenger, logger *slog.Logger) *Manager {
	if cfg.MinPlayers == 0 {
		cfg.MinPlayers = 6
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 18
	}
	if cfg.SetupTimeout == 0 {
		cfg.SetupTimeout = 20 * time.Minute
	}
	if cfg.PlayTimeout == 0 {
		cfg.PlayTimeout = 30 * time.Minute
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		msg:    msg,
		logger: logger,
		now:    time.Now,
		rooms:  make(map[string]*Room),
	}
}

// Restore loads every live room snapshot back into memory. Called once at
// startup so a process restart loses at most the in-flight command.
func (m *Manager) Restore(ctx context.Context) error {
	rooms, err := m.store.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("listing rooms: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rooms {
		m.rooms[r.ID] = r
	}
	if len(rooms) > 0 {
		m.logger.Info("restored live rooms", "count", len(rooms))
	}
	return nil
}

// persist writes the room snapshot. Storage failures are logged and otherwise
// swallowed: the in-memory state stays authoritative and command handling
// must not crash on a lost write.
func (m *Manager) persist(ctx context.Context, r *Room) {
	if err := m.store.PutRoom(ctx, r); err != nil {
		m.logger.Error("persisting room snapshot", "room", r.ID, "error", err)
	}
}

func (m *Manager) say(ctx context.Context, r *Room, text string) {
	if err := m.msg.Broadcast(ctx, r.GroupID, text); err != nil {
		m.logger.Error("group broadcast", "room", r.ID, "error", err)
	}
}

func (m *Manager) whisper(ctx context.Context, playerID, text string) {
	if err := m.msg.Whisper(ctx, playerID, text); err != nil {
		m.logger.Error("private delivery", "player", playerID, "error", err)
	}
}

// roomOf returns the room the player is seated in, if any. Finished rooms do
// not count.
func (m *Manager) roomOf(playerID string) *Room {
	for _, r := range m.rooms {
		if _, ok := r.Players[playerID]; ok && r.Phase != PhaseEnded {
			return r
		}
	}
	return nil
}

func (m *Manager) getOrCreateProfile(ctx context.Context, playerID, name string) *Profile {
	p, err := m.store.GetProfile(ctx, playerID)
	if err == nil {
		return p
	}
	if err != ErrNotFound {
		m.logger.Error("loading profile", "player", playerID, "error", err)
	}
	p = &Profile{
		PlayerID:  playerID,
		Name:      name,
		CreatedAt: m.now(),
	}
	if err := m.store.PutProfile(ctx, p); err != nil {
		m.logger.Error("creating profile", "player", playerID, "error", err)
	}
	return p
}

func (m *Manager) putProfile(ctx context.Context, p *Profile) {
	if err := m.store.PutProfile(ctx, p); err != nil {
		m.logger.Error("saving profile", "player", p.PlayerID, "error", err)
	}
}

// createRoom allocates a room with default settings and seats the host at
// seat 1.
func (m *Manager) createRoom(ctx context.Context, hostID, groupID, hostName string) *Room {
	now := m.now()
	r := &Room{
		ID:      newRoomID(),
		HostID:  hostID,
		GroupID: groupID,
		Players: make(map[string]*Player),
		Setup: Settings{
			PlayerCount: 8,
			Roles:       defaultRoleMix(),
		},
		Phase:        PhaseSetup,
		NightActions: make(map[ActionKey]string),
		Votes:        make(map[string]int),
		Potions:      WitchHasBoth,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.getOrCreateProfile(ctx, hostID, hostName)
	m.seat(r, hostID, hostName)
	m.rooms[r.ID] = r
	m.persist(ctx, r)
	return r
}

func (m *Manager) seat(r *Room, playerID, name string) *Player {
	p := &Player{
		ID:     playerID,
		Name:   name,
		Seat:   len(r.Order) + 1,
		Status: StatusAlive,
	}
	r.Players[playerID] = p
	r.Order = append(r.Order, playerID)
	return p
}

// join seats the player unless the room is unknown, full or already holds
// them.
func (m *Manager) join(ctx context.Context, roomID, playerID, name string) (*Player, bool) {
	r, ok := m.rooms[roomID]
	if !ok || r.Phase != PhaseSetup {
		return nil, false
	}
	if len(r.Players) >= r.Setup.PlayerCount {
		return nil, false
	}
	if _, seated := r.Players[playerID]; seated {
		return nil, false
	}
	m.getOrCreateProfile(ctx, playerID, name)
	p := m.seat(r, playerID, name)
	r.touch(m.now())
	m.persist(ctx, r)
	return p, true
}

// start deals roles and opens the first night. The role multiset is shuffled
// and assigned one per seat: a bijection, never sampling with replacement.
func (m *Manager) start(ctx context.Context, r *Room) bool {
	if len(r.Players) < m.cfg.MinPlayers {
		return false
	}
	if r.Setup.RoleSum() != len(r.Players) {
		return false
	}

	deck := make([]Role, 0, len(r.Players))
	for role, n := range r.Setup.Roles {
		for i := 0; i < n; i++ {
			deck = append(deck, role)
		}
	}
	sort.Slice(deck, func(i, j int) bool { return deck[i] < deck[j] })
	shuffle(deck)

	for i, id := range r.Order {
		p := r.Players[id]
		p.Role = deck[i]
		p.OriginalRole = deck[i]
	}

	now := m.now()
	r.Phase = PhaseNight
	r.DayCount = 1
	r.StartedAt = &now
	r.touch(now)
	m.persist(ctx, r)
	return true
}

// destroy removes the room and its snapshot without archiving.
func (m *Manager) destroy(ctx context.Context, r *Room) {
	if err := m.store.DeleteRoom(ctx, r.ID); err != nil {
		m.logger.Error("deleting room snapshot", "room", r.ID, "error", err)
	}
	delete(m.rooms, r.ID)
}

// archive finishes a room: derives the archival code, rolls game stats into
// every seated player's profile, moves the snapshot into archived storage and
// drops the room from live memory. Calling it for a room that has already
// left the map is a no-op.
func (m *Manager) archive(ctx context.Context, r *Room) string {
	if _, live := m.rooms[r.ID]; !live {
		return r.ArchiveCode
	}

	code := archiveCode(r)
	r.ArchiveCode = code

	for id, p := range r.Players {
		prof := m.getOrCreateProfile(ctx, id, p.Name)
		if prof.Name == "" {
			prof.Name = p.Name
		}

		won := winnerCampMatches(r.Winner, p)
		var endedAt time.Time
		if r.EndedAt != nil {
			endedAt = *r.EndedAt
		}
		prof.recordOutcome(GameOutcome{
			Code:    code,
			Role:    p.OriginalRole,
			Won:     won,
			EndedAt: endedAt,
		})

		// Kill attribution: hunter shots, poisons and detonations credit the
		// killer. Vote exiles were credited at tally time.
		switch {
		case p.KillerID == id:
			// self-inflicted, no credit
		case p.DeathCause == CauseHunterShoot || p.DeathCause == CausePoison || p.DeathCause == CauseWhiteWolf:
			if p.KillerID != "" {
				killer := m.getOrCreateProfile(ctx, p.KillerID, "")
				killer.Kills++
				m.putProfile(ctx, killer)
			}
		}

		m.putProfile(ctx, prof)
	}

	if err := m.store.ArchiveRoom(ctx, r); err != nil {
		m.logger.Error("archiving room", "room", r.ID, "code", code, "error", err)
	}
	delete(m.rooms, r.ID)
	m.logger.Info("room archived", "room", r.ID, "code", code, "winner", r.Winner)
	return code
}

// winnerCampMatches reports whether the player's camp matches the declared
// winner. The synthetic "inactive" winner matches nobody.
func winnerCampMatches(winner string, p *Player) bool {
	switch Camp(winner) {
	case CampVillage, CampWolf, CampThirdParty, CampLover:
		return p.CurrentCamp() == Camp(winner)
	}
	return false
}

// RunReaper scans the room map on a fixed period and force-ends rooms with no
// mutating action inside the phase-dependent timeout. Runs until ctx is done.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.ReapOnce(ctx)
		}
	}
}

// ReapOnce performs a single reaper scan. A room may vanish between the scan
// and the action; archive tolerates that.
func (m *Manager) ReapOnce(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var stale []*Room
	for _, r := range m.rooms {
		timeout := m.cfg.PlayTimeout
		if r.Phase == PhaseSetup {
			timeout = m.cfg.SetupTimeout
		}
		if now.Sub(r.LastActivity) > timeout {
			stale = append(stale, r)
		}
	}

	for _, r := range stale {
		if _, live := m.rooms[r.ID]; !live {
			continue
		}
		m.logger.Info("reaping inactive room", "room", r.ID, "phase", r.Phase)
		r.Winner = "inactive"
		ended := now
		r.EndedAt = &ended
		r.Phase = PhaseEnded
		m.say(ctx, r, fmt.Sprintf("Room %s was closed for inactivity.", r.ID))
		m.archive(ctx, r)
	}
}

// RoomSummary is the read-only view of a live room handed to operators.
type RoomSummary struct {
	ID           string    `json:"id"`
	GroupID      string    `json:"groupId"`
	Phase        string    `json:"phase"`
	DayCount     int       `json:"dayCount"`
	Players      int       `json:"players"`
	PlayerCount  int       `json:"playerCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Summaries lists the live rooms, newest first.
func (m *Manager) Summaries() []RoomSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RoomSummary, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, RoomSummary{
			ID:           r.ID,
			GroupID:      r.GroupID,
			Phase:        string(r.Phase),
			DayCount:     r.DayCount,
			Players:      len(r.Players),
			PlayerCount:  r.Setup.PlayerCount,
			CreatedAt:    r.CreatedAt,
			LastActivity: r.LastActivity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// statusText renders the lobby/status line for a room. Roles stay hidden
// until the game ends.
func (m *Manager) statusText(r *Room) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room %s — %s, players %d/%d\n", r.ID, phaseLabel(r.Phase), len(r.Players), r.Setup.PlayerCount)
	fmt.Fprintf(&b, "Host: %s\n", r.Players[r.HostID].Name)
	b.WriteString("Seats:\n")
	for _, id := range r.Order {
		p := r.Players[id]
		mark := "alive"
		if !p.Alive() {
			mark = string(p.Status)
		}
		if r.Phase == PhaseEnded {
			fmt.Fprintf(&b, "  %d. %s — %s (%s)\n", p.Seat, p.Name, Catalog(p.OriginalRole).Name, mark)
		} else {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", p.Seat, p.Name, mark)
		}
	}
	if r.Phase == PhaseNight {
		actors := r.nightActors()
		acted := 0
		for _, p := range actors {
			if p.HasActed {
				acted++
			}
		}
		fmt.Fprintf(&b, "Acted tonight: %d/%d\n", acted, len(actors))
	}
	b.WriteString("Role mix:\n")
	for _, role := range sortedRoles(r.Setup.Roles) {
		if n := r.Setup.Roles[role]; n > 0 {
			fmt.Fprintf(&b, "  %s (%s): %d\n", Catalog(role).Name, role, n)
		}
	}
	return b.String()
}

func sortedRoles(roles map[Role]int) []Role {
	out := make([]Role, 0, len(roles))
	for role := range roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func phaseLabel(ph Phase) string {
	switch ph {
	case PhaseSetup:
		return "setting up"
	case PhaseNight:
		return "night"
	case PhaseWitchSave:
		return "witch deciding"
	case PhaseDay:
		return "day"
	case PhaseHunterRevenge:
		return "hunter revenge"
	case PhaseEnded:
		return "ended"
	}
	return string(ph)
}
