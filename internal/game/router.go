package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Verb is a player-issued command word. Matching is case-insensitive.
type Verb string

const (
	VerbHost     Verb = "host"
	VerbJoin     Verb = "join"
	VerbStatus   Verb = "status"
	VerbDestroy  Verb = "destroy"
	VerbSettings Verb = "settings"
	VerbStart    Verb = "start"
	VerbProfile  Verb = "profile"
	VerbArchive  Verb = "archive"
	VerbName     Verb = "name"

	VerbCheck    Verb = "check"
	VerbSave     Verb = "save"
	VerbPoison   Verb = "poison"
	VerbKill     Verb = "kill"
	VerbGuard    Verb = "guard"
	VerbSwap     Verb = "swap"
	VerbInspect  Verb = "inspect"
	VerbChoose   Verb = "choose"
	VerbDisguise Verb = "disguise"
	VerbVote     Verb = "vote"
	VerbShoot    Verb = "shoot"
	VerbExplode  Verb = "explode"
	VerbSkip     Verb = "skip"
)

// Command is one inbound chat message, already split by the host surface.
type Command struct {
	SenderID   string
	SenderName string
	GroupID    string
	Verb       Verb
	Args       []string
}

// ParseCommand splits raw message text into a Command. The verb is lowered;
// arguments keep their original form.
func ParseCommand(senderID, senderName, groupID, text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		SenderID:   senderID,
		SenderName: senderName,
		GroupID:    groupID,
		Verb:       Verb(strings.ToLower(fields[0])),
		Args:       fields[1:],
	}, true
}

// HandleCommand routes one command through the phase/role gate and returns
// the synchronous reply for the issuer. Illegal combinations are rejected
// without side effects.
func (m *Manager) HandleCommand(ctx context.Context, cmd Command) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch cmd.Verb {
	case VerbHost:
		return m.handleHost(ctx, cmd)
	case VerbJoin:
		return m.handleJoin(ctx, cmd)
	case VerbStatus:
		return m.handleStatus(cmd)
	case VerbDestroy:
		// Bypasses the phase gate entirely; host-only.
		return m.handleDestroy(ctx, cmd)
	case VerbSettings:
		return m.handleSettings(ctx, cmd)
	case VerbStart:
		return m.handleStart(ctx, cmd)
	case VerbProfile:
		return m.handleProfile(ctx, cmd)
	case VerbArchive:
		return m.handleArchive(ctx, cmd)
	case VerbName:
		return m.handleName(ctx, cmd)
	case VerbCheck, VerbSave, VerbPoison, VerbKill, VerbGuard, VerbSwap,
		VerbInspect, VerbChoose, VerbDisguise, VerbVote, VerbShoot,
		VerbExplode, VerbSkip:
		return m.handleGameAction(ctx, cmd)
	}
	return "Unknown command. Try: host, join <room>, status, start, vote <seat>."
}

func (m *Manager) handleHost(ctx context.Context, cmd Command) string {
	if cmd.GroupID == "" {
		return "Games can only be hosted from a group chat."
	}
	if m.roomOf(cmd.SenderID) != nil {
		return "You are already in an unfinished game. Finish it or destroy the room first."
	}
	r := m.createRoom(ctx, cmd.SenderID, cmd.GroupID, cmd.SenderName)
	return fmt.Sprintf(
		"Room %s created. You are seat 1 and the host.\nPlayers: 1/%d. Others join with: join %s",
		r.ID, r.Setup.PlayerCount, r.ID)
}

func (m *Manager) handleJoin(ctx context.Context, cmd Command) string {
	if len(cmd.Args) < 1 {
		return "Usage: join <room_id>"
	}
	if m.roomOf(cmd.SenderID) != nil {
		return "You are already in an unfinished game. Finish it or destroy the room first."
	}
	roomID := cmd.Args[0]
	p, ok := m.join(ctx, roomID, cmd.SenderID, cmd.SenderName)
	if !ok {
		return "Could not join: room unknown, full, or already started."
	}
	r := m.rooms[roomID]
	return fmt.Sprintf("Joined room %s as seat %d. Players: %d/%d.",
		roomID, p.Seat, len(r.Players), r.Setup.PlayerCount)
}

func (m *Manager) handleStatus(cmd Command) string {
	r := m.roomOf(cmd.SenderID)
	if r == nil {
		return "You are not in any game."
	}
	return m.statusText(r)
}

func (m *Manager) handleDestroy(ctx context.Context, cmd Command) string {
	r := m.roomOf(cmd.SenderID)
	if r == nil {
		return "You are not in any game."
	}
	if r.HostID != cmd.SenderID {
		return "Only the host can destroy the room."
	}
	m.destroy(ctx, r)
	return fmt.Sprintf("Room %s destroyed.", r.ID)
}

func (m *Manager) handleSettings(ctx context.Context, cmd Command) string {
	r := m.roomOf(cmd.SenderID)
	if r == nil {
		return "You are not in any game."
	}
	if r.HostID != cmd.SenderID {
		return "Only the host can change settings."
	}
	if r.Phase != PhaseSetup {
		return "Settings can only be changed before the game starts."
	}
	if len(cmd.Args) < 2 {
		return "Usage: settings players <n> | settings roles <role> <n>"
	}

	switch cmd.Args[0] {
	case "players":
		n, err := strconv.Atoi(cmd.Args[1])
		if err != nil {
			return "Player count must be a number."
		}
		if n < m.cfg.MinPlayers || n > m.cfg.MaxPlayers {
			return fmt.Sprintf("Player count must be between %d and %d.", m.cfg.MinPlayers, m.cfg.MaxPlayers)
		}
		r.Setup.PlayerCount = n
		r.touch(m.now())
		m.persist(ctx, r)
		return fmt.Sprintf("Player count set to %d.", n)

	case "roles":
		if len(cmd.Args) < 3 {
			return "Usage: settings roles <role> <n>"
		}
		role := Role(strings.ToLower(cmd.Args[1]))
		if !KnownRole(role) {
			return fmt.Sprintf("Unknown role %q.", cmd.Args[1])
		}
		n, err := strconv.Atoi(cmd.Args[2])
		if err != nil {
			return "Role count must be a number."
		}
		if n < 0 {
			return "Role count cannot be negative."
		}
		r.Setup.Roles[role] = n
		r.touch(m.now())
		m.persist(ctx, r)
		return fmt.Sprintf("%s count set to %d. Role seats now total %d.",
			Catalog(role).Name, n, r.Setup.RoleSum())
	}
	return "Unknown setting. Use: settings players <n> | settings roles <role> <n>"
}

func (m *Manager) handleStart(ctx context.Context, cmd Command) string {
	r := m.roomOf(cmd.SenderID)
	if r == nil {
		return "You are not in any game."
	}
	if r.HostID != cmd.SenderID {
		return "Only the host can start the game."
	}
	if r.Phase != PhaseSetup {
		return "The game has already started."
	}
	if !m.start(ctx, r) {
		return fmt.Sprintf(
			"Cannot start: need at least %d players and the role seats (%d) must equal the seated players (%d).",
			m.cfg.MinPlayers, r.Setup.RoleSum(), len(r.Players))
	}

	m.say(ctx, r, fmt.Sprintf(
		"The game begins! Night %d falls over room %s.\nPlayers with night abilities: check your private messages and act.", r.DayCount, r.ID))
	m.sendRoleBriefings(ctx, r)
	m.beginNight(ctx, r)
	return "Game started."
}

func (m *Manager) handleProfile(ctx context.Context, cmd Command) string {
	target := cmd.SenderID
	if len(cmd.Args) > 0 {
		target = cmd.Args[0]
	}
	p, err := m.store.GetProfile(ctx, target)
	if err != nil {
		return "No profile found for that player."
	}
	winRate := 0.0
	if p.TotalGames > 0 {
		winRate = float64(p.Wins) / float64(p.TotalGames)
	}
	return fmt.Sprintf(
		"Profile — %s\nGames: %d  Wins: %d  Losses: %d\nWin rate: %.1f%%  Last %d: %.1f%%\nKills: %d  Vote-kills: %d",
		p.Name, p.TotalGames, p.Wins, p.Losses,
		winRate*100, recentWindow, p.RecentWinRate*100,
		p.Kills, p.VoteKills)
}

func (m *Manager) handleArchive(ctx context.Context, cmd Command) string {
	if len(cmd.Args) < 1 {
		return "Usage: archive <code>"
	}
	r, err := m.store.GetArchive(ctx, cmd.Args[0])
	if err != nil {
		return "No archived game found for that code."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Archived game %s (room %s)\nWinner: %s\n", r.ArchiveCode, r.ID, r.Winner)
	if r.StartedAt != nil && r.EndedAt != nil {
		fmt.Fprintf(&b, "Played %s — %s\n", r.StartedAt.Format("2006-01-02 15:04"), r.EndedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString("Seats:\n")
	for _, id := range r.Order {
		p := r.Players[id]
		fmt.Fprintf(&b, "  %d. %s — %s (%s)\n", p.Seat, p.Name, Catalog(p.OriginalRole).Name, p.Status)
	}
	return b.String()
}

func (m *Manager) handleName(ctx context.Context, cmd Command) string {
	if len(cmd.Args) < 1 {
		return "Usage: name set <nickname> | name view"
	}
	switch cmd.Args[0] {
	case "set":
		if len(cmd.Args) < 2 {
			return "Usage: name set <nickname>"
		}
		nick := strings.Join(cmd.Args[1:], " ")
		if len(nick) > 20 {
			return "Nicknames are limited to 20 characters."
		}
		p := m.getOrCreateProfile(ctx, cmd.SenderID, nick)
		p.Name = nick
		m.putProfile(ctx, p)
		return fmt.Sprintf("Nickname set to %s.", nick)
	case "view":
		p, err := m.store.GetProfile(ctx, cmd.SenderID)
		if err != nil || p.Name == "" {
			return "You have no nickname yet. Set one with: name set <nickname>"
		}
		return fmt.Sprintf("Your nickname is %s.", p.Name)
	}
	return "Unknown name operation. Use: name set <nickname> | name view"
}

// handleGameAction gates the in-game verbs: room membership, alive status,
// phase legality, then role legality.
func (m *Manager) handleGameAction(ctx context.Context, cmd Command) string {
	r := m.roomOf(cmd.SenderID)
	if r == nil {
		return "You are not in any game."
	}
	p := r.Players[cmd.SenderID]

	// The revenge shot is the one action a dead player may take.
	if r.Phase == PhaseHunterRevenge {
		if cmd.Verb != VerbShoot {
			return "Waiting for the hunter. Only shoot <seat> is accepted."
		}
		return m.handleShoot(ctx, r, p, cmd.Args)
	}

	if !p.Alive() {
		return "You are out of the game and cannot act."
	}

	switch r.Phase {
	case PhaseWitchSave:
		switch cmd.Verb {
		case VerbSave:
			return m.handleWitchSave(ctx, r, p, cmd.Args)
		case VerbSkip:
			return m.handleWitchSkip(ctx, r, p)
		}
		return "The witch is deciding. Only save <seat> or skip are accepted."
	case PhaseNight:
		return m.handleNightAction(ctx, r, p, cmd.Verb, cmd.Args)
	case PhaseDay:
		switch cmd.Verb {
		case VerbVote:
			return m.handleVote(ctx, r, p, cmd.Args)
		case VerbExplode:
			return m.handleExplode(ctx, r, p, cmd.Args)
		}
		return "During the day only vote <seat> (or the white wolf's explode) is accepted."
	}
	return fmt.Sprintf("That command is not available right now (phase: %s).", phaseLabel(r.Phase))
}

// seatArg parses a single seat-number argument and resolves it to a living
// player.
func (r *Room) seatArg(args []string) (*Player, string) {
	if len(args) < 1 {
		return nil, "A target seat number is required."
	}
	seat, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, "The target must be a seat number."
	}
	target := r.playerBySeat(seat)
	if target == nil || !target.Alive() {
		return nil, "That seat does not exist or is already out."
	}
	return target, ""
}
