package game

import "time"

// Phase is the room's current stage in the day/night loop.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseNight         Phase = "night"
	PhaseWitchSave     Phase = "witch_save"
	PhaseDay           Phase = "day"
	PhaseHunterRevenge Phase = "hunter_revenge"
	PhaseEnded         Phase = "ended"
)

// PlayerStatus is a seat's life state.
type PlayerStatus string

const (
	StatusAlive  PlayerStatus = "alive"
	StatusDead   PlayerStatus = "dead"
	StatusExiled PlayerStatus = "exiled"
)

// DeathCause records why a seat left the game.
type DeathCause string

const (
	CauseWolfKill     DeathCause = "wolf_kill"
	CauseVote         DeathCause = "vote"
	CausePoison       DeathCause = "poison"
	CauseHunterShoot  DeathCause = "hunter_shoot"
	CauseWhiteWolf    DeathCause = "white_wolf"
	CauseLoverSuicide DeathCause = "lover_suicide"
)

// WitchPotions tracks the witch's remaining charges.
type WitchPotions string

const (
	WitchHasBoth    WitchPotions = "has_both"
	WitchSaveOnly   WitchPotions = "save_only"
	WitchPoisonOnly WitchPotions = "poison_only"
	WitchUsedBoth   WitchPotions = "used_both"
)

func (w WitchPotions) hasSave() bool   { return w == WitchHasBoth || w == WitchSaveOnly }
func (w WitchPotions) hasPoison() bool { return w == WitchHasBoth || w == WitchPoisonOnly }

func (w WitchPotions) useSave() WitchPotions {
	if w == WitchHasBoth {
		return WitchPoisonOnly
	}
	return WitchUsedBoth
}

func (w WitchPotions) usePoison() WitchPotions {
	if w == WitchHasBoth {
		return WitchSaveOnly
	}
	return WitchUsedBoth
}

// ActionKey identifies a pending night action. Submission is idempotent
// last-write per key.
type ActionKey string

const (
	ActionCupid        ActionKey = "cupid"
	ActionGuard        ActionKey = "guard"
	ActionWolfKill     ActionKey = "wolf_kill"
	ActionSeer         ActionKey = "seer"
	ActionWitchPoison  ActionKey = "witch_poison"
	ActionWitchSave    ActionKey = "witch_save"
	ActionWitchSkip    ActionKey = "witch_skip"
	ActionSpiritualist ActionKey = "spiritualist"
	ActionMagician     ActionKey = "magician"
	ActionPainter      ActionKey = "painter"
)

// Player is one seat in a room. Seat numbers are unique and permanent for the
// game; Role may change through the painter's disguise while OriginalRole is
// fixed at deal time.
type Player struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Seat         int          `json:"seat"`
	Role         Role         `json:"role,omitempty"`
	OriginalRole Role         `json:"original_role,omitempty"`
	Status       PlayerStatus `json:"status"`
	DeathCause   DeathCause   `json:"death_cause,omitempty"`
	KillerID     string       `json:"killer_id,omitempty"`
	HasActed     bool         `json:"has_acted"`
	IsLover      bool         `json:"is_lover"`
	PartnerID    string       `json:"partner_id,omitempty"`

	// CampShift is set when the double-faced player's side is decided
	// (wolf if attacked at night, village if voted out).
	CampShift Camp `json:"camp_shift,omitempty"`
}

// Alive reports whether the seat is still in the game.
func (p *Player) Alive() bool { return p.Status == StatusAlive }

// CurrentCamp is the camp used by the win evaluator: lover pseudo-camp first,
// then any double-faced shift, then the original role's camp.
func (p *Player) CurrentCamp() Camp {
	if p.IsLover {
		return CampLover
	}
	if p.CampShift != "" {
		return p.CampShift
	}
	return Catalog(p.OriginalRole).Camp
}

// Settings is the host-configurable room setup.
type Settings struct {
	PlayerCount int          `json:"player_count"`
	Roles       map[Role]int `json:"roles"`
}

// RoleSum is the total number of configured role seats.
func (s Settings) RoleSum() int {
	sum := 0
	for _, n := range s.Roles {
		sum += n
	}
	return sum
}

// DeathRecord is one pending entry in the night's death queue.
type DeathRecord struct {
	PlayerID string     `json:"player_id"`
	Cause    DeathCause `json:"cause"`
	KillerID string     `json:"killer_id,omitempty"`
}

// SaveCandidate is one seat the witch may rescue during the save sub-phase.
type SaveCandidate struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

// Room is one game instance. All mutation goes through the Manager, which
// serializes commands; the struct itself carries no locking.
type Room struct {
	ID      string `json:"id"`
	HostID  string `json:"host_id"`
	GroupID string `json:"group_id"`

	Players map[string]*Player `json:"players"`
	Order   []string           `json:"order"` // join order; index+1 is the seat number
	Setup   Settings           `json:"setup"`

	Phase    Phase `json:"phase"`
	DayCount int   `json:"day_count"`

	NightActions map[ActionKey]string `json:"night_actions"`
	Votes        map[string]int       `json:"votes"`
	DeathQueue   []DeathRecord        `json:"death_queue"`

	// LastGuardTarget is the seat the guard protected the previous night;
	// choosing it again is rejected.
	LastGuardTarget int `json:"last_guard_target"`

	// HunterPending holds the id of a hunter whose revenge shot is owed this
	// day cycle. RevengeResume is the phase the room returns to once the shot
	// lands.
	HunterPending string `json:"hunter_pending,omitempty"`
	RevengeResume Phase  `json:"revenge_resume,omitempty"`

	Potions            WitchPotions    `json:"potions"`
	SaveCandidates     []SaveCandidate `json:"save_candidates,omitempty"`
	SavedThisNight     map[string]bool `json:"saved_this_night,omitempty"`
	WitchSaveResolved  bool            `json:"witch_save_resolved"`
	HiddenWolfAwakened bool            `json:"hidden_wolf_awakened"`

	// SeatSwap remaps two seat numbers for targeting until the next night
	// resolves. Empty when no swap is active.
	SeatSwap []int `json:"seat_swap,omitempty"`

	PainterDisguise Role `json:"painter_disguise,omitempty"`

	Winner      string `json:"winner,omitempty"`
	ArchiveCode string `json:"archive_code,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	LastActivity time.Time  `json:"last_activity"`
}

// playerBySeat resolves a seat number to a player, honoring an active magician
// swap: while the swap lasts, each of the two seat numbers targets the other
// seat's player. Returns nil for unknown seats.
func (r *Room) playerBySeat(seat int) *Player {
	if len(r.SeatSwap) == 2 {
		switch seat {
		case r.SeatSwap[0]:
			seat = r.SeatSwap[1]
		case r.SeatSwap[1]:
			seat = r.SeatSwap[0]
		}
	}
	return r.seatOccupant(seat)
}

// seatOccupant resolves a physical seat number, untouched by any swap.
func (r *Room) seatOccupant(seat int) *Player {
	for _, p := range r.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// playerByRole returns the living player currently holding the role, or nil.
func (r *Room) playerByRole(role Role) *Player {
	for _, id := range r.Order {
		p := r.Players[id]
		if p.Role == role && p.Alive() {
			return p
		}
	}
	return nil
}

// alivePlayers returns living players in seat order.
func (r *Room) alivePlayers() []*Player {
	var out []*Player
	for _, id := range r.Order {
		if p := r.Players[id]; p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

// nightActors returns the living players whose current role acts at night,
// excluding the witch (her save is collected in a dedicated sub-phase). The
// awakened hidden wolf is included.
func (r *Room) nightActors() []*Player {
	var out []*Player
	for _, id := range r.Order {
		p := r.Players[id]
		if !p.Alive() || p.Role == RoleWitch {
			continue
		}
		if Catalog(p.Role).NightAction {
			out = append(out, p)
			continue
		}
		if p.Role == RoleHiddenWolf && r.HiddenWolfAwakened {
			out = append(out, p)
		}
	}
	return out
}

// actionKeyFor maps a role to its night-action key. The awakened hidden wolf
// shares the wolf kill.
func actionKeyFor(role Role) ActionKey {
	switch role {
	case RoleCupid:
		return ActionCupid
	case RoleGuard:
		return ActionGuard
	case RoleWolf, RoleHiddenWolf:
		return ActionWolfKill
	case RoleSeer:
		return ActionSeer
	case RoleWitch:
		return ActionWitchPoison
	case RoleSpiritualist:
		return ActionSpiritualist
	case RoleMagician:
		return ActionMagician
	case RolePainter:
		return ActionPainter
	}
	return ""
}

func (r *Room) touch(now time.Time) {
	r.LastActivity = now
}
