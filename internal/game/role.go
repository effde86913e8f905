package game

// Camp is a player's alignment for win-condition purposes. Lover is a pseudo-camp
// that supersedes the other three once a cupid pairing exists.
type Camp string

const (
	CampVillage    Camp = "village"
	CampWolf       Camp = "wolf"
	CampThirdParty Camp = "third_party"
	CampLover      Camp = "lover"
)

// Role identifies an entry in the static catalog.
type Role string

const (
	RoleVillager     Role = "villager"
	RoleSeer         Role = "seer"
	RoleWitch        Role = "witch"
	RoleHunter       Role = "hunter"
	RoleWolf         Role = "wolf"
	RoleHiddenWolf   Role = "hidden_wolf"
	RoleGuard        Role = "guard"
	RoleMagician     Role = "magician"
	RoleDoubleFaced  Role = "double_faced"
	RoleSpiritualist Role = "spiritualist"
	RoleSuccessor    Role = "successor"
	RolePainter      Role = "painter"
	RoleWhiteWolf    Role = "white_wolf"
	RoleCupid        Role = "cupid"
)

// RoleInfo is an immutable catalog entry, loaded once at process start.
type RoleInfo struct {
	Name        string
	Camp        Camp
	NightAction bool
	DayAction   bool
	Verb        Verb
	Description string
}

var roleCatalog = map[Role]RoleInfo{
	RoleVillager: {
		Name:        "Villager",
		Camp:        CampVillage,
		Description: "An ordinary villager with no special ability. Find the wolves by deduction.",
	},
	RoleSeer: {
		Name:        "Seer",
		Camp:        CampVillage,
		NightAction: true,
		Verb:        VerbCheck,
		Description: "Each night, learns whether one player is village-aligned or wolf-aligned.",
	},
	RoleWitch: {
		Name:        "Witch",
		Camp:        CampVillage,
		NightAction: true,
		Verb:        VerbPoison,
		Description: "Holds one antidote and one poison. May use one of them per night.",
	},
	RoleHunter: {
		Name:        "Hunter",
		Camp:        CampVillage,
		DayAction:   true,
		Verb:        VerbShoot,
		Description: "On death takes one player down with them, unless killed by poison.",
	},
	RoleWolf: {
		Name:        "Werewolf",
		Camp:        CampWolf,
		NightAction: true,
		Verb:        VerbKill,
		Description: "Each night the pack agrees on one player to kill.",
	},
	RoleHiddenWolf: {
		Name:        "Hidden Wolf",
		Camp:        CampWolf,
		Description: "Checks as village-aligned and does not join the night kill. Gains the kill once every other wolf is out.",
	},
	RoleGuard: {
		Name:        "Guard",
		Camp:        CampVillage,
		NightAction: true,
		Verb:        VerbGuard,
		Description: "Each night protects one player (including themselves) from the wolf attack. Never the same player twice in a row.",
	},
	RoleMagician: {
		Name:        "Magician",
		Camp:        CampVillage,
		NightAction: true,
		Verb:        VerbSwap,
		Description: "Each night may swap the seat numbers of two players, lasting until the next night.",
	},
	RoleDoubleFaced: {
		Name:        "Double-Faced",
		Camp:        CampThirdParty,
		Description: "Starts without a fixed side. Joins the wolves if attacked at night, the village if voted out. Immune to poison.",
	},
	RoleSpiritualist: {
		Name:        "Spiritualist",
		Camp:        CampVillage,
		NightAction: true,
		Verb:        VerbInspect,
		Description: "Each night learns one player's exact role. Cannot be guarded, and the antidote does not work on them.",
	},
	RoleSuccessor: {
		Name:        "Successor",
		Camp:        CampVillage,
		Description: "Secretly inherits the ability of an adjacent-seat special villager who is eliminated.",
	},
	RolePainter: {
		Name:        "Painter",
		Camp:        CampWolf,
		NightAction: true,
		Verb:        VerbDisguise,
		Description: "From the second night on, may slip into the identity of an eliminated player.",
	},
	RoleWhiteWolf: {
		Name:        "White Wolf King",
		Camp:        CampWolf,
		DayAction:   true,
		Verb:        VerbExplode,
		Description: "During the day vote may reveal, self-detonate and take one player along.",
	},
	RoleCupid: {
		Name:        "Cupid",
		Camp:        CampThirdParty,
		NightAction: true,
		Verb:        VerbChoose,
		Description: "On the first night, pairs two players as lovers.",
	},
}

// Catalog returns the role's static definition. The zero RoleInfo is returned
// for unknown roles.
func Catalog(r Role) RoleInfo {
	return roleCatalog[r]
}

// KnownRole reports whether r names a catalog entry.
func KnownRole(r Role) bool {
	_, ok := roleCatalog[r]
	return ok
}

// defaultRoleMix sums to the default player count of 8.
func defaultRoleMix() map[Role]int {
	return map[Role]int{
		RoleVillager: 2,
		RoleSeer:     1,
		RoleWitch:    1,
		RoleHunter:   1,
		RoleWolf:     2,
		RoleGuard:    1,
	}
}
