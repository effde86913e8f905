package game

import "time"

// recentWindow is how many finished games feed the rolling win rate.
const recentWindow = 10

// GameOutcome is one entry in a profile's recent-game history.
type GameOutcome struct {
	Code    string    `json:"code"`
	Role    Role      `json:"role"`
	Won     bool      `json:"won"`
	EndedAt time.Time `json:"ended_at"`
}

// Profile is the persistent cross-game record for one player identity.
// Created lazily on first join or name-set, mutated at archival time,
// never deleted.
type Profile struct {
	PlayerID      string        `json:"player_id"`
	Name          string        `json:"name"`
	TotalGames    int           `json:"total_games"`
	Wins          int           `json:"wins"`
	Losses        int           `json:"losses"`
	Kills         int           `json:"kills"`
	VoteKills     int           `json:"vote_kills"`
	RecentGames   []GameOutcome `json:"recent_games"`
	RecentWinRate float64       `json:"recent_win_rate"`
	CreatedAt     time.Time     `json:"created_at"`
}

// recordOutcome appends a finished game, trims the history to the rolling
// window and recomputes the windowed win rate.
func (p *Profile) recordOutcome(o GameOutcome) {
	p.TotalGames++
	if o.Won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.RecentGames = append(p.RecentGames, o)
	if len(p.RecentGames) > recentWindow {
		p.RecentGames = p.RecentGames[len(p.RecentGames)-recentWindow:]
	}
	wins := 0
	for _, g := range p.RecentGames {
		if g.Won {
			wins++
		}
	}
	p.RecentWinRate = float64(wins) / float64(len(p.RecentGames))
}
