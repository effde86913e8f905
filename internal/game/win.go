package game

import (
	"context"
	"fmt"
)

// executeDeaths drains the death queue, applying lover cascades, successor
// inheritance, hunter revenge arming and hidden-wolf awakening as it goes.
// Every death in the batch lands atomically before anything is announced.
// Returns the players who actually died, in execution order.
func (m *Manager) executeDeaths(ctx context.Context, r *Room) []*Player {
	var died []*Player
	for len(r.DeathQueue) > 0 {
		rec := r.DeathQueue[0]
		r.DeathQueue = r.DeathQueue[1:]

		p := r.Players[rec.PlayerID]
		if p == nil || !p.Alive() {
			continue
		}

		if rec.Cause == CauseVote {
			p.Status = StatusExiled
		} else {
			p.Status = StatusDead
		}
		p.DeathCause = rec.Cause
		p.KillerID = rec.KillerID
		died = append(died, p)

		// Poison stops the revenge shot; every other cause arms it.
		if p.Role == RoleHunter && rec.Cause != CausePoison {
			r.HunterPending = p.ID
		}

		// A lover never survives their partner.
		if p.IsLover && p.PartnerID != "" {
			if partner := r.Players[p.PartnerID]; partner != nil && partner.Alive() {
				r.DeathQueue = append(r.DeathQueue, DeathRecord{
					PlayerID: partner.ID,
					Cause:    CauseLoverSuicide,
					KillerID: p.ID,
				})
			}
		}

		m.inheritAbility(ctx, r, p)
		m.checkHiddenWolf(ctx, r)
	}

	r.touch(m.now())
	m.persist(ctx, r)
	return died
}

// inheritAbility hands a fallen village special's role to a living successor
// in an adjacent seat.
func (m *Manager) inheritAbility(ctx context.Context, r *Room, dead *Player) {
	info := Catalog(dead.Role)
	if info.Camp != CampVillage || dead.Role == RoleVillager || dead.Role == RoleSuccessor {
		return
	}
	n := len(r.Order)
	for _, id := range r.Order {
		p := r.Players[id]
		if p.Role != RoleSuccessor || !p.Alive() {
			continue
		}
		diff := p.Seat - dead.Seat
		if diff == 1 || diff == -1 || diff == n-1 || diff == 1-n {
			p.Role = dead.Role
			m.whisper(ctx, p.ID, fmt.Sprintf(
				"Your neighbor has fallen. You quietly take up their mantle: you are now the %s.", info.Name))
			return
		}
	}
}

// checkHiddenWolf awakens the hidden wolf once no other wolf-camp player is
// left alive, granting it the pack's kill.
func (m *Manager) checkHiddenWolf(ctx context.Context, r *Room) {
	if r.HiddenWolfAwakened {
		return
	}
	var hidden *Player
	for _, p := range r.Players {
		if p.Role == RoleHiddenWolf && p.Alive() {
			hidden = p
			break
		}
	}
	if hidden == nil {
		return
	}
	for _, p := range r.Players {
		if p.ID != hidden.ID && p.Alive() && Catalog(p.Role).Camp == CampWolf {
			return
		}
	}
	r.HiddenWolfAwakened = true
	m.whisper(ctx, hidden.ID, "The pack is gone. You awaken: from tonight you hunt alone with kill <seat>.")
}

// evaluateWin checks the end conditions after a death batch and, when one
// holds, reveals the board and archives the room. Reports whether the game
// ended.
func (m *Manager) evaluateWin(ctx context.Context, r *Room) bool {
	if r.Phase == PhaseEnded {
		return true
	}

	var wolves, others, lovers, third int
	for _, p := range r.alivePlayers() {
		switch p.CurrentCamp() {
		case CampWolf:
			wolves++
		case CampLover:
			lovers++
		case CampThirdParty:
			third++
			others++
		default:
			others++
		}
	}
	alive := wolves + others + lovers

	// First match wins; lovers sit out the parity comparison.
	var winner Camp
	switch {
	case wolves == 0:
		winner = CampVillage
	case wolves >= others:
		winner = CampWolf
	case alive > 0 && lovers == alive:
		winner = CampLover
	case third > 0 && third == alive:
		winner = CampThirdParty
	default:
		return false
	}

	r.Winner = string(winner)
	now := m.now()
	r.EndedAt = &now
	r.Phase = PhaseEnded
	r.HunterPending = ""
	r.RevengeResume = ""

	m.say(ctx, r, fmt.Sprintf("The game is over — the %s side wins!\n%s", campLabel(winner), m.statusText(r)))
	code := m.archive(ctx, r)
	m.say(ctx, r, fmt.Sprintf("This game is archived. Review it anytime with: archive %s", code))
	return true
}

func campLabel(c Camp) string {
	switch c {
	case CampVillage:
		return "village"
	case CampWolf:
		return "wolf"
	case CampThirdParty:
		return "third-party"
	case CampLover:
		return "lovers'"
	}
	return string(c)
}

// enterHunterRevenge parks the room until the fallen hunter fires, then play
// resumes in the given phase.
func (m *Manager) enterHunterRevenge(ctx context.Context, r *Room, resume Phase) {
	r.Phase = PhaseHunterRevenge
	r.RevengeResume = resume
	r.touch(m.now())
	m.persist(ctx, r)
	hunter := r.Players[r.HunterPending]
	m.say(ctx, r, fmt.Sprintf("Seat %d (%s) was the hunter. A last shot is owed.", hunter.Seat, hunter.Name))
	m.whisper(ctx, hunter.ID, "Your gun is still loaded. Take someone with you: shoot <seat>")
}
