package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// handleVote records one exile vote. Votes overwrite until the last living
// player has voted, then the tally runs.
func (m *Manager) handleVote(ctx context.Context, r *Room, p *Player, args []string) string {
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	r.Votes[p.ID] = target.Seat
	r.touch(m.now())
	m.persist(ctx, r)

	reply := fmt.Sprintf("Your vote is on seat %d.", target.Seat)
	if len(r.Votes) >= len(r.alivePlayers()) {
		m.tallyVotes(ctx, r)
	}
	return reply
}

// tallyVotes exiles the unique plurality target; any tie (or an empty board)
// exiles no one.
func (m *Manager) tallyVotes(ctx context.Context, r *Room) {
	counts := make(map[int]int)
	for _, seat := range r.Votes {
		counts[seat]++
	}

	top, topCount, tied := 0, 0, false
	for seat, n := range counts {
		switch {
		case n > topCount:
			top, topCount, tied = seat, n, false
		case n == topCount:
			tied = true
		}
	}

	m.say(ctx, r, "The votes are in.\n"+voteBreakdown(r, counts))

	if topCount == 0 || tied {
		m.say(ctx, r, "The vote is split. No one is exiled today.")
		m.openNight(ctx, r)
		return
	}

	exiled := r.seatOccupant(top)
	if exiled == nil || !exiled.Alive() {
		m.openNight(ctx, r)
		return
	}

	// Exile settles the double-faced player's side before it removes them.
	if exiled.Role == RoleDoubleFaced {
		exiled.CampShift = CampVillage
	}

	// Credit the ballots that landed the exile now; votes are transient and
	// gone by archival time.
	for voterID, seat := range r.Votes {
		if seat == exiled.Seat && voterID != exiled.ID {
			prof := m.getOrCreateProfile(ctx, voterID, "")
			prof.VoteKills++
			m.putProfile(ctx, prof)
		}
	}

	r.DeathQueue = append(r.DeathQueue, DeathRecord{PlayerID: exiled.ID, Cause: CauseVote})
	died := m.executeDeaths(ctx, r)

	parts := make([]string, 0, len(died))
	for _, d := range died {
		parts = append(parts, fmt.Sprintf("seat %d (%s)", d.Seat, d.Name))
	}
	m.say(ctx, r, "Exiled by vote: "+strings.Join(parts, ", ")+".")

	if m.evaluateWin(ctx, r) {
		return
	}
	if r.HunterPending != "" {
		m.enterHunterRevenge(ctx, r, PhaseNight)
		return
	}
	m.openNight(ctx, r)
}

func voteBreakdown(r *Room, counts map[int]int) string {
	seats := make([]int, 0, len(counts))
	for seat := range counts {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	var b strings.Builder
	for _, seat := range seats {
		p := r.seatOccupant(seat)
		if p == nil {
			continue
		}
		fmt.Fprintf(&b, "  seat %d (%s): %d vote(s)\n", seat, p.Name, counts[seat])
	}
	return b.String()
}

// handleExplode is the white wolf king's self-detonation: reveal, die, take
// one player along and cancel today's vote entirely.
func (m *Manager) handleExplode(ctx context.Context, r *Room, p *Player, args []string) string {
	if p.Role != RoleWhiteWolf {
		return "Only the white wolf king can do that."
	}
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	if target.ID == p.ID {
		return "Pick someone other than yourself."
	}

	m.say(ctx, r, fmt.Sprintf(
		"Seat %d (%s) throws off their disguise — the White Wolf King! They detonate, taking seat %d (%s) along. Today's vote is cancelled.",
		p.Seat, p.Name, target.Seat, target.Name))

	r.DeathQueue = append(r.DeathQueue,
		DeathRecord{PlayerID: p.ID, Cause: CauseWhiteWolf, KillerID: p.ID},
		DeathRecord{PlayerID: target.ID, Cause: CauseWhiteWolf, KillerID: p.ID},
	)
	m.executeDeaths(ctx, r)

	if m.evaluateWin(ctx, r) {
		return "You go out with a bang."
	}
	if r.HunterPending != "" {
		m.enterHunterRevenge(ctx, r, PhaseNight)
		return "You go out with a bang."
	}
	m.openNight(ctx, r)
	return "You go out with a bang."
}

// handleShoot lands the fallen hunter's revenge shot, then play resumes where
// it left off. A shot hunter chains into another revenge.
func (m *Manager) handleShoot(ctx context.Context, r *Room, p *Player, args []string) string {
	if r.HunterPending != p.ID {
		return "The revenge shot is not yours to take."
	}
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}

	resume := r.RevengeResume
	r.HunterPending = ""
	r.RevengeResume = ""

	m.say(ctx, r, fmt.Sprintf("The hunter fires! Seat %d (%s) falls.", target.Seat, target.Name))
	r.DeathQueue = append(r.DeathQueue, DeathRecord{PlayerID: target.ID, Cause: CauseHunterShoot, KillerID: p.ID})
	m.executeDeaths(ctx, r)

	if m.evaluateWin(ctx, r) {
		return "Your shot echoes."
	}
	if r.HunterPending != "" {
		m.enterHunterRevenge(ctx, r, resume)
		return "Your shot echoes."
	}
	if resume == PhaseDay {
		m.openDay(ctx, r)
	} else {
		m.openNight(ctx, r)
	}
	return "Your shot echoes."
}

// openNight starts the next night cycle.
func (m *Manager) openNight(ctx context.Context, r *Room) {
	r.Phase = PhaseNight
	r.DayCount++
	r.Votes = make(map[string]int)
	r.NightActions = make(map[ActionKey]string)
	for _, p := range r.Players {
		p.HasActed = false
	}
	r.touch(m.now())
	m.persist(ctx, r)
	m.say(ctx, r, fmt.Sprintf("Night %d falls. Players with night abilities, act now.", r.DayCount))
	m.nightReminders(ctx, r)
	m.beginNight(ctx, r)
}
