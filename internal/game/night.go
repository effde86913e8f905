package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// sendRoleBriefings whispers every player their dealt role. Wolf-camp players
// other than the hidden wolf also learn their packmates.
func (m *Manager) sendRoleBriefings(ctx context.Context, r *Room) {
	var pack []string
	for _, id := range r.Order {
		p := r.Players[id]
		if Catalog(p.Role).Camp == CampWolf && p.Role != RoleHiddenWolf {
			pack = append(pack, fmt.Sprintf("%d. %s", p.Seat, p.Name))
		}
	}

	for _, id := range r.Order {
		p := r.Players[id]
		info := Catalog(p.Role)
		var b strings.Builder
		fmt.Fprintf(&b, "You are seat %d — %s.\n%s", p.Seat, info.Name, info.Description)
		if info.Verb != "" {
			fmt.Fprintf(&b, "\nYour command: %s <seat>", info.Verb)
		}
		if info.Camp == CampWolf && p.Role != RoleHiddenWolf && len(pack) > 1 {
			fmt.Fprintf(&b, "\nYour pack: %s", strings.Join(pack, ", "))
		}
		m.whisper(ctx, id, b.String())
	}
}

// requiredNightKeys is the collection gate: the set of action keys that must
// be present before the night resolves. The witch's decisions are never part
// of the gate, the cupid acts only on the first night and the painter only
// from the second night on.
func (r *Room) requiredNightKeys() map[ActionKey]bool {
	req := make(map[ActionKey]bool)
	for _, p := range r.nightActors() {
		switch p.Role {
		case RoleCupid:
			if r.DayCount == 1 {
				req[ActionCupid] = true
			}
		case RolePainter:
			if r.DayCount >= 2 {
				req[ActionPainter] = true
			}
		default:
			if key := actionKeyFor(p.Role); key != "" {
				req[key] = true
			}
		}
	}
	return req
}

func (r *Room) nightComplete() bool {
	for key := range r.requiredNightKeys() {
		if _, ok := r.NightActions[key]; !ok {
			return false
		}
	}
	return true
}

// handleNightAction validates one night submission against the actor's
// current role and records it. Submissions overwrite: the last one per action
// key counts. Once every required key is in, the room moves on.
func (m *Manager) handleNightAction(ctx context.Context, r *Room, p *Player, verb Verb, args []string) string {
	role := p.Role
	info := Catalog(role)

	// The awakened hidden wolf inherits the pack's kill.
	if role == RoleHiddenWolf {
		if !r.HiddenWolfAwakened {
			return "You have no night action."
		}
		info.Verb = VerbKill
	}

	if verb == VerbSkip {
		return m.handleNightSkip(ctx, r, p)
	}
	if info.Verb == "" || !info.NightAction && role != RoleHiddenWolf {
		return "You have no night action."
	}
	if verb != info.Verb {
		return fmt.Sprintf("Your night command is: %s <seat>", info.Verb)
	}

	var reply string
	switch role {
	case RoleCupid:
		reply = m.nightCupid(r, args)
	case RoleGuard:
		reply = m.nightGuard(r, args)
	case RoleWolf, RoleHiddenWolf:
		reply = m.nightWolfKill(r, args)
	case RoleSeer:
		reply = m.nightSeer(r, args)
	case RoleWitch:
		reply = m.nightPoison(r, args)
	case RoleSpiritualist:
		reply = m.nightSpiritualist(r, args)
	case RoleMagician:
		reply = m.nightMagician(r, args)
	case RolePainter:
		reply = m.nightPainter(r, args)
	default:
		return "You have no night action."
	}

	// The flag tracks gate progress, so the pack counts as acted once any
	// wolf has registered the kill.
	if _, ok := r.NightActions[actionKeyFor(role)]; ok {
		p.HasActed = true
	}

	r.touch(m.now())
	m.persist(ctx, r)
	if r.nightComplete() {
		m.closeNight(ctx, r)
	}
	return reply
}

// handleNightSkip lets the optional actors pass. The magician's swap and the
// painter's disguise are the only skippable gated actions.
func (m *Manager) handleNightSkip(ctx context.Context, r *Room, p *Player) string {
	switch p.Role {
	case RoleMagician:
		r.NightActions[ActionMagician] = ""
	case RolePainter:
		if r.DayCount < 2 {
			return "The painter acts from the second night on."
		}
		r.NightActions[ActionPainter] = ""
	default:
		return "Your night action cannot be skipped."
	}
	p.HasActed = true
	r.touch(m.now())
	m.persist(ctx, r)
	if r.nightComplete() {
		m.closeNight(ctx, r)
	}
	return "You pass this night."
}

func (m *Manager) nightCupid(r *Room, args []string) string {
	if r.DayCount != 1 {
		return "The cupid only acts on the first night."
	}
	if len(args) < 2 {
		return "Usage: choose <seat> <seat>"
	}
	a, errA := strconv.Atoi(args[0])
	b, errB := strconv.Atoi(args[1])
	if errA != nil || errB != nil || a == b {
		return "Name two different seat numbers."
	}
	pa, pb := r.playerBySeat(a), r.playerBySeat(b)
	if pa == nil || pb == nil || !pa.Alive() || !pb.Alive() {
		return "Both seats must be living players."
	}
	r.NightActions[ActionCupid] = fmt.Sprintf("%d %d", pa.Seat, pb.Seat)
	return fmt.Sprintf("Seats %d and %d will wake as lovers.", a, b)
}

func (m *Manager) nightGuard(r *Room, args []string) string {
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	if target.Seat == r.LastGuardTarget {
		return "You protected that player last night. Choose someone else."
	}
	r.NightActions[ActionGuard] = strconv.Itoa(target.Seat)
	return fmt.Sprintf("You stand watch over seat %d tonight.", target.Seat)
}

func (m *Manager) nightWolfKill(r *Room, args []string) string {
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	r.NightActions[ActionWolfKill] = strconv.Itoa(target.Seat)
	return fmt.Sprintf("The pack turns toward seat %d.", target.Seat)
}

func (m *Manager) nightSeer(r *Room, args []string) string {
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	r.NightActions[ActionSeer] = strconv.Itoa(target.Seat)

	// The hidden wolf reads as village; everyone else reads as their current
	// role's camp, so a disguised painter reads as the stolen identity.
	aligned := "wolf-aligned"
	if Catalog(target.Role).Camp == CampVillage || target.Role == RoleHiddenWolf {
		aligned = "village-aligned"
	}
	return fmt.Sprintf("Seat %d is %s.", target.Seat, aligned)
}

func (m *Manager) nightPoison(r *Room, args []string) string {
	if !r.Potions.hasPoison() {
		return "You have no poison left."
	}
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	// The charge is spent at resolution, so the witch may still retarget;
	// the confirmation never reveals targets the poison cannot touch.
	r.NightActions[ActionWitchPoison] = strconv.Itoa(target.Seat)
	return fmt.Sprintf("The vial empties over seat %d.", target.Seat)
}

func (m *Manager) nightSpiritualist(r *Room, args []string) string {
	target, errText := r.seatArg(args)
	if target == nil {
		return errText
	}
	r.NightActions[ActionSpiritualist] = strconv.Itoa(target.Seat)
	return fmt.Sprintf("Seat %d is the %s.", target.Seat, Catalog(target.Role).Name)
}

func (m *Manager) nightMagician(r *Room, args []string) string {
	if len(args) < 2 {
		return "Usage: swap <seat> <seat>, or skip"
	}
	a, errA := strconv.Atoi(args[0])
	b, errB := strconv.Atoi(args[1])
	if errA != nil || errB != nil || a == b {
		return "Name two different seat numbers."
	}
	pa, pb := r.playerBySeat(a), r.playerBySeat(b)
	if pa == nil || pb == nil || !pa.Alive() || !pb.Alive() {
		return "Both seats must be living players."
	}
	r.NightActions[ActionMagician] = fmt.Sprintf("%d %d", pa.Seat, pb.Seat)
	return fmt.Sprintf("From tomorrow night, seats %d and %d trade places.", a, b)
}

func (m *Manager) nightPainter(r *Room, args []string) string {
	if r.DayCount < 2 {
		return "The painter acts from the second night on."
	}
	if len(args) < 1 {
		return "Usage: disguise <seat>, or skip"
	}
	seat, err := strconv.Atoi(args[0])
	if err != nil {
		return "The target must be a seat number."
	}
	target := r.playerBySeat(seat)
	if target == nil || target.Alive() {
		return "You can only take the identity of an eliminated player."
	}
	r.NightActions[ActionPainter] = strconv.Itoa(target.Seat)
	return fmt.Sprintf("You slip into the identity of seat %d.", seat)
}

// closeNight runs once the collection gate fills: either hand the pending
// kill to the witch, or resolve the night outright.
func (m *Manager) closeNight(ctx context.Context, r *Room) {
	r.SaveCandidates = m.saveCandidates(r)

	witch := r.playerByRole(RoleWitch)
	if witch == nil || !r.Potions.hasSave() || len(r.SaveCandidates) == 0 {
		m.resolveNight(ctx, r)
		return
	}

	r.Phase = PhaseWitchSave
	m.persist(ctx, r)
	var b strings.Builder
	b.WriteString("The wolves have struck. You may use your antidote on:\n")
	for _, c := range r.SaveCandidates {
		fmt.Fprintf(&b, "  %d. %s\n", c.Seat, c.Name)
	}
	b.WriteString("Reply: save <seat> or skip")
	m.whisper(ctx, witch.ID, b.String())
}

// saveCandidates lists the seats the antidote could actually rescue: the wolf
// target, minus anyone the attack cannot kill in the first place (guarded,
// double-faced) and minus the spiritualist, on whom the antidote fails.
func (m *Manager) saveCandidates(r *Room) []SaveCandidate {
	raw, ok := r.NightActions[ActionWolfKill]
	if !ok || raw == "" {
		return nil
	}
	seat, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	target := r.seatOccupant(seat)
	if target == nil || !target.Alive() {
		return nil
	}
	if target.Seat == r.guardedSeat() && target.Role != RoleSpiritualist {
		return nil
	}
	if target.Role == RoleDoubleFaced || target.Role == RoleSpiritualist {
		return nil
	}
	return []SaveCandidate{{Seat: target.Seat, Name: target.Name}}
}

// guardedSeat is the seat protected tonight, or 0.
func (r *Room) guardedSeat() int {
	raw, ok := r.NightActions[ActionGuard]
	if !ok {
		return 0
	}
	seat, _ := strconv.Atoi(raw)
	return seat
}

func (m *Manager) handleWitchSave(ctx context.Context, r *Room, p *Player, args []string) string {
	if p.Role != RoleWitch {
		return "Only the witch may answer now."
	}
	if len(args) < 1 {
		return "Usage: save <seat>"
	}
	seat, err := strconv.Atoi(args[0])
	if err != nil {
		return "The target must be a seat number."
	}
	var target *Player
	for _, c := range r.SaveCandidates {
		if c.Seat == seat {
			target = r.seatOccupant(seat)
		}
	}
	if target == nil {
		return "That seat is not among tonight's victims."
	}

	r.Potions = r.Potions.useSave()
	if r.SavedThisNight == nil {
		r.SavedThisNight = make(map[string]bool)
	}
	r.SavedThisNight[target.ID] = true
	r.WitchSaveResolved = true
	m.resolveNight(ctx, r)
	return fmt.Sprintf("The antidote goes to seat %d.", seat)
}

func (m *Manager) handleWitchSkip(ctx context.Context, r *Room, p *Player) string {
	if p.Role != RoleWitch {
		return "Only the witch may answer now."
	}
	r.WitchSaveResolved = true
	m.resolveNight(ctx, r)
	return "You keep the antidote."
}

// resolveNight applies every collected action in fixed order, executes the
// resulting deaths as one batch and opens the day. Submission already mapped
// swap labels to physical seats, so collected values are read raw here; the
// swap recorded tonight takes effect only once resolution is done.
func (m *Manager) resolveNight(ctx context.Context, r *Room) {
	// Cupid, first night only.
	if raw, ok := r.NightActions[ActionCupid]; ok && raw != "" {
		var a, b int
		fmt.Sscanf(raw, "%d %d", &a, &b)
		pa, pb := r.seatOccupant(a), r.seatOccupant(b)
		if pa != nil && pb != nil {
			pa.IsLover, pb.IsLover = true, true
			pa.PartnerID, pb.PartnerID = pb.ID, pa.ID
			m.whisper(ctx, pa.ID, fmt.Sprintf("You wake bound to seat %d (%s). If one of you dies, so does the other.", pb.Seat, pb.Name))
			m.whisper(ctx, pb.ID, fmt.Sprintf("You wake bound to seat %d (%s). If one of you dies, so does the other.", pa.Seat, pa.Name))
		}
	}

	guarded := r.guardedSeat()

	// Wolf attack.
	if raw, ok := r.NightActions[ActionWolfKill]; ok && raw != "" {
		seat, _ := strconv.Atoi(raw)
		if target := r.seatOccupant(seat); target != nil && target.Alive() {
			switch {
			case r.SavedThisNight[target.ID]:
				// antidote
			case target.Seat == guarded && target.Role != RoleSpiritualist:
				// guard
			case target.Role == RoleDoubleFaced:
				// The attack decides the double-faced player's side instead of
				// killing them.
				target.CampShift = CampWolf
				m.whisper(ctx, target.ID, "The wolves came for you in the night. You now stand with them.")
			default:
				r.DeathQueue = append(r.DeathQueue, DeathRecord{PlayerID: target.ID, Cause: CauseWolfKill})
			}
		}
	}

	// Poison ignores the guard and the antidote; it just fails silently on
	// the immune.
	if raw, ok := r.NightActions[ActionWitchPoison]; ok && raw != "" {
		r.Potions = r.Potions.usePoison()
		seat, _ := strconv.Atoi(raw)
		target := r.seatOccupant(seat)
		if target != nil && target.Alive() &&
			target.Role != RoleDoubleFaced && target.Role != RoleSpiritualist {
			var witchID string
			if w := r.playerByRole(RoleWitch); w != nil {
				witchID = w.ID
			}
			r.DeathQueue = append(r.DeathQueue, DeathRecord{PlayerID: target.ID, Cause: CausePoison, KillerID: witchID})
		}
	}

	// Painter disguise.
	if raw, ok := r.NightActions[ActionPainter]; ok && raw != "" {
		seat, _ := strconv.Atoi(raw)
		if target := r.seatOccupant(seat); target != nil && !target.Alive() {
			if painter := r.playerByRole(RolePainter); painter != nil {
				painter.Role = target.Role
				r.PainterDisguise = target.Role
			}
		}
	}

	if guarded != 0 {
		r.LastGuardTarget = guarded
	} else {
		r.LastGuardTarget = 0
	}

	// Tonight's swap replaces the previous one now that targeting is done.
	if raw, ok := r.NightActions[ActionMagician]; ok && raw != "" {
		var a, b int
		fmt.Sscanf(raw, "%d %d", &a, &b)
		r.SeatSwap = []int{a, b}
	} else {
		r.SeatSwap = nil
	}

	died := m.executeDeaths(ctx, r)
	m.announceDawn(ctx, r, died)

	r.NightActions = make(map[ActionKey]string)
	r.SaveCandidates = nil
	r.SavedThisNight = nil
	r.WitchSaveResolved = false

	if m.evaluateWin(ctx, r) {
		return
	}
	if r.HunterPending != "" {
		m.enterHunterRevenge(ctx, r, PhaseDay)
		return
	}
	m.openDay(ctx, r)
}

func (m *Manager) openDay(ctx context.Context, r *Room) {
	r.Phase = PhaseDay
	r.Votes = make(map[string]int)
	r.touch(m.now())
	m.persist(ctx, r)
	m.say(ctx, r, fmt.Sprintf("Day %d. Discuss, then vote with: vote <seat>. A majority exiles; ties exile no one.", r.DayCount))
}

// beginNight runs once a night opens, before any submissions. A hidden wolf
// whose pack is already gone awakens now, so its kill joins the gate; a night
// whose gate is empty would otherwise wait forever, so it resolves at once.
func (m *Manager) beginNight(ctx context.Context, r *Room) {
	m.checkHiddenWolf(ctx, r)
	if r.nightComplete() {
		m.closeNight(ctx, r)
	}
}

// nightReminders whispers the witch her potion state and the guard the seat
// they may not repeat.
func (m *Manager) nightReminders(ctx context.Context, r *Room) {
	if witch := r.playerByRole(RoleWitch); witch != nil {
		state := func(has bool) string {
			if has {
				return "available"
			}
			return "used"
		}
		m.whisper(ctx, witch.ID, fmt.Sprintf("Antidote: %s. Poison: %s.",
			state(r.Potions.hasSave()), state(r.Potions.hasPoison())))
	}
	if guard := r.playerByRole(RoleGuard); guard != nil && r.LastGuardTarget != 0 {
		m.whisper(ctx, guard.ID, fmt.Sprintf(
			"You protected seat %d last night and cannot choose it again tonight.", r.LastGuardTarget))
	}
}

// announceDawn publishes the night's toll without revealing causes.
func (m *Manager) announceDawn(ctx context.Context, r *Room, died []*Player) {
	if len(died) == 0 {
		m.say(ctx, r, "Dawn breaks on a peaceful night. No one died.")
		return
	}
	parts := make([]string, 0, len(died))
	for _, p := range died {
		parts = append(parts, fmt.Sprintf("seat %d (%s)", p.Seat, p.Name))
	}
	m.say(ctx, r, "Dawn breaks. Found dead: "+strings.Join(parts, ", ")+".")
}
