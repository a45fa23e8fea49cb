/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

import (
	"fmt"
)

// Action is a secret night move.
type Action string

const (
	ActionKill Action = "kill"
	ActionSave Action = "save"
)

// JoinMessage is the narrative broadcast alongside a new member.
func JoinMessage(name string) string {
	return fmt.Sprintf(msgJoined, name)
}

// LeaveMessage is the narrative broadcast when a member disconnects.
func LeaveMessage(name string) string {
	return fmt.Sprintf(msgLeft, name)
}

// Start deals roles and moves the room into its first night.
func (r *Room) Start(shuffle ShuffleFunc) error {
	if r.Status != Waiting {
		return ErrAlreadyStarted
	}

	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	roles := Assign(len(r.Players), shuffle)
	for i, p := range r.Players {
		p.Role = roles[i]
		p.Alive = true
	}

	r.Status = Night
	r.DayCount = 1
	r.Kill = ""
	r.Save = ""
	clear(r.Votes)
	r.LastMessage = msgStarted
	r.touch()

	return nil
}

// NightAction records a kill or save. The returned player is the actor;
// ok is false when the action was ignored.
func (r *Room) NightAction(actorID, targetID string, action Action) (Player, bool) {
	if r.Status != Night {
		return Player{}, false
	}

	actor := r.Player(actorID)
	if actor == nil || !actor.Alive {
		return Player{}, false
	}

	switch {
	case action == ActionKill && actor.Role == Vampire:
		r.Kill = targetID
	case action == ActionSave && actor.Role == Doctor:
		r.Save = targetID
	default:
		return Player{}, false
	}

	r.touch()

	return *actor, true
}

// NightReady reports whether every night slot is filled. A slot whose role
// has no living holder counts as filled, but at least one action is needed.
func (r *Room) NightReady() bool {
	if r.Status != Night || (r.Kill == "" && r.Save == "") {
		return false
	}

	return (r.Kill != "" || !r.hasLiving(Vampire)) &&
		(r.Save != "" || !r.hasLiving(Doctor))
}

func (r *Room) hasLiving(role Role) bool {
	for _, p := range r.Players {
		if p.Alive && p.Role == role {
			return true
		}
	}

	return false
}

// NightOutcome describes how a night ended.
type NightOutcome struct {
	Victim *Player
	Saved  bool
}

// ResolveNight applies the pending kill and save and moves the room into day.
func (r *Room) ResolveNight() NightOutcome {
	var outcome NightOutcome

	if r.Status != Night {
		return outcome
	}

	victim := r.Player(r.Kill)
	switch {
	case victim == nil || !victim.Alive:
		r.LastMessage = msgNobodyDied
	case victim.ID == r.Save:
		outcome.Saved = true
		outcome.Victim = victim
		r.LastMessage = fmt.Sprintf(msgSaved, victim.Name)
	default:
		victim.Alive = false
		outcome.Victim = victim
		r.LastMessage = fmt.Sprintf(msgKilled, victim.Name)
	}

	r.Kill = ""
	r.Save = ""
	r.Status = Day
	r.touch()

	return outcome
}

// VoteOutcome describes a completed tally.
type VoteOutcome struct {
	Executed *Player
	Counts   map[string]int
}

// Vote records a ballot during the day. When every living player has voted
// the ballots are tallied, and tallied is true.
func (r *Room) Vote(voterID, targetID string) (outcome VoteOutcome, tallied bool) {
	if r.Status != Day {
		return outcome, false
	}

	voter := r.Player(voterID)
	if voter == nil || !voter.Alive {
		return outcome, false
	}

	r.Votes[voterID] = targetID
	r.touch()

	if !r.ballotsComplete() {
		return outcome, false
	}

	return r.tally(), true
}

// TallyIfComplete runs the tally when the remaining living players have all
// voted, which can become true when a member leaves mid-day.
func (r *Room) TallyIfComplete() (VoteOutcome, bool) {
	if r.Status != Day || len(r.Votes) == 0 || !r.ballotsComplete() {
		return VoteOutcome{}, false
	}

	return r.tally(), true
}

func (r *Room) ballotsComplete() bool {
	alive := r.Alive()
	if len(alive) == 0 {
		return false
	}

	for _, p := range alive {
		if _, ok := r.Votes[p.ID]; !ok {
			return false
		}
	}

	return true
}

func (r *Room) tally() VoteOutcome {
	alive := r.Alive()

	counts := make(map[string]int, len(alive))
	for _, p := range alive {
		counts[p.ID] = 0
	}
	for _, target := range r.Votes {
		if _, ok := counts[target]; ok {
			counts[target]++
		}
	}

	var (
		best    *Player
		top     int
		leaders int
	)
	for _, p := range alive {
		n := counts[p.ID]
		switch {
		case n > top:
			top = n
			best = p
			leaders = 1
		case n == top && n > 0:
			leaders++
		}
	}

	outcome := VoteOutcome{Counts: counts}

	if best != nil && leaders == 1 {
		best.Alive = false
		r.LastMessage = fmt.Sprintf(msgExecuted, best.Name, best.Role)
		outcome.Executed = best
	} else {
		r.LastMessage = msgTie
	}

	clear(r.Votes)
	r.DayCount++
	r.Status = Night

	return outcome
}
