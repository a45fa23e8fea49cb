/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

// Faction is one side of the game.
type Faction int

const (
	NoFaction Faction = iota
	Villagers
	Vampires
)

func (f Faction) String() string {
	switch f {
	case Villagers:
		return "villagers"
	case Vampires:
		return "vampires"
	default:
		return "none"
	}
}

// EvaluateWin ends the game when one faction has prevailed. Vampires win
// ties.
func EvaluateWin(r *Room) (Faction, bool) {
	if !r.InProgress() {
		return NoFaction, false
	}

	var vampires, others int
	for _, p := range r.Alive() {
		if p.Role == Vampire {
			vampires++
		} else {
			others++
		}
	}

	var winner Faction
	switch {
	case vampires == 0:
		winner = Villagers
		r.LastMessage = msgVillagersWin
	case vampires >= others:
		winner = Vampires
		r.LastMessage = msgVampiresWin
	default:
		return NoFaction, false
	}

	r.Status = Ended
	r.Kill = ""
	r.Save = ""
	clear(r.Votes)

	return winner, true
}
