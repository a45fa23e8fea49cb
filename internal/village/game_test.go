/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// newTestRoom returns a waiting room with players p1..pn.
func newTestRoom(t *testing.T, n int) *Room {
	t.Helper()

	room := NewRoom("VGTEST01", "Test", "p1", Player{ID: "p1", Name: "Player 1"})
	for i := 2; i <= n; i++ {
		if err := room.Join(Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)}); err != nil {
			t.Fatalf("join p%d: %v", i, err)
		}
	}

	return room
}

// startedRoom deals roles without shuffling, so with n < 5 players
// p1 is the vampire, p2 the doctor, and the rest villagers.
func startedRoom(t *testing.T, n int) *Room {
	t.Helper()

	room := newTestRoom(t, n)
	if err := room.Start(noShuffle); err != nil {
		t.Fatalf("start: %v", err)
	}

	return room
}

func TestNewRoom(t *testing.T) {
	room := NewRoom("VGABCDEF", "Crypt", "Ana", Player{ID: "a", Name: "Ana", Role: Vampire})

	if room.Status != Waiting {
		t.Errorf("status = %v, want Waiting", room.Status)
	}
	if room.DayCount != 0 {
		t.Errorf("day count = %d, want 0", room.DayCount)
	}
	if len(room.Players) != 1 || room.Players[0].Role != RoleNone || !room.Players[0].Alive {
		t.Errorf("unexpected first player %+v", room.Players)
	}
	if !strings.Contains(room.LastMessage, "Crypt") {
		t.Errorf("narrative %q does not name the room", room.LastMessage)
	}
}

func TestJoin(t *testing.T) {
	room := newTestRoom(t, 3)

	if err := room.Join(Player{ID: "p2", Name: "again"}); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("duplicate join: got %v, want ErrAlreadyJoined", err)
	}
	if len(room.Players) != 3 {
		t.Errorf("duplicate join changed player count to %d", len(room.Players))
	}

	for i, p := range room.Players {
		if want := fmt.Sprintf("p%d", i+1); p.ID != want {
			t.Errorf("player %d is %s, want %s (join order)", i, p.ID, want)
		}
	}
}

func TestJoinFullRoom(t *testing.T) {
	room := newTestRoom(t, MaxPlayers)

	err := room.Join(Player{ID: "late", Name: "Late"})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("got %v, want ErrRoomFull", err)
	}
	if len(room.Players) != MaxPlayers {
		t.Errorf("player count = %d, want %d", len(room.Players), MaxPlayers)
	}
	if room.Player("late") != nil {
		t.Error("rejected player was added")
	}

	if err := room.Join(Player{ID: "p2", Name: "again"}); !errors.Is(err, ErrRoomFull) {
		t.Errorf("member rejoining a full room: got %v, want ErrRoomFull", err)
	}
}

func TestJoinAfterStart(t *testing.T) {
	room := startedRoom(t, 3)

	if err := room.Join(Player{ID: "late", Name: "Late"}); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("got %v, want ErrGameInProgress", err)
	}
}

func TestStart(t *testing.T) {
	t.Run("one player is rejected", func(t *testing.T) {
		room := newTestRoom(t, 1)

		if err := room.Start(noShuffle); !errors.Is(err, ErrNotEnoughPlayers) {
			t.Fatalf("got %v, want ErrNotEnoughPlayers", err)
		}
		if room.Status != Waiting || room.DayCount != 0 {
			t.Errorf("rejected start changed state: %v day %d", room.Status, room.DayCount)
		}
		if room.Players[0].Role != RoleNone {
			t.Error("rejected start assigned a role")
		}
	})

	t.Run("two players start the first night", func(t *testing.T) {
		room := newTestRoom(t, 2)

		if err := room.Start(nil); err != nil {
			t.Fatal(err)
		}
		if room.Status != Night {
			t.Errorf("status = %v, want Night", room.Status)
		}
		if room.DayCount != 1 {
			t.Errorf("day count = %d, want 1", room.DayCount)
		}
		for _, p := range room.Players {
			if p.Role == RoleNone || !p.Alive {
				t.Errorf("player %s not dealt in: %+v", p.ID, p)
			}
		}
	})

	t.Run("roles are dealt only once", func(t *testing.T) {
		room := startedRoom(t, 4)
		before := room.Snapshot()

		if err := room.Start(DefaultShuffle); !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("got %v, want ErrAlreadyStarted", err)
		}
		for i, p := range room.Players {
			if p.Role != before.Players[i].Role {
				t.Errorf("player %s role changed from %v to %v", p.ID, before.Players[i].Role, p.Role)
			}
		}
	})
}

func TestNightActionGating(t *testing.T) {
	tests := []struct {
		name   string
		actor  string
		action Action
		ok     bool
	}{
		{"vampire kills", "p1", ActionKill, true},
		{"doctor saves", "p2", ActionSave, true},
		{"vampire cannot save", "p1", ActionSave, false},
		{"doctor cannot kill", "p2", ActionKill, false},
		{"villager cannot kill", "p3", ActionKill, false},
		{"unknown actor", "ghost", ActionKill, false},
		{"unknown action", "p1", Action("bite"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			room := startedRoom(t, 4)

			actor, ok := room.NightAction(tc.actor, "p4", tc.action)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && actor.ID != tc.actor {
				t.Errorf("actor = %s, want %s", actor.ID, tc.actor)
			}
			if !ok && (room.Kill != "" || room.Save != "") {
				t.Errorf("ignored action changed slots: kill=%q save=%q", room.Kill, room.Save)
			}
		})
	}
}

func TestNightActionOutsideNight(t *testing.T) {
	room := newTestRoom(t, 3)

	if _, ok := room.NightAction("p1", "p2", ActionKill); ok {
		t.Error("action accepted while waiting")
	}

	room = startedRoom(t, 3)
	room.Status = Day
	if _, ok := room.NightAction("p1", "p2", ActionKill); ok {
		t.Error("action accepted during the day")
	}
}

func TestNightActionLastWriteWins(t *testing.T) {
	room := startedRoom(t, 4)

	room.NightAction("p1", "p3", ActionKill)
	room.NightAction("p1", "p4", ActionKill)

	if room.Kill != "p4" {
		t.Errorf("kill = %q, want p4", room.Kill)
	}
	if room.NightReady() {
		t.Error("night ready without a save")
	}

	room.NightAction("p2", "p3", ActionSave)
	if !room.NightReady() {
		t.Error("night not ready with both slots set")
	}
}

func TestDeadActorIgnored(t *testing.T) {
	room := startedRoom(t, 4)
	room.Player("p2").Alive = false

	if _, ok := room.NightAction("p2", "p3", ActionSave); ok {
		t.Error("dead doctor's save was accepted")
	}
}

func TestNightReadyWithoutLivingDoctor(t *testing.T) {
	room := startedRoom(t, 4)

	room.NightAction("p1", "p2", ActionKill)
	room.NightAction("p2", "p3", ActionSave)
	room.ResolveNight()
	if room.Player("p2").Alive {
		t.Fatal("doctor survived the first night")
	}

	for _, id := range []string{"p1", "p3", "p4"} {
		room.Vote(id, "p4")
	}
	if room.Status != Night || room.DayCount != 2 {
		t.Fatalf("status = %v day %d, want Night 2", room.Status, room.DayCount)
	}

	if room.NightReady() {
		t.Error("night ready before any action")
	}

	if _, ok := room.NightAction("p2", "p3", ActionSave); ok {
		t.Error("dead doctor's save was accepted")
	}

	room.NightAction("p1", "p3", ActionKill)
	if !room.NightReady() {
		t.Error("night not ready after the kill with no living doctor")
	}
}

func TestNightReadyWithoutLivingVampire(t *testing.T) {
	room := startedRoom(t, 4)
	room.Player("p1").Alive = false

	room.NightAction("p2", "p3", ActionSave)
	if !room.NightReady() {
		t.Error("night not ready after the save with no living vampire")
	}
}

func TestResolveNight(t *testing.T) {
	t.Run("save matches kill", func(t *testing.T) {
		room := startedRoom(t, 4)
		room.NightAction("p1", "p3", ActionKill)
		room.NightAction("p2", "p3", ActionSave)

		outcome := room.ResolveNight()

		if !room.Player("p3").Alive {
			t.Error("saved player died")
		}
		if !outcome.Saved || outcome.Victim == nil || outcome.Victim.ID != "p3" {
			t.Errorf("unexpected outcome %+v", outcome)
		}
		if !strings.Contains(room.LastMessage, "saved") || !strings.Contains(room.LastMessage, "Player 3") {
			t.Errorf("narrative %q does not report the save", room.LastMessage)
		}
	})

	t.Run("save misses kill", func(t *testing.T) {
		room := startedRoom(t, 4)
		room.NightAction("p1", "p3", ActionKill)
		room.NightAction("p2", "p4", ActionSave)

		outcome := room.ResolveNight()

		if room.Player("p3").Alive {
			t.Error("victim survived")
		}
		if outcome.Saved || outcome.Victim == nil || outcome.Victim.ID != "p3" {
			t.Errorf("unexpected outcome %+v", outcome)
		}
		if !strings.Contains(room.LastMessage, "killed") || !strings.Contains(room.LastMessage, "Player 3") {
			t.Errorf("narrative %q does not report the death", room.LastMessage)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		room := startedRoom(t, 4)
		room.NightAction("p1", "ghost", ActionKill)
		room.NightAction("p2", "p4", ActionSave)

		outcome := room.ResolveNight()

		if outcome.Victim != nil {
			t.Errorf("unexpected victim %+v", outcome.Victim)
		}
		if room.LastMessage != msgNobodyDied {
			t.Errorf("narrative = %q, want %q", room.LastMessage, msgNobodyDied)
		}
		if len(room.Alive()) != 4 {
			t.Error("someone died")
		}
	})

	t.Run("victim left during the delay", func(t *testing.T) {
		room := startedRoom(t, 4)
		room.NightAction("p1", "p3", ActionKill)
		room.NightAction("p2", "p4", ActionSave)
		room.Leave("p3")

		room.ResolveNight()

		if room.LastMessage != msgNobodyDied {
			t.Errorf("narrative = %q, want %q", room.LastMessage, msgNobodyDied)
		}
	})

	t.Run("slots are cleared and day begins", func(t *testing.T) {
		room := startedRoom(t, 4)
		room.NightAction("p1", "p3", ActionKill)
		room.NightAction("p2", "p4", ActionSave)

		room.ResolveNight()

		if room.Status != Day {
			t.Errorf("status = %v, want Day", room.Status)
		}
		if room.Kill != "" || room.Save != "" {
			t.Errorf("slots not cleared: kill=%q save=%q", room.Kill, room.Save)
		}
		if room.DayCount != 1 {
			t.Errorf("day count = %d, want 1", room.DayCount)
		}
	})

	t.Run("only during the night", func(t *testing.T) {
		room := newTestRoom(t, 3)
		room.ResolveNight()

		if room.Status != Waiting {
			t.Errorf("status = %v, want Waiting", room.Status)
		}
	})
}

// dayRoom returns a started room already in its first day.
func dayRoom(t *testing.T, n int) *Room {
	t.Helper()

	room := startedRoom(t, n)
	room.ResolveNight()
	if room.Status != Day {
		t.Fatalf("status = %v, want Day", room.Status)
	}

	return room
}

func TestVoteMajority(t *testing.T) {
	room := dayRoom(t, 3)

	if _, tallied := room.Vote("p1", "p3"); tallied {
		t.Fatal("tallied after one vote")
	}
	if _, tallied := room.Vote("p2", "p3"); tallied {
		t.Fatal("tallied after two votes")
	}

	outcome, tallied := room.Vote("p3", "p2")
	if !tallied {
		t.Fatal("not tallied after every living player voted")
	}
	if outcome.Executed == nil || outcome.Executed.ID != "p3" {
		t.Fatalf("executed %+v, want p3", outcome.Executed)
	}
	if outcome.Counts["p3"] != 2 || outcome.Counts["p2"] != 1 {
		t.Errorf("counts = %v", outcome.Counts)
	}
	if room.Player("p3").Alive {
		t.Error("executed player is alive")
	}
	if !strings.Contains(room.LastMessage, "Player 3") || !strings.Contains(room.LastMessage, "Villager") {
		t.Errorf("narrative %q does not reveal name and role", room.LastMessage)
	}
	if room.Status != Night || room.DayCount != 2 {
		t.Errorf("status %v day %d, want Night day 2", room.Status, room.DayCount)
	}
	if len(room.Votes) != 0 {
		t.Errorf("votes not cleared: %v", room.Votes)
	}
}

func TestVoteMissingVoterNeverTallies(t *testing.T) {
	room := dayRoom(t, 3)

	room.Vote("p1", "p3")
	if _, tallied := room.Vote("p2", "p1"); tallied {
		t.Fatal("tallied with a voter missing")
	}
	if room.Status != Day {
		t.Errorf("status = %v, want Day", room.Status)
	}
	if len(room.Votes) != 2 {
		t.Errorf("votes = %v, want 2 ballots", room.Votes)
	}
}

func TestVoteOverwrite(t *testing.T) {
	room := dayRoom(t, 3)

	room.Vote("p1", "p2")
	if _, tallied := room.Vote("p1", "p3"); tallied {
		t.Fatal("a repeated voter triggered the tally")
	}
	if len(room.Votes) != 1 || room.Votes["p1"] != "p3" {
		t.Errorf("votes = %v, want p1 -> p3 only", room.Votes)
	}
}

func TestVoteTie(t *testing.T) {
	room := dayRoom(t, 4)

	room.Vote("p1", "p3")
	room.Vote("p2", "p4")
	room.Vote("p3", "p4")
	outcome, tallied := room.Vote("p4", "p3")

	if !tallied {
		t.Fatal("not tallied")
	}
	if outcome.Executed != nil {
		t.Errorf("tie executed %s", outcome.Executed.ID)
	}
	if room.LastMessage != msgTie {
		t.Errorf("narrative = %q, want %q", room.LastMessage, msgTie)
	}
	if len(room.Alive()) != 4 {
		t.Error("someone died on a tie")
	}
	if room.Status != Night || room.DayCount != 2 {
		t.Errorf("status %v day %d, want Night day 2", room.Status, room.DayCount)
	}
}

func TestVoteForUnknownTargetsIsNeutral(t *testing.T) {
	room := dayRoom(t, 2)

	room.Vote("p1", "ghost")
	outcome, tallied := room.Vote("p2", "nobody")

	if !tallied {
		t.Fatal("not tallied")
	}
	if outcome.Executed != nil {
		t.Errorf("executed %s", outcome.Executed.ID)
	}
	if room.LastMessage != msgTie {
		t.Errorf("narrative = %q", room.LastMessage)
	}
}

func TestVoteIgnored(t *testing.T) {
	room := startedRoom(t, 3)
	if _, tallied := room.Vote("p1", "p2"); tallied || len(room.Votes) != 0 {
		t.Error("vote accepted during the night")
	}

	room = dayRoom(t, 4)
	room.Player("p4").Alive = false

	room.Vote("p4", "p1")
	room.Vote("ghost", "p1")
	if len(room.Votes) != 0 {
		t.Errorf("votes from dead or unknown voters recorded: %v", room.Votes)
	}

	room.Vote("p1", "p3")
	room.Vote("p2", "p3")
	if _, tallied := room.Vote("p3", "p1"); !tallied {
		t.Error("dead player blocked the tally")
	}
}

func TestTallyAfterLeave(t *testing.T) {
	room := dayRoom(t, 4)

	room.Vote("p1", "p3")
	room.Vote("p2", "p3")
	room.Vote("p4", "p3")

	if _, tallied := room.TallyIfComplete(); tallied {
		t.Fatal("tallied with p3 still to vote")
	}

	room.Leave("p3")

	outcome, tallied := room.TallyIfComplete()
	if !tallied {
		t.Fatal("no tally once the last holdout left")
	}
	// Every ballot named the player who left.
	if outcome.Executed != nil {
		t.Errorf("executed %s", outcome.Executed.ID)
	}
}

func TestLeave(t *testing.T) {
	room := dayRoom(t, 3)
	room.Vote("p2", "p1")

	left, ok := room.Leave("p2")
	if !ok || left.ID != "p2" {
		t.Fatalf("Leave(p2) = %+v, %v", left, ok)
	}
	if room.Player("p2") != nil {
		t.Error("player still present")
	}
	if _, voted := room.Votes["p2"]; voted {
		t.Error("departed player's vote kept")
	}

	if _, ok := room.Leave("p2"); ok {
		t.Error("second leave reported success")
	}

	room.Leave("p1")
	room.Leave("p3")
	if !room.Empty() {
		t.Error("room not empty")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	room := dayRoom(t, 3)
	room.Vote("p1", "p2")

	state := room.Snapshot()
	room.Players[0].Name = "changed"
	room.Votes["p2"] = "p1"

	if state.Players[0].Name != "Player 1" {
		t.Error("snapshot shares players with the room")
	}
	if len(state.Votes) != 1 {
		t.Error("snapshot shares votes with the room")
	}
	if state.Kill != nil || state.Save != nil {
		t.Error("empty slots should be nil")
	}
}
