/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

import (
	"fmt"
	"math/rand/v2"
)

// Role is the secret identity handed to each player at game start.
type Role int

const (
	RoleNone Role = iota
	Vampire
	Doctor
	Villager
)

func (r Role) String() string {
	switch r {
	case Vampire:
		return "Vampire"
	case Doctor:
		return "Doctor"
	case Villager:
		return "Villager"
	default:
		return ""
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*r = RoleNone
	case "Vampire":
		*r = Vampire
	case "Doctor":
		*r = Doctor
	case "Villager":
		*r = Villager
	default:
		return fmt.Errorf("unknown role %q", text)
	}

	return nil
}

// ShuffleFunc has the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// DefaultShuffle is a uniform shuffle backed by math/rand/v2.
var DefaultShuffle ShuffleFunc = rand.Shuffle

// vampireCount follows the fixed table: 1 below five players,
// 2 for five to seven, 3 above seven.
func vampireCount(players int) int {
	switch {
	case players > 7:
		return 3
	case players >= 5:
		return 2
	default:
		return 1
	}
}

// Assign returns one role per player, shuffled.
func Assign(count int, shuffle ShuffleFunc) []Role {
	if count <= 0 {
		return []Role{}
	}

	roles := make([]Role, 0, count)
	for range vampireCount(count) {
		roles = append(roles, Vampire)
	}
	roles = append(roles, Doctor)
	for len(roles) < count {
		roles = append(roles, Villager)
	}

	// A lone player still gets exactly one role.
	roles = roles[:count]

	if shuffle == nil {
		shuffle = DefaultShuffle
	}
	shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	return roles
}
