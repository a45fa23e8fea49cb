/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

import (
	"crypto/rand"
	"sort"
	"sync"
)

const (
	roomIDPrefix  = "VG"
	roomIDLength  = 6
	roomIDLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Registry maps room IDs to rooms. It is safe for concurrent use; the rooms
// it hands out are not.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	newID func() string
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		newID: newRoomID,
	}
}

// newRoomID returns "VG" followed by six random uppercase alphanumerics.
func newRoomID() string {
	buf := make([]byte, roomIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, roomIDLength)
	for i := range out {
		out[i] = roomIDLetters[int(buf[i])%len(roomIDLetters)]
	}

	return roomIDPrefix + string(out)
}

// Create registers a new waiting room under a fresh, unused ID.
func (reg *Registry) Create(name, host string, first Player) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := reg.newID()
	for {
		if _, exists := reg.rooms[id]; !exists {
			break
		}
		id = reg.newID()
	}

	room := NewRoom(id, name, host, first)
	reg.rooms[id] = room

	return room
}

func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[id]

	return room, ok
}

func (reg *Registry) Remove(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.rooms, id)
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.rooms)
}

// IDs returns the registered room IDs, sorted.
func (reg *Registry) IDs() []string {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	reg.mu.RUnlock()

	sort.Strings(ids)

	return ids
}
