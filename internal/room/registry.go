package room

import (
	"sync"

	"golang.org/x/exp/maps"
)

// Registry is the process-wide lookup of rooms by short identifier. It is
// populated at startup from persistence and mutated only by administrative
// operations, never on the hot path.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

func (g *Registry) Add(r *Room) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rooms[r.Shortname]; ok {
		return ErrRoomExists
	}
	g.rooms[r.Shortname] = r
	return nil
}

func (g *Registry) Remove(shortname string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[shortname]
	if !ok {
		return nil, ErrRoomNotFound
	}
	delete(g.rooms, shortname)
	return r, nil
}

func (g *Registry) Get(shortname string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.rooms[shortname]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (g *Registry) List() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Values(g.rooms)
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
