package domain

import (
	"sort"

	"github.com/google/uuid"
)

type QueuedSong struct {
	Id      string `json:"id"`
	Song    Song   `json:"song"`
	UserId  string `json:"user_id"`
	Order   int    `json:"order"`
	Playing bool   `json:"playing"`
}

// Queue is one user's ordered list of pending songs. Orders are 1-based and
// contiguous: after any mutation the set of orders is exactly {1..N}.
// The queue is not safe for concurrent use; callers serialize through the
// owning room.
type Queue struct {
	entries []*QueuedSong
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Len() int {
	return len(q.entries)
}

// Append adds a song at the tail and returns the new entry.
func (q *Queue) Append(song Song, userId string) *QueuedSong {
	entry := &QueuedSong{
		Id:     uuid.NewString(),
		Song:   song,
		UserId: userId,
		Order:  len(q.entries) + 1,
	}
	q.entries = append(q.entries, entry)
	return entry
}

// Head returns the entry at order 1, or nil if the queue is empty.
func (q *Queue) Head() *QueuedSong {
	for _, entry := range q.entries {
		if entry.Order == 1 {
			return entry
		}
	}
	return nil
}

// PlayingEntry returns the entry currently broadcasting, if any.
func (q *Queue) PlayingEntry() *QueuedSong {
	for _, entry := range q.entries {
		if entry.Playing {
			return entry
		}
	}
	return nil
}

func (q *Queue) Get(id string) *QueuedSong {
	for _, entry := range q.entries {
		if entry.Id == id {
			return entry
		}
	}
	return nil
}

// UpdateOrder moves the entry to newOrder, shifting every entry between the
// old and new position by one so orders stay contiguous. The shift and the
// set happen inside one call, so no reader ever observes a gap.
func (q *Queue) UpdateOrder(id string, newOrder int) error {
	entry := q.Get(id)
	if entry == nil {
		return ErrSongNotQueued
	}
	if newOrder < 1 || newOrder > len(q.entries) {
		return ErrInvalidOrder
	}

	oldOrder := entry.Order
	if newOrder == oldOrder {
		return nil
	}

	if newOrder < oldOrder {
		// moving toward the front: [newOrder, oldOrder) shift back
		for _, other := range q.entries {
			if other != entry && other.Order >= newOrder && other.Order < oldOrder {
				other.Order++
			}
		}
	} else {
		// moving toward the back: (oldOrder, newOrder] shift forward
		for _, other := range q.entries {
			if other != entry && other.Order > oldOrder && other.Order <= newOrder {
				other.Order--
			}
		}
	}
	entry.Order = newOrder

	return nil
}

// Escalate moves the entry to the front of the queue.
func (q *Queue) Escalate(id string) error {
	return q.UpdateOrder(id, 1)
}

// Rotate demotes the head entry to the tail. The song stays queued so it
// comes around again later in the owner's rotation.
func (q *Queue) Rotate() {
	head := q.Head()
	if head == nil {
		return
	}
	q.UpdateOrder(head.Id, len(q.entries))
}

// Remove deletes the entry and closes the gap it leaves behind.
func (q *Queue) Remove(id string) error {
	entry := q.Get(id)
	if entry == nil {
		return ErrSongNotQueued
	}

	removed := entry.Order
	for i, other := range q.entries {
		if other == entry {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	for _, other := range q.entries {
		if other.Order > removed {
			other.Order--
		}
	}

	return nil
}

// Entries returns a copy of the queue sorted by order.
func (q *Queue) Entries() []QueuedSong {
	entries := make([]QueuedSong, 0, len(q.entries))
	for _, entry := range q.entries {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})
	return entries
}
