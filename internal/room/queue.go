package room

import (
	"github.com/dag10/DJ-sub000/internal/domain"
)

// Queue mutations run under the room lock because the rotation reads
// queues during advancement. Every mutation pushes the owner's full queue
// back so the client view stays consistent.

func (r *Room) QueueAppend(conn *Connection, song domain.Song) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !conn.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	entry := conn.Queue().Append(song, conn.User().Id)
	return []Notification{
		toConn(conn, MsgQueueSong, *entry),
		toConn(conn, MsgQueue, conn.Queue().Entries()),
	}, nil
}

func (r *Room) QueueSetOrder(conn *Connection, entryId string, order int) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !conn.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := conn.Queue().UpdateOrder(entryId, order); err != nil {
		return nil, err
	}

	return []Notification{toConn(conn, MsgQueue, conn.Queue().Entries())}, nil
}

func (r *Room) QueueEscalate(conn *Connection, entryId string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !conn.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := conn.Queue().Escalate(entryId); err != nil {
		return nil, err
	}

	return []Notification{toConn(conn, MsgQueue, conn.Queue().Entries())}, nil
}

func (r *Room) QueueRemove(conn *Connection, entryId string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !conn.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := conn.Queue().Remove(entryId); err != nil {
		return nil, err
	}

	return []Notification{
		toConn(conn, MsgQueueSongRm, entryId),
		toConn(conn, MsgQueue, conn.Queue().Entries()),
	}, nil
}
