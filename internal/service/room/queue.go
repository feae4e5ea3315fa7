package room

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/domain"
	"github.com/dag10/DJ-sub000/internal/room"
)

type AddToQueueParams struct {
	Conn   *room.Connection
	SongId string
}

type AddToQueueResponse struct {
	Added domain.QueuedSong
}

// AddToQueue appends a known song to the connection's queue.
func (s *service) AddToQueue(ctx context.Context, params *AddToQueueParams) (AddToQueueResponse, error) {
	if !params.Conn.Authenticated() {
		return AddToQueueResponse{}, room.ErrNotAuthenticated
	}
	if params.Conn.Queue().Len() >= s.queueLimit {
		return AddToQueueResponse{}, ErrQueueLimitReached
	}

	stored, err := s.store.GetSong(ctx, params.SongId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get song", "song_id", params.SongId, "error", err)
		return AddToQueueResponse{}, err
	}
	song := songFromStored(stored)

	if r := params.Conn.Room(); r != nil {
		ns, err := r.QueueAppend(params.Conn, song)
		if err != nil {
			return AddToQueueResponse{}, err
		}
		s.publish(r, ns)
	} else {
		entry := params.Conn.Queue().Append(song, params.Conn.User().Id)
		if err := params.Conn.Sender().Send(room.MsgQueueSong, *entry); err != nil {
			s.logger.DebugContext(ctx, "failed to send queue update", "conn_id", params.Conn.Id, "error", err)
		}
	}
	s.saveQueue(ctx, params.Conn)

	tail := params.Conn.Queue().Entries()
	return AddToQueueResponse{Added: tail[len(tail)-1]}, nil
}

type SetQueueOrderParams struct {
	Conn    *room.Connection
	EntryId string
	Order   int
}

func (s *service) SetQueueOrder(ctx context.Context, params *SetQueueOrderParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.QueueSetOrder(params.Conn, params.EntryId, params.Order)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to reorder queue", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)
	s.saveQueue(ctx, params.Conn)

	return nil
}

type EscalateParams struct {
	Conn    *room.Connection
	EntryId string
}

func (s *service) Escalate(ctx context.Context, params *EscalateParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.QueueEscalate(params.Conn, params.EntryId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to escalate queue entry", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)
	s.saveQueue(ctx, params.Conn)

	return nil
}

type RemoveFromQueueParams struct {
	Conn    *room.Connection
	EntryId string
}

func (s *service) RemoveFromQueue(ctx context.Context, params *RemoveFromQueueParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.QueueRemove(params.Conn, params.EntryId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to remove queue entry", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)
	s.saveQueue(ctx, params.Conn)

	return nil
}
