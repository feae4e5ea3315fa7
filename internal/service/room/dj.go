package room

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/room"
)

type BeginDJParams struct {
	Conn *room.Connection
}

func (s *service) BeginDJ(ctx context.Context, params *BeginDJParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.MakeDJ(params.Conn)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to begin dj", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)

	return nil
}

type EndDJParams struct {
	Conn *room.Connection
}

func (s *service) EndDJ(ctx context.Context, params *EndDJParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.EndDJ(params.Conn)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to end dj", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)

	return nil
}

type SkipParams struct {
	Conn *room.Connection
}

// Skip lets the current DJ end their own song early.
func (s *service) Skip(ctx context.Context, params *SkipParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.Skip(params.Conn)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to skip", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)

	return nil
}
