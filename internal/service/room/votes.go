package room

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/room"
)

type VoteParams struct {
	Conn *room.Connection
}

func (s *service) PostLike(ctx context.Context, params *VoteParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.PostLike(params.Conn)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to post like", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)

	return nil
}

func (s *service) RemoveLike(ctx context.Context, params *VoteParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	s.publish(r, r.RemoveLike(params.Conn))

	return nil
}

func (s *service) PostSkipVote(ctx context.Context, params *VoteParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns, err := r.PostSkipVote(params.Conn)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to post skip vote", "conn_id", params.Conn.Id, "error", err)
		return err
	}
	s.publish(r, ns)

	return nil
}

func (s *service) RemoveSkipVote(ctx context.Context, params *VoteParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	s.publish(r, r.RemoveSkipVote(params.Conn))

	return nil
}
