package room

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/room"
)

type ConnectParams struct {
	Sender room.Sender
}

type ConnectResponse struct {
	Conn *room.Connection
}

// Connect wraps a live transport in a Connection. The connection joins a
// room and authenticates in separate steps.
func (s *service) Connect(ctx context.Context, params *ConnectParams) (ConnectResponse, error) {
	conn := room.NewConnection(params.Sender)
	s.logger.DebugContext(ctx, "connection opened", "conn_id", conn.Id)
	return ConnectResponse{Conn: conn}, nil
}

type JoinRoomParams struct {
	Conn      *room.Connection
	Shortname string
}

type JoinRoomResponse struct {
	Room *room.Room
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if params.Conn.Room() != nil {
		return JoinRoomResponse{}, ErrAlreadyInRoom
	}

	r, err := s.registry.Get(params.Shortname)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get room", "shortname", params.Shortname, "error", err)
		return JoinRoomResponse{}, err
	}

	ns := r.AddConnection(params.Conn)
	s.publish(r, ns)

	return JoinRoomResponse{Room: r}, nil
}

type LeaveRoomParams struct {
	Conn *room.Connection
}

func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	r := params.Conn.Room()
	if r == nil {
		return ErrNotInRoom
	}

	ns := r.RemoveConnection(params.Conn)
	s.publish(r, ns)
	s.saveQueue(ctx, params.Conn)

	return nil
}

type DisconnectParams struct {
	Conn *room.Connection
}

// Disconnect is the transport-closed path: leave the room if joined and
// persist the queue.
func (s *service) Disconnect(ctx context.Context, params *DisconnectParams) {
	if r := params.Conn.Room(); r != nil {
		ns := r.RemoveConnection(params.Conn)
		s.publish(r, ns)
	}
	s.saveQueue(ctx, params.Conn)
	s.logger.DebugContext(ctx, "connection closed", "conn_id", params.Conn.Id)
}
