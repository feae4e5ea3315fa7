package room

import (
	"log/slog"

	"github.com/dag10/DJ-sub000/internal/room"
)

// publisher resolves notification recipients and writes to their
// transports. It runs outside the room lock.
type publisher struct {
	room   *room.Room
	logger *slog.Logger
}

func (p publisher) Publish(ns []room.Notification) {
	for _, n := range ns {
		conns := n.Conns
		if conns == nil {
			conns = p.room.Connections()
		}

		for _, conn := range conns {
			if conn == n.Exclude {
				continue
			}
			if err := conn.Sender().Send(n.Type, n.Data); err != nil {
				p.logger.Debug("failed to send notification",
					"conn_id", conn.Id,
					"type", n.Type,
					"error", err,
				)
			}
			if n.CloseAfter {
				conn.Sender().Close()
			}
		}
	}
}

// publish delivers notifications produced by a command against the given
// room.
func (s *service) publish(r *room.Room, ns []room.Notification) {
	if r == nil || len(ns) == 0 {
		return
	}
	publisher{room: r, logger: s.logger}.Publish(ns)
}
