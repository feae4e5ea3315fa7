package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dag10/DJ-sub000/internal/room"
	service "github.com/dag10/DJ-sub000/internal/service/room"
	"github.com/dag10/DJ-sub000/pkg/ctxlogger"
	"github.com/dag10/DJ-sub000/pkg/wsrouter"
)

// serveWS upgrades the request and runs the command loop until the
// client goes away.
func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	sender := newWSSender(conn)
	defer sender.Close()

	connectResp, err := c.roomService.Connect(r.Context(), &service.ConnectParams{Sender: sender})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to open connection", "error", err)
		return
	}

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", connectResp.Conn.Id))
	defer c.roomService.Disconnect(context.WithoutCancel(ctx), &service.DisconnectParams{Conn: connectResp.Conn})

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	sess := &wsSession{c: c, conn: connectResp.Conn, sender: sender}
	if err := sess.router().ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection read loop ended", "error", err)
	}
}

// wsSession binds the command handlers to one connection.
type wsSession struct {
	c      *controller
	conn   *room.Connection
	sender *wsSender
}

func (s *wsSession) router() *wsrouter.WSRouter {
	mux := wsrouter.New(s.replyError)

	mux.Handle("auth", handle(s.c, s.handleAuth))
	mux.Handle("room:join", handle(s.c, s.handleJoinRoom))
	mux.Handle("room:leave", handle(s.c, s.handleLeaveRoom))

	// dj rotation
	mux.Handle("room:dj:begin", handle(s.c, s.handleBeginDJ))
	mux.Handle("room:dj:end", handle(s.c, s.handleEndDJ))
	mux.Handle("skip", handle(s.c, s.handleSkip))

	// votes
	mux.Handle("like", handle(s.c, s.handleLike))
	mux.Handle("like:remove", handle(s.c, s.handleRemoveLike))
	mux.Handle("skipvote", handle(s.c, s.handleSkipVote))
	mux.Handle("skipvote:remove", handle(s.c, s.handleRemoveSkipVote))

	// queue
	mux.Handle("queue:add", handle(s.c, s.handleAddToQueue))
	mux.Handle("queue:change:order", handle(s.c, s.handleSetQueueOrder))
	mux.Handle("queue:change:escalate", handle(s.c, s.handleEscalate))
	mux.Handle("queue:remove", handle(s.c, s.handleRemoveFromQueue))

	return mux
}

// replyError reports a failed command back to this client only.
func (s *wsSession) replyError(ctx context.Context, err error) {
	s.c.logger.DebugContext(ctx, "command failed",
		"command", wsrouter.GetMessageTypeFromCtx(ctx),
		"error", err,
	)
	s.sender.Send("error", map[string]any{
		"command": wsrouter.GetMessageTypeFromCtx(ctx),
		"error":   err.Error(),
	})
}
