// Package wsrouter dispatches websocket messages of the form
// {"type": ..., "payload": ...} to per-type handlers.
package wsrouter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
)

var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// ErrorFunc is invoked when a handler fails or a message has no route.
// Replies to the client go through it; the router never writes to the
// connection itself.
type ErrorFunc func(ctx context.Context, err error)

type WSRouter struct {
	routes  map[string]HandlerFunc
	onError ErrorFunc
}

func New(onError ErrorFunc) *WSRouter {
	return &WSRouter{
		routes:  make(map[string]HandlerFunc),
		onError: onError,
	}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// ServeConn reads messages until the connection errors, routing each to
// its handler. The message type is available to handlers via
// GetMessageTypeFromCtx.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, exists := r.routes[msg.Type]
		if !exists {
			r.onError(msgCtx, ErrUnknownMessageType)
			continue
		}

		if err := handler(msgCtx, msg.Payload); err != nil {
			r.onError(msgCtx, err)
		}
	}
}
