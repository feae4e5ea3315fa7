package controller

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// sendBuffer bounds how far a slow client may fall behind before its
	// connection is dropped.
	sendBuffer = 64
)

var errSenderClosed = errors.New("sender closed")

// Output is the wire form of every server-to-client message.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// wsSender serializes all writes to one websocket connection through a
// single pump goroutine. Room notifications arrive from many goroutines;
// the pump is the only writer.
type wsSender struct {
	conn *websocket.Conn
	send chan Output

	closeOnce sync.Once
	done      chan struct{}
}

func newWSSender(conn *websocket.Conn) *wsSender {
	s := &wsSender{
		conn: conn,
		send: make(chan Output, sendBuffer),
		done: make(chan struct{}),
	}
	go s.writePump()
	return s
}

func (s *wsSender) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(&msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.drain()
			return
		}
	}
}

// drain flushes messages queued before Close so a final notice (such as
// a kick) reaches the client, then writes the close frame.
func (s *wsSender) drain() {
	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(&msg); err != nil {
				return
			}
		default:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send queues one message. A client whose buffer is full is closed
// instead of blocking the caller.
func (s *wsSender) Send(msgType string, data any) error {
	select {
	case <-s.done:
		return errSenderClosed
	default:
	}

	select {
	case s.send <- Output{Type: msgType, Payload: data}:
		return nil
	default:
		s.Close()
		return errors.New("send buffer full")
	}
}

func (s *wsSender) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
