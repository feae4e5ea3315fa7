package room

import (
	"github.com/dag10/DJ-sub000/internal/domain"
)

// Server-to-client notification types.
const (
	MsgUserJoin     = "room:user:join"
	MsgUserLeave    = "room:user:leave"
	MsgUserUpdate   = "room:user:update"
	MsgUsers        = "room:users"
	MsgNumAnonymous = "room:num_anonymous"
	MsgSongUpdate   = "room:song:update"
	MsgSongStop     = "room:song:stop"
	MsgVotes        = "room:votes"
	MsgActivity     = "room:activity"
	MsgQueue        = "queue"
	MsgQueueSong    = "queue:song"
	MsgQueueSongRm  = "queue:song:remove"
	MsgKick         = "kick"
)

// Notification is one outbound message bound for a set of connections.
// Room mutations return these instead of sending directly; the caller
// publishes them after the room lock is released.
type Notification struct {
	// Conns are explicit recipients. Nil means broadcast to every
	// connection in the room except Exclude.
	Conns   []*Connection
	Exclude *Connection

	Type string
	Data any

	// CloseAfter tells the publisher to close the recipient's transport
	// once the message is written (used for kicks).
	CloseAfter bool
}

func toConn(conn *Connection, msgType string, data any) Notification {
	return Notification{Conns: []*Connection{conn}, Type: msgType, Data: data}
}

func broadcast(msgType string, data any) Notification {
	return Notification{Type: msgType, Data: data}
}

func broadcastExcept(conn *Connection, msgType string, data any) Notification {
	return Notification{Exclude: conn, Type: msgType, Data: data}
}

// UserSummary is the wire form of one room member.
type UserSummary struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	IsDJ     bool   `json:"dj"`
	DJOrder  int    `json:"dj_order,omitempty"`
}

type VoteTally struct {
	Likes           int `json:"likes"`
	SkipVotes       int `json:"skip_votes"`
	SkipVotesNeeded int `json:"skip_votes_needed"`
}

type SongUpdate struct {
	Song           domain.Song `json:"song"`
	DJ             string      `json:"dj"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
}

type KickNotice struct {
	Reason string `json:"reason"`
}
