package room

import (
	"github.com/google/uuid"

	"github.com/dag10/DJ-sub000/internal/domain"
)

// Sender delivers server-to-client notifications for one connection. The
// websocket controller provides the real implementation; tests use fakes.
type Sender interface {
	Send(msgType string, data any) error
	Close() error
}

// Connection is one user's live session. It is created when the network
// session is established and destroyed on disconnect; while it lives it
// belongs to at most one room. A connection starts anonymous and may be
// bound to a user exactly once.
type Connection struct {
	Id     string
	sender Sender

	user    *domain.User
	queue   *domain.Queue
	room    *Room
	isDJ    bool
	djOrder int
}

func NewConnection(sender Sender) *Connection {
	return &Connection{
		Id:     uuid.NewString(),
		sender: sender,
	}
}

// Authenticate binds the connection to a user and its persisted queue.
func (c *Connection) Authenticate(user *domain.User, queue *domain.Queue) {
	c.user = user
	if queue == nil {
		queue = domain.NewQueue()
	}
	c.queue = queue
}

func (c *Connection) Authenticated() bool {
	return c.user != nil
}

func (c *Connection) User() *domain.User {
	return c.user
}

// Queue returns the connection's queue; nil while anonymous.
func (c *Connection) Queue() *domain.Queue {
	return c.queue
}

func (c *Connection) Room() *Room {
	return c.room
}

func (c *Connection) IsDJ() bool {
	return c.isDJ
}

func (c *Connection) DJOrder() int {
	return c.djOrder
}

func (c *Connection) Sender() Sender {
	return c.sender
}

// Username returns the bound username or "" while anonymous.
func (c *Connection) Username() string {
	if c.user == nil {
		return ""
	}
	return c.user.Username
}
