package room

import (
	"golang.org/x/exp/maps"
)

// ConnectionManager indexes a room's connections by connection id and by
// authenticated identity. At most one connection per identity is ever held;
// a removed connection never appears in lookups again.
type ConnectionManager struct {
	byId   map[string]*Connection
	byUser map[string]*Connection
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		byId:   make(map[string]*Connection),
		byUser: make(map[string]*Connection),
	}
}

func (m *ConnectionManager) Add(conn *Connection) {
	m.byId[conn.Id] = conn
	if conn.Authenticated() {
		m.byUser[conn.User().Id] = conn
	}
}

func (m *ConnectionManager) Remove(conn *Connection) {
	delete(m.byId, conn.Id)
	if conn.Authenticated() && m.byUser[conn.User().Id] == conn {
		delete(m.byUser, conn.User().Id)
	}
}

func (m *ConnectionManager) Get(connId string) *Connection {
	return m.byId[connId]
}

// ForIdentity returns the live connection bound to the given user, if any.
func (m *ConnectionManager) ForIdentity(userId string) *Connection {
	return m.byUser[userId]
}

func (m *ConnectionManager) HasIdentity(userId string) bool {
	_, ok := m.byUser[userId]
	return ok
}

func (m *ConnectionManager) All() []*Connection {
	return maps.Values(m.byId)
}

func (m *ConnectionManager) Len() int {
	return len(m.byId)
}

func (m *ConnectionManager) NumAuthenticated() int {
	return len(m.byUser)
}

func (m *ConnectionManager) NumAnonymous() int {
	return len(m.byId) - len(m.byUser)
}
