package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dag10/DJ-sub000/internal/domain"
)

func TestConnectionManagerIdentityIndex(t *testing.T) {
	m := NewConnectionManager()

	anon := NewConnection(&fakeSender{})
	m.Add(anon)

	authed := NewConnection(&fakeSender{})
	authed.Authenticate(&domain.User{Id: "u1", Username: "alice"}, domain.NewQueue())
	m.Add(authed)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 1, m.NumAuthenticated())
	assert.Equal(t, 1, m.NumAnonymous())

	require.NotNil(t, m.Get(anon.Id))
	assert.Nil(t, m.Get("no-such-id"))

	assert.Equal(t, authed, m.ForIdentity("u1"))
	assert.True(t, m.HasIdentity("u1"))
	assert.Nil(t, m.ForIdentity("u2"))

	m.Remove(authed)
	assert.False(t, m.HasIdentity("u1"))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 0, m.NumAuthenticated())

	m.Remove(anon)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.All())
}
