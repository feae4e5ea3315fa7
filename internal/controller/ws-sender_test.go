package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestSenderFlushesQueuedMessagesOnClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		s := newWSSender(conn)
		require.NoError(t, s.Send("kick", map[string]string{"reason": "signed in from another connection"}))
		s.Close()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	// Close follows Send immediately on the server side; the queued
	// message must still arrive every time.
	for i := 0; i < 25; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)

		conn.SetReadDeadline(time.Now().Add(time.Second))

		var out Output
		require.NoError(t, conn.ReadJSON(&out), "trial %d", i)
		require.Equal(t, "kick", out.Type)

		_, _, err = conn.NextReader()
		require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "trial %d: %v", i, err)

		conn.Close()
	}
}

func TestSenderRejectsSendAfterClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		s := newWSSender(conn)
		s.Close()
		require.ErrorIs(t, s.Send("room:users", nil), errSenderClosed)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.NextReader()
	require.Error(t, err)
}
