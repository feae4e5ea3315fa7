package room

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dag10/DJ-sub000/internal/domain"
	"github.com/dag10/DJ-sub000/internal/playback"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []Notification
	closed bool
}

func (f *fakeSender) Send(msgType string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, Notification{Type: msgType, Data: data})
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(bytes.Repeat([]byte("z"), 4096))), nil
}

func (fakeEncoder) ContentType() string { return "audio/mpeg" }

type fakeSource struct {
	missing map[string]bool
}

func (f *fakeSource) SourcePath(song domain.Song) (string, error) {
	if f.missing[song.Id] {
		return "", errors.New("source file missing")
	}
	return "/tmp/" + song.Id + ".mp3", nil
}

func newTestRoom(t *testing.T, slots int) *Room {
	t.Helper()
	engine := playback.NewEngine(fakeEncoder{}, playback.Config{SegmentSeconds: 1, BitrateKbps: 1}, slog.Default())
	r := New(Config{Name: "Test Room", Shortname: "test", Slots: slots}, engine, &fakeSource{}, slog.Default())
	t.Cleanup(func() { r.Close() })
	return r
}

func testSong(id string) domain.Song {
	return domain.Song{Id: id, Title: "Song " + id, Duration: time.Hour}
}

func joinAuthenticated(t *testing.T, r *Room, username string, songs ...string) *Connection {
	t.Helper()
	conn := NewConnection(&fakeSender{})
	queue := domain.NewQueue()
	for _, id := range songs {
		queue.Append(testSong(id), "user-"+username)
	}
	conn.Authenticate(&domain.User{Id: "user-" + username, Username: username}, queue)
	r.AddConnection(conn)
	return conn
}

func joinAnonymous(t *testing.T, r *Room) *Connection {
	t.Helper()
	conn := NewConnection(&fakeSender{})
	r.AddConnection(conn)
	return conn
}

func notificationTypes(ns []Notification) []string {
	types := make([]string, 0, len(ns))
	for _, n := range ns {
		types = append(types, n.Type)
	}
	return types
}

func hasType(ns []Notification, msgType string) bool {
	for _, n := range ns {
		if n.Type == msgType {
			return true
		}
	}
	return false
}

func TestMakeDJStartsPlayback(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice", "x")

	ns, err := r.MakeDJ(a)
	require.NoError(t, err)

	assert.True(t, a.IsDJ())
	assert.Equal(t, 1, a.DJOrder())
	assert.True(t, hasType(ns, MsgSongUpdate), "playback should start immediately: %v", notificationTypes(ns))

	pb := r.CurrentPlayback()
	require.NotNil(t, pb)
	assert.Equal(t, "x", pb.Song.Id)
	assert.True(t, pb.Playing())

	playing := a.Queue().PlayingEntry()
	require.NotNil(t, playing)
	assert.Equal(t, "x", playing.Song.Id)
}

func TestMakeDJErrors(t *testing.T) {
	r := newTestRoom(t, 1)

	anon := joinAnonymous(t, r)
	_, err := r.MakeDJ(anon)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	emptyQueue := joinAuthenticated(t, r, "bob")
	_, err = r.MakeDJ(emptyQueue)
	assert.ErrorIs(t, err, ErrQueueEmpty)

	a := joinAuthenticated(t, r, "alice", "x")
	_, err = r.MakeDJ(a)
	require.NoError(t, err)
	_, err = r.MakeDJ(a)
	assert.ErrorIs(t, err, ErrAlreadyDJ)

	// slots full: slot limit is 1 and alice holds it
	c := joinAuthenticated(t, r, "carol", "y")
	_, err = r.MakeDJ(c)
	assert.ErrorIs(t, err, ErrDJSlotsFull)
	assert.False(t, c.IsDJ())
}

func TestEndDJAdvancesWhenCurrent(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice", "x")
	b := joinAuthenticated(t, r, "bob", "y")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)
	_, err = r.MakeDJ(b)
	require.NoError(t, err)

	require.Equal(t, "x", r.CurrentPlayback().Song.Id)

	ns, err := r.EndDJ(a)
	require.NoError(t, err)

	assert.False(t, a.IsDJ())
	assert.Equal(t, 0, a.DJOrder())
	assert.Equal(t, 1, b.DJOrder(), "remaining DJ orders must repack to stay contiguous")
	assert.True(t, hasType(ns, MsgSongUpdate))
	require.NotNil(t, r.CurrentPlayback())
	assert.Equal(t, "y", r.CurrentPlayback().Song.Id)
}

func TestEndDJErrors(t *testing.T) {
	r := newTestRoom(t, 2)
	anon := joinAnonymous(t, r)

	_, err := r.EndDJ(anon)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	a := joinAuthenticated(t, r, "alice", "x")
	_, err = r.EndDJ(a)
	assert.ErrorIs(t, err, ErrNotDJ)
}

func TestRotationAlternatesDJs(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice", "a1", "a2")
	b := joinAuthenticated(t, r, "bob", "b1", "b2")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)
	_, err = r.MakeDJ(b)
	require.NoError(t, err)

	require.Equal(t, "a1", r.CurrentPlayback().Song.Id)

	r.PlayNextSong()
	assert.Equal(t, "b1", r.CurrentPlayback().Song.Id)
	assert.Equal(t, 1, b.DJOrder())
	assert.Equal(t, 2, a.DJOrder())

	r.PlayNextSong()
	assert.Equal(t, "a2", r.CurrentPlayback().Song.Id, "alice's queue rotated after a1 played")

	r.PlayNextSong()
	assert.Equal(t, "b2", r.CurrentPlayback().Song.Id)
}

func TestPlayNextSongRotatesPreviousDJQueue(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice", "x", "y")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)

	r.PlayNextSong()

	// x was demoted to the tail, y is playing
	entries := a.Queue().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "y", entries[0].Song.Id)
	assert.Equal(t, "x", entries[1].Song.Id)
	assert.Equal(t, "y", r.CurrentPlayback().Song.Id)
	assert.False(t, entries[1].Playing)
	assert.True(t, entries[0].Playing)
}

func TestPlayNextSongStopsWhenQueueConsumed(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice", "x")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)
	require.NotNil(t, r.CurrentPlayback())

	// the DJ pulls their only song while it plays; with the queue now
	// empty the next advance must stop playback and force-end the DJ
	_, err = r.QueueRemove(a, a.Queue().Entries()[0].Id)
	require.NoError(t, err)

	ns := r.PlayNextSong()

	assert.True(t, hasType(ns, MsgSongStop), "got %v", notificationTypes(ns))
	assert.Nil(t, r.CurrentPlayback())
	assert.False(t, a.IsDJ())
}

func TestEmptyQueuedDJsAreDroppedBoundedly(t *testing.T) {
	r := newTestRoom(t, 3)
	a := joinAuthenticated(t, r, "alice", "x")
	b := joinAuthenticated(t, r, "bob", "y")
	c := joinAuthenticated(t, r, "carol", "z")

	for _, conn := range []*Connection{a, b, c} {
		_, err := r.MakeDJ(conn)
		require.NoError(t, err)
	}

	// empty bob's and carol's queues behind the rotation's back
	_, err := r.QueueRemove(b, b.Queue().Entries()[0].Id)
	require.NoError(t, err)
	_, err = r.QueueRemove(c, c.Queue().Entries()[0].Id)
	require.NoError(t, err)

	// advancing must skip over both empty queues and come back to alice
	r.PlayNextSong()

	require.NotNil(t, r.CurrentPlayback())
	assert.Equal(t, "x", r.CurrentPlayback().Song.Id)
	assert.False(t, b.IsDJ())
	assert.False(t, c.IsDJ())
	assert.True(t, a.IsDJ())
}

func TestVoteThresholdRecompute(t *testing.T) {
	r := newTestRoom(t, 2)

	conns := make([]*Connection, 0, 9)
	for i := 0; i < 9; i++ {
		conns = append(conns, joinAuthenticated(t, r, fmt.Sprintf("user%d", i)))
	}
	assert.Equal(t, 3, r.SkipVotesNeeded())

	// anonymous listeners never count toward the threshold
	joinAnonymous(t, r)
	assert.Equal(t, 3, r.SkipVotesNeeded())

	r.RemoveConnection(conns[0])
	r.RemoveConnection(conns[1])
	r.RemoveConnection(conns[2])
	r.RemoveConnection(conns[3])
	r.RemoveConnection(conns[4])
	r.RemoveConnection(conns[5])
	r.RemoveConnection(conns[6])
	assert.Equal(t, 2, r.SkipVotesNeeded())

	r.RemoveConnection(conns[7])
	assert.Equal(t, 1, r.SkipVotesNeeded())
}

func TestSkipVoteThresholdTriggersAdvance(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice")
	b := joinAuthenticated(t, r, "bob")
	joinAuthenticated(t, r, "carol")

	require.Equal(t, 2, r.SkipVotesNeeded())

	ns, err := r.PostSkipVote(a)
	require.NoError(t, err)
	assert.False(t, hasType(ns, MsgSongStop))

	ns, err = r.PostSkipVote(b)
	require.NoError(t, err)
	assert.True(t, hasType(ns, MsgSongStop),
		"second vote must advance even with no DJs: %v", notificationTypes(ns))
}

func TestCurrentDJCannotVote(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice", "x")
	b := joinAuthenticated(t, r, "bob")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)

	_, err = r.PostLike(a)
	assert.ErrorIs(t, err, ErrDJCannotVote)
	_, err = r.PostSkipVote(a)
	assert.ErrorIs(t, err, ErrDJCannotVote)
	assert.Equal(t, VoteTally{SkipVotesNeeded: r.SkipVotesNeeded()}, r.VoteTally())

	// a non-current listener can vote
	_, err = r.PostLike(b)
	require.NoError(t, err)
	assert.Equal(t, 1, r.VoteTally().Likes)
}

func TestVotesAreMutuallyExclusive(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice")
	b := joinAuthenticated(t, r, "bob")

	_, err := r.PostLike(a)
	require.NoError(t, err)
	_, err = r.PostSkipVote(a)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	_, err = r.PostLike(a)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	_, err = r.PostSkipVote(b)
	require.NoError(t, err)
	_, err = r.PostLike(b)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestRemoveVoteIdempotent(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice")

	ns := r.RemoveSkipVote(a)
	assert.Empty(t, ns, "withdrawing a vote never cast is a no-op")
	ns = r.RemoveLike(a)
	assert.Empty(t, ns)

	_, err := r.PostSkipVote(a)
	require.NoError(t, err)
	ns = r.RemoveSkipVote(a)
	assert.True(t, hasType(ns, MsgVotes))
	assert.Equal(t, 0, r.VoteTally().SkipVotes)
}

func TestVotesClearedOnAdvance(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice", "x", "y")
	b := joinAuthenticated(t, r, "bob")
	c := joinAuthenticated(t, r, "carol")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)
	_, err = r.PostLike(b)
	require.NoError(t, err)
	_, err = r.PostSkipVote(c)
	require.NoError(t, err)

	r.PlayNextSong()

	tally := r.VoteTally()
	assert.Equal(t, 0, tally.Likes)
	assert.Equal(t, 0, tally.SkipVotes)

	// freed to vote again for the new song
	_, err = r.PostLike(c)
	require.NoError(t, err)
}

func TestDuplicateIdentityKicked(t *testing.T) {
	r := newTestRoom(t, 1)
	first := joinAuthenticated(t, r, "alice")

	second := NewConnection(&fakeSender{})
	second.Authenticate(&domain.User{Id: "user-alice", Username: "alice"}, domain.NewQueue())
	ns := r.AddConnection(second)

	assert.True(t, hasType(ns, MsgKick))
	assert.Equal(t, 1, r.NumListeners())
	assert.Nil(t, first.Room())
	assert.Equal(t, r, second.Room())

	var kick *Notification
	for i := range ns {
		if ns[i].Type == MsgKick {
			kick = &ns[i]
		}
	}
	require.NotNil(t, kick)
	assert.True(t, kick.CloseAfter)
	require.Len(t, kick.Conns, 1)
	assert.Equal(t, first, kick.Conns[0])
}

func TestRemoveCurrentDJAdvances(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice", "x")
	b := joinAuthenticated(t, r, "bob", "y")

	_, err := r.MakeDJ(a)
	require.NoError(t, err)
	_, err = r.MakeDJ(b)
	require.NoError(t, err)

	ns := r.RemoveConnection(a)

	assert.True(t, hasType(ns, MsgUserLeave))
	require.NotNil(t, r.CurrentPlayback())
	assert.Equal(t, "y", r.CurrentPlayback().Song.Id)
	assert.Equal(t, 1, b.DJOrder())
}

func TestRemoveConnectionReleasesVote(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice")
	joinAuthenticated(t, r, "bob")

	_, err := r.PostSkipVote(a)
	require.NoError(t, err)
	require.Equal(t, 1, r.VoteTally().SkipVotes)

	r.RemoveConnection(a)
	assert.Equal(t, 0, r.VoteTally().SkipVotes)
}

func TestSkipOnlyByCurrentDJ(t *testing.T) {
	r := newTestRoom(t, 2)
	a := joinAuthenticated(t, r, "alice", "x", "y")
	b := joinAuthenticated(t, r, "bob")

	_, err := r.Skip(a)
	assert.ErrorIs(t, err, ErrNoSongPlaying)

	_, err = r.MakeDJ(a)
	require.NoError(t, err)

	_, err = r.Skip(b)
	assert.ErrorIs(t, err, ErrNotCurrentDJ)

	ns, err := r.Skip(a)
	require.NoError(t, err)
	assert.True(t, hasType(ns, MsgSongUpdate))
	assert.Equal(t, "y", r.CurrentPlayback().Song.Id)
}

func TestUnresolvableSongSkipped(t *testing.T) {
	engine := playback.NewEngine(fakeEncoder{}, playback.Config{SegmentSeconds: 1, BitrateKbps: 1}, slog.Default())
	source := &fakeSource{missing: map[string]bool{"bad": true}}
	r := New(Config{Name: "Test", Shortname: "test", Slots: 2}, engine, source, slog.Default())
	t.Cleanup(func() { r.Close() })

	a := NewConnection(&fakeSender{})
	queue := domain.NewQueue()
	queue.Append(testSong("bad"), "user-alice")
	queue.Append(testSong("good"), "user-alice")
	a.Authenticate(&domain.User{Id: "user-alice", Username: "alice"}, queue)
	r.AddConnection(a)

	ns, err := r.MakeDJ(a)
	require.NoError(t, err)

	// the unplayable entry is removed and the next one plays
	assert.True(t, hasType(ns, MsgQueueSongRm))
	require.NotNil(t, r.CurrentPlayback())
	assert.Equal(t, "good", r.CurrentPlayback().Song.Id)
	assert.Equal(t, 1, a.Queue().Len())
}

func TestActivityFeedRecordsRoomLife(t *testing.T) {
	r := newTestRoom(t, 1)
	a := joinAuthenticated(t, r, "alice", "x")
	_, err := r.MakeDJ(a)
	require.NoError(t, err)
	r.RemoveConnection(a)

	var kinds []ActivityKind
	r.mu.Lock()
	for _, entry := range r.activity.Snapshot() {
		kinds = append(kinds, entry.Kind)
	}
	r.mu.Unlock()

	assert.Contains(t, kinds, ActivityJoin)
	assert.Contains(t, kinds, ActivitySongPlayed)
	assert.Contains(t, kinds, ActivityLeave)
}
