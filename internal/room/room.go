// Package room implements the coordination state machine for one shared
// listening room: membership, DJ rotation, per-DJ queues and vote tallies.
// All mutations for a room run to completion under its lock before the
// next event is handled; mutations return the notifications to publish
// instead of sending them directly.
package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dag10/DJ-sub000/internal/domain"
	"github.com/dag10/DJ-sub000/internal/playback"
)

// maxRotationAttempts bounds one rotation advance. Every iteration either
// starts a song or removes a DJ or an unplayable entry, so the bound is
// never the thing that terminates a healthy room; it guards against the
// pathological case of many simultaneously empty or broken queues.
const maxRotationAttempts = 64

// SongSource resolves a playable file path for a song.
type SongSource interface {
	SourcePath(song domain.Song) (string, error)
}

// Publisher delivers notifications produced by asynchronous transitions
// (the song-finish timer and pipeline failures). Command-driven mutations
// return their notifications to the caller instead.
type Publisher interface {
	Publish(ns []Notification)
}

type Config struct {
	Name      string
	Shortname string
	Slots     int
}

type Room struct {
	Name      string
	Shortname string
	Slots     int

	logger     *slog.Logger
	engine     *playback.Engine
	source     SongSource
	publisher  Publisher
	onActivity func(shortname string, a Activity)

	mu              sync.Mutex
	conns           *ConnectionManager
	djs             []*Connection
	currentDJ       *Connection
	likes           map[*Connection]struct{}
	skipVotes       map[*Connection]struct{}
	skipVotesNeeded int
	playback        *playback.SongPlayback
	activity        *activityFeed
	started         chan struct{}
}

func New(cfg Config, engine *playback.Engine, source SongSource, logger *slog.Logger) *Room {
	return &Room{
		Name:      cfg.Name,
		Shortname: cfg.Shortname,
		Slots:     cfg.Slots,
		logger:    logger.With("room", cfg.Shortname),
		engine:    engine,
		source:    source,
		conns:     NewConnectionManager(),
		likes:     make(map[*Connection]struct{}),
		skipVotes: make(map[*Connection]struct{}),
		activity:  newActivityFeed(),
		started:   make(chan struct{}),
	}
}

// SetPublisher wires the sink for notifications from asynchronous
// transitions. Must be set before the first playback can start.
func (r *Room) SetPublisher(p Publisher) {
	r.publisher = p
}

// SetActivitySink wires the statistic-event collaborator. Invoked outside
// the room lock is not guaranteed; implementations must not call back in.
func (r *Room) SetActivitySink(fn func(shortname string, a Activity)) {
	r.onActivity = fn
}

// AddConnection admits a connection: an older live connection for the same
// identity is kicked first, the newcomer receives the full room snapshot,
// and everyone else gets a join notice.
func (r *Room) AddConnection(conn *Connection) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ns []Notification

	if conn.Authenticated() {
		if old := r.conns.ForIdentity(conn.User().Id); old != nil {
			ns = append(ns, Notification{
				Conns:      []*Connection{old},
				Type:       MsgKick,
				Data:       KickNotice{Reason: "you connected somewhere else"},
				CloseAfter: true,
			})
			ns = append(ns, r.removeConnectionLocked(old)...)
		}
	}

	r.conns.Add(conn)
	conn.room = r
	r.recomputeSkipVotesNeededLocked()

	// full snapshot for the newcomer only
	ns = append(ns,
		toConn(conn, MsgUsers, r.userSummariesLocked()),
		toConn(conn, MsgNumAnonymous, r.conns.NumAnonymous()),
		toConn(conn, MsgVotes, r.voteTallyLocked()),
		toConn(conn, MsgActivity, r.activity.Snapshot()),
	)
	if r.playback != nil {
		ns = append(ns, toConn(conn, MsgSongUpdate, r.songUpdateLocked()))
	}
	if conn.Authenticated() {
		ns = append(ns, toConn(conn, MsgQueue, conn.Queue().Entries()))
	}

	// join notice for everyone else
	if conn.Authenticated() {
		ns = append(ns, broadcastExcept(conn, MsgUserJoin, r.summaryLocked(conn)))
		r.recordActivityLocked(Activity{Kind: ActivityJoin, Username: conn.Username(), At: time.Now()})
	} else {
		ns = append(ns, broadcastExcept(conn, MsgNumAnonymous, r.conns.NumAnonymous()))
	}

	r.logger.Info("connection joined",
		"conn_id", conn.Id,
		"username", conn.Username(),
		"listeners", r.conns.Len(),
	)

	return ns
}

// RemoveConnection evicts a connection, releasing its DJ slot and votes.
func (r *Room) RemoveConnection(conn *Connection) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeConnectionLocked(conn)
}

func (r *Room) removeConnectionLocked(conn *Connection) []Notification {
	if r.conns.Get(conn.Id) == nil {
		return nil
	}

	var ns []Notification

	wasCurrent := r.currentDJ == conn
	if conn.isDJ {
		r.dropDJLocked(conn)
	}

	delete(r.likes, conn)
	delete(r.skipVotes, conn)

	r.conns.Remove(conn)
	conn.room = nil
	r.recomputeSkipVotesNeededLocked()

	if conn.Authenticated() {
		ns = append(ns, broadcast(MsgUserLeave, r.summaryLocked(conn)))
		r.recordActivityLocked(Activity{Kind: ActivityLeave, Username: conn.Username(), At: time.Now()})
	} else {
		ns = append(ns, broadcast(MsgNumAnonymous, r.conns.NumAnonymous()))
	}
	ns = append(ns, broadcast(MsgVotes, r.voteTallyLocked()))

	if wasCurrent {
		ns = append(ns, r.advanceLocked()...)
	}

	r.logger.Info("connection left",
		"conn_id", conn.Id,
		"username", conn.Username(),
		"listeners", r.conns.Len(),
	)

	return ns
}

// PostLike records a like for the current song. The current DJ cannot
// vote, and a connection holds at most one vote of either kind.
func (r *Room) PostLike(conn *Connection) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentDJ == conn {
		return nil, ErrDJCannotVote
	}
	if r.hasVoteLocked(conn) {
		return nil, ErrAlreadyVoted
	}

	r.likes[conn] = struct{}{}
	return []Notification{broadcast(MsgVotes, r.voteTallyLocked())}, nil
}

// RemoveLike withdraws a like. Withdrawing a vote that was never cast is
// a no-op.
func (r *Room) RemoveLike(conn *Connection) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.likes[conn]; !ok {
		return nil
	}
	delete(r.likes, conn)
	return []Notification{broadcast(MsgVotes, r.voteTallyLocked())}
}

// PostSkipVote records a skip vote; reaching the threshold advances the
// rotation immediately.
func (r *Room) PostSkipVote(conn *Connection) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentDJ == conn {
		return nil, ErrDJCannotVote
	}
	if r.hasVoteLocked(conn) {
		return nil, ErrAlreadyVoted
	}

	r.skipVotes[conn] = struct{}{}
	ns := []Notification{broadcast(MsgVotes, r.voteTallyLocked())}

	if len(r.skipVotes) > 0 && len(r.skipVotes) >= r.skipVotesNeeded {
		r.logger.Info("skip vote threshold reached",
			"skip_votes", len(r.skipVotes),
			"needed", r.skipVotesNeeded,
		)
		ns = append(ns, r.advanceLocked()...)
	}

	return ns, nil
}

// RemoveSkipVote withdraws a skip vote; a no-op if none was cast.
func (r *Room) RemoveSkipVote(conn *Connection) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.skipVotes[conn]; !ok {
		return nil
	}
	delete(r.skipVotes, conn)
	return []Notification{broadcast(MsgVotes, r.voteTallyLocked())}
}

// MakeDJ puts the connection in the next DJ rotation slot. If nothing is
// playing, its queue head starts immediately.
func (r *Room) MakeDJ(conn *Connection) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !conn.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if conn.isDJ {
		return nil, ErrAlreadyDJ
	}
	if len(r.djs) >= r.Slots {
		return nil, ErrDJSlotsFull
	}
	if conn.Queue().Len() == 0 {
		return nil, ErrQueueEmpty
	}

	conn.isDJ = true
	conn.djOrder = len(r.djs) + 1
	r.djs = append(r.djs, conn)

	ns := []Notification{broadcast(MsgUserUpdate, r.summaryLocked(conn))}

	if r.playback == nil {
		ns = append(ns, r.advanceLocked()...)
	}

	return ns, nil
}

// EndDJ removes the connection from the rotation, repacking the remaining
// DJ orders. If it was the DJ of the playing song, rotation advances.
func (r *Room) EndDJ(conn *Connection) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !conn.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !conn.isDJ {
		return nil, ErrNotDJ
	}

	wasCurrent := r.currentDJ == conn
	r.dropDJLocked(conn)

	ns := []Notification{broadcast(MsgUserUpdate, r.summaryLocked(conn))}
	if wasCurrent {
		ns = append(ns, r.advanceLocked()...)
	}

	return ns, nil
}

// Skip lets the current DJ skip their own song.
func (r *Room) Skip(conn *Connection) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playback == nil {
		return nil, ErrNoSongPlaying
	}
	if r.currentDJ != conn {
		return nil, ErrNotCurrentDJ
	}

	return r.advanceLocked(), nil
}

// PlayNextSong force-advances the rotation regardless of the current
// song's progress.
func (r *Room) PlayNextSong() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advanceLocked()
}

// songFinished is the finish-timer entry point. Stale timers (for a
// playback that was already replaced) are ignored.
func (r *Room) songFinished(pb *playback.SongPlayback) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playback != pb {
		return nil
	}
	return r.advanceLocked()
}

// advanceLocked is the rotation step: force-end the current song, rotate
// the previous DJ's queue and rotation slot, then walk the rotation until
// a queue head starts or no DJ remains.
func (r *Room) advanceLocked() []Notification {
	var ns []Notification

	if r.playback != nil {
		pb := r.playback
		prevDJ := r.currentDJ
		r.playback = nil
		r.currentDJ = nil
		pb.End()

		if prevDJ != nil {
			r.recordActivityLocked(Activity{
				Kind:      ActivitySongLeft,
				Username:  prevDJ.Username(),
				SongTitle: pb.Song.Title,
				At:        time.Now(),
			})
			if q := prevDJ.Queue(); q != nil {
				if playing := q.PlayingEntry(); playing != nil {
					playing.Playing = false
				}
				q.Rotate()
				ns = append(ns, toConn(prevDJ, MsgQueue, q.Entries()))
			}
			if prevDJ.isDJ {
				r.rotateDJsLocked(prevDJ)
			}
		}

		r.clearVotesLocked()
		ns = append(ns, broadcast(MsgVotes, r.voteTallyLocked()))
	}

	for attempt := 0; attempt < maxRotationAttempts && len(r.djs) > 0; attempt++ {
		dj := r.djs[0]
		entry := dj.Queue().Head()
		if entry == nil {
			// empty queue: drop from rotation instead of leaving dead air
			r.dropDJLocked(dj)
			ns = append(ns, broadcast(MsgUserUpdate, r.summaryLocked(dj)))
			continue
		}

		path, err := r.source.SourcePath(entry.Song)
		if err != nil {
			r.logger.Error("failed to resolve song source",
				"song_id", entry.Song.Id,
				"error", err,
			)
			dj.Queue().Remove(entry.Id)
			ns = append(ns, toConn(dj, MsgQueueSongRm, entry.Id))
			if dj.Queue().Len() == 0 {
				r.dropDJLocked(dj)
				ns = append(ns, broadcast(MsgUserUpdate, r.summaryLocked(dj)))
			}
			continue
		}

		pb, err := r.engine.Start(entry.Song, dj.Id, path, r.playbackFinished)
		if err != nil {
			r.logger.Error("failed to start playback",
				"song_id", entry.Song.Id,
				"error", err,
			)
			dj.Queue().Remove(entry.Id)
			ns = append(ns, toConn(dj, MsgQueueSongRm, entry.Id))
			if dj.Queue().Len() == 0 {
				r.dropDJLocked(dj)
				ns = append(ns, broadcast(MsgUserUpdate, r.summaryLocked(dj)))
			}
			continue
		}

		entry.Playing = true
		r.playback = pb
		r.currentDJ = dj
		r.recordActivityLocked(Activity{
			Kind:      ActivitySongPlayed,
			Username:  dj.Username(),
			SongTitle: entry.Song.Title,
			At:        time.Now(),
		})

		ns = append(ns,
			broadcast(MsgSongUpdate, r.songUpdateLocked()),
			toConn(dj, MsgQueueSong, *entry),
		)

		r.logger.Info("song started",
			"song_id", entry.Song.Id,
			"dj", dj.Username(),
		)

		// wake stream handlers waiting for a playback
		close(r.started)
		r.started = make(chan struct{})

		return ns
	}

	ns = append(ns, broadcast(MsgSongStop, nil))
	r.logger.Info("playback stopped", "djs", len(r.djs))
	return ns
}

// playbackFinished runs on the finish timer's goroutine; it re-enters the
// room through the lock and publishes on its own since there is no
// command caller to hand notifications back to.
func (r *Room) playbackFinished(pb *playback.SongPlayback) {
	ns := r.songFinished(pb)
	if len(ns) > 0 && r.publisher != nil {
		r.publisher.Publish(ns)
	}
}

func (r *Room) rotateDJsLocked(dj *Connection) {
	for i, other := range r.djs {
		if other == dj {
			r.djs = append(r.djs[:i], r.djs[i+1:]...)
			break
		}
	}
	r.djs = append(r.djs, dj)
	r.repackDJOrdersLocked()
}

// dropDJLocked removes the connection from the rotation entirely.
func (r *Room) dropDJLocked(dj *Connection) {
	for i, other := range r.djs {
		if other == dj {
			r.djs = append(r.djs[:i], r.djs[i+1:]...)
			break
		}
	}
	dj.isDJ = false
	dj.djOrder = 0
	r.repackDJOrdersLocked()
}

func (r *Room) repackDJOrdersLocked() {
	for i, dj := range r.djs {
		dj.djOrder = i + 1
	}
}

func (r *Room) hasVoteLocked(conn *Connection) bool {
	if _, ok := r.likes[conn]; ok {
		return true
	}
	_, ok := r.skipVotes[conn]
	return ok
}

func (r *Room) clearVotesLocked() {
	r.likes = make(map[*Connection]struct{})
	r.skipVotes = make(map[*Connection]struct{})
}

// recomputeSkipVotesNeededLocked derives the threshold from the
// authenticated listener count.
func (r *Room) recomputeSkipVotesNeededLocked() {
	r.skipVotesNeeded = domain.NeededSkipVotes(r.conns.NumAuthenticated())
}

func (r *Room) recordActivityLocked(a Activity) {
	r.activity.Add(a)
	if r.onActivity != nil {
		r.onActivity(r.Shortname, a)
	}
}

func (r *Room) voteTallyLocked() VoteTally {
	return VoteTally{
		Likes:           len(r.likes),
		SkipVotes:       len(r.skipVotes),
		SkipVotesNeeded: r.skipVotesNeeded,
	}
}

func (r *Room) summaryLocked(conn *Connection) UserSummary {
	user := conn.User()
	summary := UserSummary{
		IsDJ:    conn.isDJ,
		DJOrder: conn.djOrder,
	}
	if user != nil {
		summary.Username = user.Username
		summary.FullName = user.FullName
	}
	return summary
}

func (r *Room) userSummariesLocked() []UserSummary {
	summaries := make([]UserSummary, 0, r.conns.NumAuthenticated())
	for _, conn := range r.conns.All() {
		if conn.Authenticated() {
			summaries = append(summaries, r.summaryLocked(conn))
		}
	}
	return summaries
}

func (r *Room) songUpdateLocked() SongUpdate {
	update := SongUpdate{
		Song:           r.playback.Song,
		ElapsedSeconds: r.playback.Elapsed().Seconds(),
	}
	if r.currentDJ != nil {
		update.DJ = r.currentDJ.Username()
	}
	return update
}

// Connections returns the room's current connections.
func (r *Room) Connections() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns.All()
}

func (r *Room) NumListeners() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns.Len()
}

func (r *Room) SkipVotesNeeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipVotesNeeded
}

func (r *Room) VoteTally() VoteTally {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.voteTallyLocked()
}

// CurrentPlayback returns the active playback, or nil.
func (r *Room) CurrentPlayback() *playback.SongPlayback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playback
}

// PlaybackStarted returns a channel closed when the next playback starts.
func (r *Room) PlaybackStarted() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Close force-ends playback; used when the room is removed.
func (r *Room) Close() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ns []Notification
	if r.playback != nil {
		pb := r.playback
		r.playback = nil
		r.currentDJ = nil
		pb.End()
		ns = append(ns, broadcast(MsgSongStop, nil))
	}
	for _, conn := range r.conns.All() {
		ns = append(ns, Notification{
			Conns:      []*Connection{conn},
			Type:       MsgKick,
			Data:       KickNotice{Reason: "room closed"},
			CloseAfter: true,
		})
		if conn.isDJ {
			r.dropDJLocked(conn)
		}
		r.conns.Remove(conn)
		conn.room = nil
	}
	r.clearVotesLocked()
	r.recomputeSkipVotesNeededLocked()
	return ns
}
