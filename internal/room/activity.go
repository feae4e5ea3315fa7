package room

import "time"

const activityFeedSize = 30

type ActivityKind string

const (
	ActivityJoin       ActivityKind = "join"
	ActivityLeave      ActivityKind = "leave"
	ActivitySongPlayed ActivityKind = "song:played"
	ActivitySongLeft   ActivityKind = "song:left"
)

type Activity struct {
	Kind      ActivityKind `json:"kind"`
	Username  string       `json:"username,omitempty"`
	SongTitle string       `json:"song_title,omitempty"`
	At        time.Time    `json:"at"`
}

// activityFeed is a fixed-capacity circular buffer of the room's most
// recent activity. When full, Add overwrites the oldest entry. Callers
// serialize through the room lock.
type activityFeed struct {
	buf   []Activity
	head  int
	count int
}

func newActivityFeed() *activityFeed {
	return &activityFeed{buf: make([]Activity, activityFeedSize)}
}

func (f *activityFeed) Add(a Activity) {
	idx := (f.head + f.count) % len(f.buf)
	f.buf[idx] = a
	if f.count == len(f.buf) {
		f.head = (f.head + 1) % len(f.buf)
	} else {
		f.count++
	}
}

// Snapshot returns a copy of all entries in order, oldest first.
func (f *activityFeed) Snapshot() []Activity {
	out := make([]Activity, f.count)
	for i := 0; i < f.count; i++ {
		out[i] = f.buf[(f.head+i)%len(f.buf)]
	}
	return out
}
