package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityFeedKeepsNewestEntries(t *testing.T) {
	feed := newActivityFeed()
	assert.Empty(t, feed.Snapshot())

	for i := 0; i < activityFeedSize+5; i++ {
		feed.Add(Activity{Kind: ActivityJoin, Username: fmt.Sprintf("user%d", i), At: time.Now()})
	}

	snap := feed.Snapshot()
	require.Len(t, snap, activityFeedSize)
	// the five oldest entries were overwritten
	assert.Equal(t, "user5", snap[0].Username)
	assert.Equal(t, fmt.Sprintf("user%d", activityFeedSize+4), snap[len(snap)-1].Username)
}

func TestActivityFeedSnapshotOrder(t *testing.T) {
	feed := newActivityFeed()
	feed.Add(Activity{Kind: ActivityJoin, Username: "first"})
	feed.Add(Activity{Kind: ActivitySongPlayed, Username: "second"})

	snap := feed.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "first", snap[0].Username)
	assert.Equal(t, "second", snap[1].Username)
}
