package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dag10/DJ-sub000/internal/repository"
)

// playEventsKept caps the retained history per room.
const playEventsKept = 1000

func (r repo) getPlayEventsKey(shortname string) string {
	return "room:" + shortname + ":events"
}

func (r repo) AppendPlayEvent(ctx context.Context, params *repository.AppendPlayEventParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	event := repository.PlayEvent{
		Kind:      params.Kind,
		Room:      params.Room,
		Username:  params.Username,
		SongTitle: params.SongTitle,
		At:        params.At,
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal play event: %w", err)
	}

	pipe := r.rc.TxPipeline()
	key := r.getPlayEventsKey(params.Room)
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, playEventsKept-1)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// GetRecentPlayEvents returns up to count events, newest first.
func (r repo) GetRecentPlayEvents(ctx context.Context, shortname string, count int) ([]repository.PlayEvent, error) {
	raws, err := r.rc.LRange(ctx, r.getPlayEventsKey(shortname), 0, int64(count)-1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	events := make([]repository.PlayEvent, 0, len(raws))
	for _, raw := range raws {
		var event repository.PlayEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal play event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}
