package redis

import (
	"context"
)

func (r repo) getQueueKey(userId string) string {
	return "user:" + userId + ":queue"
}

// SaveQueue replaces the user's persisted queue with the given song ids,
// in order.
func (r repo) SaveQueue(ctx context.Context, userId string, songIds []string) error {
	r.logger.DebugContext(ctx, "called", "user_id", userId, "songs", len(songIds))
	pipe := r.rc.TxPipeline()

	key := r.getQueueKey(userId)
	pipe.Del(ctx, key)
	if len(songIds) > 0 {
		args := make([]interface{}, len(songIds))
		for i, id := range songIds {
			args[i] = id
		}
		pipe.RPush(ctx, key, args...)
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetQueue(ctx context.Context, userId string) ([]string, error) {
	songIds, err := r.rc.LRange(ctx, r.getQueueKey(userId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return songIds, nil
}
