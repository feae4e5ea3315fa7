package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dag10/DJ-sub000/internal/repository"
)

const authTokenTTL = 30 * 24 * time.Hour

func (r repo) getAuthTokenKey(token string) string {
	return "auth:" + token
}

func (r repo) SetAuthToken(ctx context.Context, params *repository.SetAuthTokenParams) error {
	r.logger.DebugContext(ctx, "called", "user_id", params.UserId)
	if err := r.rc.Set(ctx, r.getAuthTokenKey(params.Token), params.UserId, authTokenTTL).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetUserIdByAuthToken(ctx context.Context, token string) (string, error) {
	userId, err := r.rc.Get(ctx, r.getAuthTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrTokenNotFound
		}
		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", err
	}

	return userId, nil
}
