// Package redis persists room definitions, users, songs, queues, auth
// tokens and play history on redis, keyed and pipelined the same way
// across entity kinds.
package redis

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}
