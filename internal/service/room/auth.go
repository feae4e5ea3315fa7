package room

import (
	"context"
	"errors"
	"time"

	"github.com/dag10/DJ-sub000/internal/domain"
	"github.com/dag10/DJ-sub000/internal/repository"
	"github.com/dag10/DJ-sub000/internal/room"
)

type AuthParams struct {
	Conn  *room.Connection
	Token string
}

type AuthResponse struct {
	User  domain.User
	Queue []domain.QueuedSong
}

// Auth resolves the token to a user, loads the user's persisted queue
// and marks the connection authenticated. An unknown token leaves the
// connection anonymous.
func (s *service) Auth(ctx context.Context, params *AuthParams) (AuthResponse, error) {
	userId, err := s.store.GetUserIdByAuthToken(ctx, params.Token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return AuthResponse{}, ErrInvalidToken
		}
		s.logger.InfoContext(ctx, "failed to resolve auth token", "error", err)
		return AuthResponse{}, err
	}

	stored, err := s.store.GetUser(ctx, userId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get user", "user_id", userId, "error", err)
		return AuthResponse{}, err
	}

	user := domain.User{
		Id:       stored.Id,
		Username: stored.Username,
		FullName: stored.FullName,
	}

	queue, err := s.loadQueue(ctx, userId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to load queue", "user_id", userId, "error", err)
		return AuthResponse{}, err
	}

	params.Conn.Authenticate(&user, queue)

	return AuthResponse{
		User:  user,
		Queue: queue.Entries(),
	}, nil
}

// loadQueue rebuilds the user's queue from persisted song ids. Songs
// that no longer resolve are dropped.
func (s *service) loadQueue(ctx context.Context, userId string) (*domain.Queue, error) {
	songIds, err := s.store.GetQueue(ctx, userId)
	if err != nil {
		return nil, err
	}

	queue := domain.NewQueue()
	for _, songId := range songIds {
		stored, err := s.store.GetSong(ctx, songId)
		if err != nil {
			if errors.Is(err, repository.ErrSongNotFound) {
				s.logger.InfoContext(ctx, "dropping stale queue entry", "song_id", songId)
				continue
			}
			return nil, err
		}
		queue.Append(songFromStored(stored), userId)
	}

	return queue, nil
}

// saveQueue persists the connection's queue so it survives reconnects.
func (s *service) saveQueue(ctx context.Context, conn *room.Connection) {
	if !conn.Authenticated() {
		return
	}

	entries := conn.Queue().Entries()
	songIds := make([]string, 0, len(entries))
	for _, entry := range entries {
		songIds = append(songIds, entry.Song.Id)
	}

	if err := s.store.SaveQueue(ctx, conn.User().Id, songIds); err != nil {
		s.logger.InfoContext(ctx, "failed to save queue", "user_id", conn.User().Id, "error", err)
	}
}

func songFromStored(stored repository.Song) domain.Song {
	return domain.Song{
		Id:       stored.Id,
		Title:    stored.Title,
		Artist:   stored.Artist,
		SourceId: stored.SourceId,
		Duration: time.Duration(stored.DurationMs) * time.Millisecond,
	}
}
