package redis

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/repository"
)

func (r repo) getSongKey(songId string) string {
	return "song:" + songId
}

func (r repo) SaveSong(ctx context.Context, params *repository.SaveSongParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	song := repository.Song{
		Id:         params.Id,
		Title:      params.Title,
		Artist:     params.Artist,
		SourceId:   params.SourceId,
		DurationMs: params.DurationMs,
	}

	r.hSetStruct(ctx, pipe, r.getSongKey(params.Id), song)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetSong(ctx context.Context, songId string) (repository.Song, error) {
	r.logger.DebugContext(ctx, "called", "song_id", songId)
	var song repository.Song
	if err := r.rc.HGetAll(ctx, r.getSongKey(songId)).Scan(&song); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return repository.Song{}, err
	}

	if song.Id == "" {
		return repository.Song{}, repository.ErrSongNotFound
	}

	return song, nil
}
