package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dag10/DJ-sub000/internal/repository"
)

func (r repo) getRoomKey(shortname string) string {
	return "room:" + shortname
}

func (r repo) getRoomListKey() string {
	return "rooms"
}

func (r repo) SaveRoom(ctx context.Context, params *repository.SaveRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	room := repository.RoomDef{
		Name:      params.Name,
		Shortname: params.Shortname,
		Slots:     params.Slots,
	}

	r.hSetStruct(ctx, pipe, r.getRoomKey(params.Shortname), room)
	pipe.SAdd(ctx, r.getRoomListKey(), params.Shortname)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, shortname string) (repository.RoomDef, error) {
	r.logger.DebugContext(ctx, "called", "shortname", shortname)
	var room repository.RoomDef
	if err := r.rc.HGetAll(ctx, r.getRoomKey(shortname)).Scan(&room); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return repository.RoomDef{}, err
	}

	if room.Shortname == "" {
		return repository.RoomDef{}, repository.ErrRoomNotFound
	}

	return room, nil
}

func (r repo) GetRoomShortnames(ctx context.Context) ([]string, error) {
	shortnames, err := r.rc.SMembers(ctx, r.getRoomListKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return shortnames, nil
}

func (r repo) RemoveRoom(ctx context.Context, shortname string) error {
	r.logger.DebugContext(ctx, "called", "shortname", shortname)
	pipe := r.rc.TxPipeline()

	pipe.Del(ctx, r.getRoomKey(shortname))
	pipe.SRem(ctx, r.getRoomListKey(), shortname)
	pipe.Del(ctx, r.getPlayEventsKey(shortname))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
