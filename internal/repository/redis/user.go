package redis

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/repository"
)

func (r repo) getUserKey(userId string) string {
	return "user:" + userId
}

func (r repo) SaveUser(ctx context.Context, params *repository.SaveUserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	user := repository.User{
		Id:       params.Id,
		Username: params.Username,
		FullName: params.FullName,
	}

	r.hSetStruct(ctx, pipe, r.getUserKey(params.Id), user)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetUser(ctx context.Context, userId string) (repository.User, error) {
	r.logger.DebugContext(ctx, "called", "user_id", userId)
	var user repository.User
	if err := r.rc.HGetAll(ctx, r.getUserKey(userId)).Scan(&user); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return repository.User{}, err
	}

	if user.Id == "" {
		return repository.User{}, repository.ErrUserNotFound
	}

	return user, nil
}
