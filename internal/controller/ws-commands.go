package controller

import (
	"context"
	"encoding/json"
	"fmt"

	service "github.com/dag10/DJ-sub000/internal/service/room"
	"github.com/dag10/DJ-sub000/pkg/wsrouter"
)

type EmptyInput struct{}

// handle decodes and validates a typed payload before invoking fn.
func handle[T any](c *controller, fn func(ctx context.Context, input T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}
		}

		if validationErrors, ok := c.validate.Validate(&input); !ok {
			return fmt.Errorf("invalid payload: %s", validationErrors[0].Message)
		}

		return fn(ctx, input)
	}
}

type AuthInput struct {
	Token string `json:"token" validate:"required"`
}

func (s *wsSession) handleAuth(ctx context.Context, input AuthInput) error {
	authResp, err := s.c.roomService.Auth(ctx, &service.AuthParams{
		Conn:  s.conn,
		Token: input.Token,
	})
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	return s.sender.Send("auth:ok", map[string]any{
		"user":  authResp.User,
		"queue": authResp.Queue,
	})
}

type JoinRoomInput struct {
	Room string `json:"room" validate:"required,max=32"`
}

func (s *wsSession) handleJoinRoom(ctx context.Context, input JoinRoomInput) error {
	if _, err := s.c.roomService.JoinRoom(ctx, &service.JoinRoomParams{
		Conn:      s.conn,
		Shortname: input.Room,
	}); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

func (s *wsSession) handleLeaveRoom(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.LeaveRoom(ctx, &service.LeaveRoomParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

func (s *wsSession) handleBeginDJ(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.BeginDJ(ctx, &service.BeginDJParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to become dj: %w", err)
	}

	return nil
}

func (s *wsSession) handleEndDJ(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.EndDJ(ctx, &service.EndDJParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to stop being dj: %w", err)
	}

	return nil
}

func (s *wsSession) handleSkip(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.Skip(ctx, &service.SkipParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to skip: %w", err)
	}

	return nil
}

func (s *wsSession) handleLike(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.PostLike(ctx, &service.VoteParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to like: %w", err)
	}

	return nil
}

func (s *wsSession) handleRemoveLike(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.RemoveLike(ctx, &service.VoteParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}

	return nil
}

func (s *wsSession) handleSkipVote(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.PostSkipVote(ctx, &service.VoteParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to vote skip: %w", err)
	}

	return nil
}

func (s *wsSession) handleRemoveSkipVote(ctx context.Context, _ EmptyInput) error {
	if err := s.c.roomService.RemoveSkipVote(ctx, &service.VoteParams{Conn: s.conn}); err != nil {
		return fmt.Errorf("failed to remove skip vote: %w", err)
	}

	return nil
}

type AddToQueueInput struct {
	SongId string `json:"song_id" validate:"required"`
}

func (s *wsSession) handleAddToQueue(ctx context.Context, input AddToQueueInput) error {
	if _, err := s.c.roomService.AddToQueue(ctx, &service.AddToQueueParams{
		Conn:   s.conn,
		SongId: input.SongId,
	}); err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	return nil
}

type SetQueueOrderInput struct {
	EntryId string `json:"entry_id" validate:"required"`
	Order   int    `json:"order" validate:"gte=1"`
}

func (s *wsSession) handleSetQueueOrder(ctx context.Context, input SetQueueOrderInput) error {
	if err := s.c.roomService.SetQueueOrder(ctx, &service.SetQueueOrderParams{
		Conn:    s.conn,
		EntryId: input.EntryId,
		Order:   input.Order,
	}); err != nil {
		return fmt.Errorf("failed to reorder queue: %w", err)
	}

	return nil
}

type EscalateInput struct {
	EntryId string `json:"entry_id" validate:"required"`
}

func (s *wsSession) handleEscalate(ctx context.Context, input EscalateInput) error {
	if err := s.c.roomService.Escalate(ctx, &service.EscalateParams{
		Conn:    s.conn,
		EntryId: input.EntryId,
	}); err != nil {
		return fmt.Errorf("failed to escalate queue entry: %w", err)
	}

	return nil
}

type RemoveFromQueueInput struct {
	EntryId string `json:"entry_id" validate:"required"`
}

func (s *wsSession) handleRemoveFromQueue(ctx context.Context, input RemoveFromQueueInput) error {
	if err := s.c.roomService.RemoveFromQueue(ctx, &service.RemoveFromQueueParams{
		Conn:    s.conn,
		EntryId: input.EntryId,
	}); err != nil {
		return fmt.Errorf("failed to remove from queue: %w", err)
	}

	return nil
}
