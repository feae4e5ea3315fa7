// Package controller exposes the HTTP surface: the websocket command
// channel, the audio stream endpoints and the admin REST API.
package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dag10/DJ-sub000/internal/repository"
	"github.com/dag10/DJ-sub000/internal/room"
	service "github.com/dag10/DJ-sub000/internal/service/room"
	"github.com/dag10/DJ-sub000/pkg/validator"
)

type iRoomService interface {
	Connect(context.Context, *service.ConnectParams) (service.ConnectResponse, error)
	Disconnect(context.Context, *service.DisconnectParams)
	Auth(context.Context, *service.AuthParams) (service.AuthResponse, error)
	JoinRoom(context.Context, *service.JoinRoomParams) (service.JoinRoomResponse, error)
	LeaveRoom(context.Context, *service.LeaveRoomParams) error
	BeginDJ(context.Context, *service.BeginDJParams) error
	EndDJ(context.Context, *service.EndDJParams) error
	Skip(context.Context, *service.SkipParams) error
	PostLike(context.Context, *service.VoteParams) error
	RemoveLike(context.Context, *service.VoteParams) error
	PostSkipVote(context.Context, *service.VoteParams) error
	RemoveSkipVote(context.Context, *service.VoteParams) error
	AddToQueue(context.Context, *service.AddToQueueParams) (service.AddToQueueResponse, error)
	SetQueueOrder(context.Context, *service.SetQueueOrderParams) error
	Escalate(context.Context, *service.EscalateParams) error
	RemoveFromQueue(context.Context, *service.RemoveFromQueueParams) error
	CreateRoom(context.Context, *service.CreateRoomParams) (service.CreateRoomResponse, error)
	RemoveRoom(context.Context, *service.RemoveRoomParams) error
	ListRooms(context.Context) []service.RoomSummary
	RoomHistory(context.Context, *service.RoomHistoryParams) ([]repository.PlayEvent, error)
	GetRoom(context.Context, *service.GetRoomParams) (*room.Room, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	contentType string
}

func NewController(roomService iRoomService, contentType string, logger *slog.Logger) *controller {
	return &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
		contentType: contentType,
	}
}
