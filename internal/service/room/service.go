// Package room exposes the command operations the transport layer calls:
// authentication, room membership, DJ rotation, queue edits and votes.
// Each operation delegates to the room state machine, publishes the
// notifications it returns, and persists what must outlive the process.
package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dag10/DJ-sub000/internal/playback"
	"github.com/dag10/DJ-sub000/internal/repository"
	"github.com/dag10/DJ-sub000/internal/room"
	"github.com/dag10/DJ-sub000/pkg/randstr"
)

var (
	ErrNotInRoom         = errors.New("not in a room")
	ErrAlreadyInRoom     = errors.New("already in a room")
	ErrQueueLimitReached = errors.New("queue limit reached")
	ErrInvalidToken      = errors.New("invalid auth token")
)

type iStore interface {
	// rooms
	SaveRoom(context.Context, *repository.SaveRoomParams) error
	GetRoom(ctx context.Context, shortname string) (repository.RoomDef, error)
	GetRoomShortnames(context.Context) ([]string, error)
	RemoveRoom(ctx context.Context, shortname string) error
	// users and auth
	GetUser(ctx context.Context, userId string) (repository.User, error)
	GetUserIdByAuthToken(ctx context.Context, token string) (string, error)
	// songs and queues
	GetSong(ctx context.Context, songId string) (repository.Song, error)
	GetQueue(ctx context.Context, userId string) ([]string, error)
	SaveQueue(ctx context.Context, userId string, songIds []string) error
	// play history
	AppendPlayEvent(context.Context, *repository.AppendPlayEventParams) error
	GetRecentPlayEvents(ctx context.Context, shortname string, count int) ([]repository.PlayEvent, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type service struct {
	store      iStore
	registry   *room.Registry
	engine     *playback.Engine
	source     room.SongSource
	generator  iGenerator
	logger     *slog.Logger
	slots      int
	queueLimit int
}

func NewService(store iStore, registry *room.Registry, engine *playback.Engine, source room.SongSource, logger *slog.Logger, slots, queueLimit int) *service {
	s := service{
		store:      store,
		registry:   registry,
		engine:     engine,
		source:     source,
		logger:     logger,
		slots:      slots,
		queueLimit: queueLimit,
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

// newRoom builds a Room wired with the publisher and the play-history
// sink.
func (s *service) newRoom(cfg room.Config) *room.Room {
	r := room.New(cfg, s.engine, s.source, s.logger)
	r.SetPublisher(publisher{room: r, logger: s.logger})
	r.SetActivitySink(s.recordActivity)
	return r
}

// recordActivity appends room activity to the play history off the room
// lock's critical path.
func (s *service) recordActivity(shortname string, a room.Activity) {
	go func() {
		err := s.store.AppendPlayEvent(context.Background(), &repository.AppendPlayEventParams{
			Room:      shortname,
			Kind:      string(a.Kind),
			Username:  a.Username,
			SongTitle: a.SongTitle,
			At:        a.At.Unix(),
		})
		if err != nil {
			s.logger.Error("failed to append play event", "room", shortname, "error", err)
		}
	}()
}

// Bootstrap rebuilds the registry from the persisted room definitions.
func (s *service) Bootstrap(ctx context.Context) error {
	shortnames, err := s.store.GetRoomShortnames(ctx)
	if err != nil {
		return err
	}

	for _, shortname := range shortnames {
		def, err := s.store.GetRoom(ctx, shortname)
		if err != nil {
			s.logger.Error("failed to load room", "shortname", shortname, "error", err)
			continue
		}

		slots := def.Slots
		if slots <= 0 {
			slots = s.slots
		}
		r := s.newRoom(room.Config{
			Name:      def.Name,
			Shortname: def.Shortname,
			Slots:     slots,
		})
		if err := s.registry.Add(r); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "room loaded", "shortname", shortname, "slots", slots)
	}

	return nil
}
