package room

import (
	"context"

	"github.com/dag10/DJ-sub000/internal/repository"
	"github.com/dag10/DJ-sub000/internal/room"
)

const shortnameLength = 8

type CreateRoomParams struct {
	Name      string
	Shortname string
	Slots     int
}

type CreateRoomResponse struct {
	Room *room.Room
}

// CreateRoom registers a new room and persists its definition. An empty
// shortname gets a generated one.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	shortname := params.Shortname
	if shortname == "" {
		shortname = s.generator.GenerateRandomString(shortnameLength)
	}
	slots := params.Slots
	if slots <= 0 {
		slots = s.slots
	}

	r := s.newRoom(room.Config{
		Name:      params.Name,
		Shortname: shortname,
		Slots:     slots,
	})
	if err := s.registry.Add(r); err != nil {
		s.logger.InfoContext(ctx, "failed to add room", "shortname", shortname, "error", err)
		return CreateRoomResponse{}, err
	}

	if err := s.store.SaveRoom(ctx, &repository.SaveRoomParams{
		Name:      params.Name,
		Shortname: shortname,
		Slots:     slots,
	}); err != nil {
		s.registry.Remove(shortname)
		s.logger.InfoContext(ctx, "failed to save room", "shortname", shortname, "error", err)
		return CreateRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "room created", "shortname", shortname, "slots", slots)
	return CreateRoomResponse{Room: r}, nil
}

type RemoveRoomParams struct {
	Shortname string
}

// RemoveRoom closes the room, kicking its listeners, and deletes the
// persisted definition.
func (s *service) RemoveRoom(ctx context.Context, params *RemoveRoomParams) error {
	r, err := s.registry.Remove(params.Shortname)
	if err != nil {
		return err
	}

	// capture members before Close strips them
	p := publisher{room: r, logger: s.logger}
	conns := r.Connections()
	ns := r.Close()
	for i := range ns {
		if ns[i].Conns == nil {
			ns[i].Conns = conns
		}
	}
	p.Publish(ns)

	if err := s.store.RemoveRoom(ctx, params.Shortname); err != nil {
		s.logger.InfoContext(ctx, "failed to remove room", "shortname", params.Shortname, "error", err)
		return err
	}

	s.logger.InfoContext(ctx, "room removed", "shortname", params.Shortname)
	return nil
}

type RoomSummary struct {
	Name       string `json:"name"`
	Shortname  string `json:"shortname"`
	Slots      int    `json:"slots"`
	Listeners  int    `json:"listeners"`
	NowPlaying string `json:"now_playing,omitempty"`
}

// ListRooms summarizes every registered room.
func (s *service) ListRooms(ctx context.Context) []RoomSummary {
	rooms := s.registry.List()
	summaries := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summary := RoomSummary{
			Name:      r.Name,
			Shortname: r.Shortname,
			Slots:     r.Slots,
			Listeners: r.NumListeners(),
		}
		if pb := r.CurrentPlayback(); pb != nil {
			summary.NowPlaying = pb.Song.Title
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

type RoomHistoryParams struct {
	Shortname string
	Count     int
}

// RoomHistory returns the room's recent play events, newest first.
func (s *service) RoomHistory(ctx context.Context, params *RoomHistoryParams) ([]repository.PlayEvent, error) {
	if _, err := s.registry.Get(params.Shortname); err != nil {
		return nil, err
	}

	count := params.Count
	if count <= 0 {
		count = 50
	}
	return s.store.GetRecentPlayEvents(ctx, params.Shortname, count)
}

type GetRoomParams struct {
	Shortname string
}

func (s *service) GetRoom(ctx context.Context, params *GetRoomParams) (*room.Room, error) {
	return s.registry.Get(params.Shortname)
}
