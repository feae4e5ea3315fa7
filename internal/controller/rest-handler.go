package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dag10/DJ-sub000/internal/room"
	service "github.com/dag10/DJ-sub000/internal/service/room"
)

func (c *controller) listRooms(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, envelope{"rooms": c.roomService.ListRooms(r.Context())})
}

type createRoomInput struct {
	Name      string `json:"name" validate:"required,max=64"`
	Shortname string `json:"shortname" validate:"max=32"`
	Slots     int    `json:"slots" validate:"gte=0,lte=50"`
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if err := c.readJSON(r, &input); err != nil {
		c.writeJSON(w, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(&input); !ok {
		c.writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	createResp, err := c.roomService.CreateRoom(r.Context(), &service.CreateRoomParams{
		Name:      input.Name,
		Shortname: input.Shortname,
		Slots:     input.Slots,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomExists) {
			c.writeJSON(w, http.StatusConflict, envelope{"error": err.Error()})
			return
		}
		c.logger.InfoContext(r.Context(), "failed to create room", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": err.Error()})
		return
	}

	c.writeJSON(w, http.StatusCreated, envelope{"room": service.RoomSummary{
		Name:      createResp.Room.Name,
		Shortname: createResp.Room.Shortname,
		Slots:     createResp.Room.Slots,
	}})
}

func (c *controller) removeRoom(w http.ResponseWriter, r *http.Request) {
	shortname := chi.URLParam(r, "room")

	if err := c.roomService.RemoveRoom(r.Context(), &service.RemoveRoomParams{Shortname: shortname}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, http.StatusNotFound, envelope{"error": err.Error()})
			return
		}
		c.logger.InfoContext(r.Context(), "failed to remove room", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *controller) roomHistory(w http.ResponseWriter, r *http.Request) {
	shortname := chi.URLParam(r, "room")

	events, err := c.roomService.RoomHistory(r.Context(), &service.RoomHistoryParams{Shortname: shortname})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, http.StatusNotFound, envelope{"error": err.Error()})
			return
		}
		c.logger.InfoContext(r.Context(), "failed to get room history", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": err.Error()})
		return
	}

	c.writeJSON(w, http.StatusOK, envelope{"events": events})
}
