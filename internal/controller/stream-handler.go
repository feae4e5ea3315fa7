package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dag10/DJ-sub000/internal/playback"
	service "github.com/dag10/DJ-sub000/internal/service/room"
)

// streamLive serves the room's audio from the live edge onward, across
// song boundaries, until the client disconnects.
func (c *controller) streamLive(w http.ResponseWriter, r *http.Request) {
	c.serveStream(w, r, true)
}

// streamCurrent serves only the song playing right now, then ends the
// response.
func (c *controller) streamCurrent(w http.ResponseWriter, r *http.Request) {
	c.serveStream(w, r, false)
}

func (c *controller) serveStream(w http.ResponseWriter, r *http.Request, continuous bool) {
	shortname := chi.URLParam(r, "room")

	rm, err := c.roomService.GetRoom(r.Context(), &service.GetRoomParams{Shortname: shortname})
	if err != nil {
		c.writeJSON(w, http.StatusNotFound, envelope{"error": err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": "streaming unsupported"})
		return
	}

	if !continuous && rm.CurrentPlayback() == nil {
		c.writeJSON(w, http.StatusNotFound, envelope{"error": "no song playing"})
		return
	}

	w.Header().Set("Content-Type", c.contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	c.logger.InfoContext(ctx, "stream started", "room", shortname, "continuous", continuous)
	defer c.logger.InfoContext(ctx, "stream ended", "room", shortname)

	for {
		// captured before the playback read so a song starting in between
		// still wakes the wait below
		started := rm.PlaybackStarted()

		pb := rm.CurrentPlayback()
		if pb == nil {
			if !continuous {
				return
			}
			select {
			case <-started:
				continue
			case <-ctx.Done():
				return
			}
		}

		if err := c.streamPlayback(ctx, w, flusher, pb); err != nil {
			return
		}
		if !continuous {
			return
		}

		select {
		case <-started:
		case <-ctx.Done():
			return
		}
	}
}

// streamPlayback copies one playback's segments to the response from the
// live edge. Writes batch until the listener has drained its backlog,
// then flush.
func (c *controller) streamPlayback(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, pb *playback.SongPlayback) error {
	b := pb.Broadcaster()
	l := b.Subscribe()
	defer b.Unsubscribe(l)

	for {
		segment, ok, err := l.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if _, err := w.Write(segment); err != nil {
			return err
		}
		if l.Pending() == 0 {
			flusher.Flush()
		}
	}
}
