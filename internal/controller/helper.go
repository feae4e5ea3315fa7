package controller

import (
	"encoding/json"
	"net/http"
)

type envelope map[string]any

func (c *controller) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Debug("failed to write json response", "error", err)
	}
}

func (c *controller) readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
