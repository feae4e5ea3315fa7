package repository

// RoomDef is the persisted definition of a room; the in-memory Room is
// rebuilt from these on startup.
type RoomDef struct {
	Name      string `redis:"name"`
	Shortname string `redis:"shortname"`
	Slots     int    `redis:"slots"`
}

type User struct {
	Id       string `redis:"id"`
	Username string `redis:"username"`
	FullName string `redis:"full_name"`
}

type Song struct {
	Id         string `redis:"id"`
	Title      string `redis:"title"`
	Artist     string `redis:"artist"`
	SourceId   string `redis:"source_id"`
	DurationMs int64  `redis:"duration_ms"`
}

// PlayEvent is one row of a room's play history.
type PlayEvent struct {
	Kind      string `json:"kind"`
	Room      string `json:"room"`
	Username  string `json:"username,omitempty"`
	SongTitle string `json:"song_title,omitempty"`
	At        int64  `json:"at"`
}
