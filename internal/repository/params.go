package repository

type SaveRoomParams struct {
	Name      string
	Shortname string
	Slots     int
}

type SaveUserParams struct {
	Id       string
	Username string
	FullName string
}

type SaveSongParams struct {
	Id         string
	Title      string
	Artist     string
	SourceId   string
	DurationMs int64
}

type SetAuthTokenParams struct {
	Token  string
	UserId string
}

type AppendPlayEventParams struct {
	Room      string
	Kind      string
	Username  string
	SongTitle string
	At        int64
}
