package domain

import "time"

type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type Song struct {
	Id       string        `json:"id"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	SourceId string        `json:"source_id"`
	Duration time.Duration `json:"duration"`
}
