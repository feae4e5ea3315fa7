package domain

import "errors"

var (
	ErrSongNotQueued = errors.New("song is not in the queue")
	ErrInvalidOrder  = errors.New("order is out of range")
)
