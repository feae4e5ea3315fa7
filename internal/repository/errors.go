package repository

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrSongNotFound  = errors.New("song not found")
	ErrTokenNotFound = errors.New("auth token not found")
)
