package room

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadyDJ        = errors.New("already a DJ")
	ErrNotDJ            = errors.New("not a DJ")
	ErrDJSlotsFull      = errors.New("all DJ slots are full")
	ErrQueueEmpty       = errors.New("queue is empty")
	ErrAlreadyVoted     = errors.New("already voted for this song")
	ErrDJCannotVote     = errors.New("the current DJ cannot vote")
	ErrNotCurrentDJ     = errors.New("only the current DJ can skip")
	ErrNoSongPlaying    = errors.New("no song is playing")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomExists       = errors.New("room already exists")
)
