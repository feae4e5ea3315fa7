// Package playback turns one source audio file at a time into a live
// segment broadcast: an ffmpeg pipeline produces fixed-duration segments
// that fan out to any number of listeners, while a wall-clock timer tracks
// the song's real duration for rotation purposes.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dag10/DJ-sub000/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StatePlaying
	StateEnded
)

type Config struct {
	SegmentSeconds int
	BitrateKbps    int
}

// Engine starts playbacks. One engine is shared by all rooms.
type Engine struct {
	encoder Encoder
	cfg     Config
	logger  *slog.Logger
}

func NewEngine(encoder Encoder, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		encoder: encoder,
		cfg:     cfg,
		logger:  logger,
	}
}

func (e *Engine) ContentType() string {
	return e.encoder.ContentType()
}

// Start opens the source, spawns the transcode producer and arms the
// finish timer. onFinished fires exactly once — when the wall-clock song
// duration elapses or the pipeline fails early — and never after End.
// The timer, not segment delivery progress, is authoritative for rotation.
func (e *Engine) Start(song domain.Song, djConnId, sourcePath string, onFinished func(*SongPlayback)) (*SongPlayback, error) {
	duration := song.Duration
	if duration <= 0 {
		probed, err := ProbeDuration(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("failed to determine song duration: %w", err)
		}
		duration = probed
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := e.encoder.Encode(ctx, sourcePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open transcode pipeline: %w", err)
	}

	segmentDur := time.Duration(e.cfg.SegmentSeconds) * time.Second
	segmentBytes := e.cfg.BitrateKbps * 1000 / 8 * e.cfg.SegmentSeconds

	pb := &SongPlayback{
		Id:        uuid.NewString(),
		Song:      song,
		DJConnId:  djConnId,
		Duration:  duration,
		logger:    e.logger,
		b:         NewBroadcaster(),
		state:     StatePlaying,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go func() {
		err := pb.b.Run(ctx, stream, segmentBytes, segmentDur)
		stream.Close()
		close(pb.done)
		if err != nil && ctx.Err() == nil {
			e.logger.Error("transcode pipeline failed",
				"playback_id", pb.Id,
				"song_id", song.Id,
				"error", err,
			)
			// Abort as if the song finished so the room never wedges.
			pb.finishOnce.Do(func() { onFinished(pb) })
		}
	}()

	pb.timer = time.AfterFunc(duration, func() {
		pb.finishOnce.Do(func() { onFinished(pb) })
	})

	return pb, nil
}

// SongPlayback is one song's live broadcast: Idle -> Playing -> Ended ->
// Idle. Stop and finish both pass through Ended via End, so transcoding
// resources are released exactly once per song.
type SongPlayback struct {
	Id       string
	Song     domain.Song
	DJConnId string
	Duration time.Duration

	logger *slog.Logger
	b      *Broadcaster

	mu        sync.Mutex
	state     State
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	timer     *time.Timer

	finishOnce sync.Once
}

// Broadcaster exposes the segment sequence for listener subscription.
func (pb *SongPlayback) Broadcaster() *Broadcaster {
	return pb.b
}

func (pb *SongPlayback) Playing() bool {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.state == StatePlaying
}

func (pb *SongPlayback) StartedAt() time.Time {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.startedAt
}

func (pb *SongPlayback) Elapsed() time.Duration {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.state == StateIdle && pb.startedAt.IsZero() {
		return 0
	}
	return time.Since(pb.startedAt)
}

// End performs the ended transition: it defuses the finish callback, tears
// down the producer and waits for the pipeline to be fully released. Safe
// to call more than once; only the first call does the work.
func (pb *SongPlayback) End() {
	pb.mu.Lock()
	if pb.state != StatePlaying {
		pb.mu.Unlock()
		return
	}
	pb.state = StateEnded
	pb.mu.Unlock()

	pb.finishOnce.Do(func() {})
	pb.timer.Stop()
	pb.cancel()
	<-pb.done

	pb.mu.Lock()
	pb.state = StateIdle
	pb.mu.Unlock()
}
