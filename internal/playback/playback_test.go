package playback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dag10/DJ-sub000/internal/domain"
)

// stubEncoder serves a fixed byte stream instead of exec'ing ffmpeg.
type stubEncoder struct {
	data []byte
	err  error
}

func (s *stubEncoder) Encode(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *stubEncoder) ContentType() string { return "audio/mpeg" }

// failingReader errors after the first read, simulating a dying pipeline.
type failingReader struct {
	reads int
}

func (f *failingReader) Read(b []byte) (int, error) {
	f.reads++
	if f.reads > 1 {
		return 0, errors.New("pipeline died")
	}
	for i := range b {
		b[i] = 'x'
	}
	return len(b), nil
}

func (f *failingReader) Close() error { return nil }

type failingEncoder struct{}

func (failingEncoder) Encode(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	return &failingReader{}, nil
}

func (failingEncoder) ContentType() string { return "audio/mpeg" }

func testEngine(enc Encoder) *Engine {
	return NewEngine(enc, Config{SegmentSeconds: 1, BitrateKbps: 1}, slog.Default())
}

func TestEngineStartAndFinishTimer(t *testing.T) {
	engine := testEngine(&stubEncoder{data: make([]byte, 500)})

	finished := make(chan *SongPlayback, 1)
	song := domain.Song{Id: "s1", Duration: 30 * time.Millisecond}
	pb, err := engine.Start(song, "conn-1", "/dev/null", func(p *SongPlayback) {
		finished <- p
	})
	require.NoError(t, err)
	assert.True(t, pb.Playing())

	select {
	case p := <-finished:
		assert.Equal(t, pb.Id, p.Id)
	case <-time.After(5 * time.Second):
		t.Fatal("finish timer never fired")
	}

	pb.End()
	assert.False(t, pb.Playing())
}

func TestEngineEndDefusesFinish(t *testing.T) {
	engine := testEngine(&stubEncoder{data: make([]byte, 500)})

	var finishes atomic.Int32
	song := domain.Song{Id: "s1", Duration: 50 * time.Millisecond}
	pb, err := engine.Start(song, "conn-1", "/dev/null", func(*SongPlayback) {
		finishes.Add(1)
	})
	require.NoError(t, err)

	pb.End()
	pb.End() // idempotent

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), finishes.Load(), "End must suppress the finish callback")
}

func TestEngineMissingDuration(t *testing.T) {
	engine := testEngine(&stubEncoder{data: make([]byte, 500)})

	// no duration and an unprobeable path is a resource error
	_, err := engine.Start(domain.Song{Id: "s1"}, "conn-1", "/nonexistent/file.mp3", func(*SongPlayback) {})
	assert.Error(t, err)
}

func TestEnginePipelineFailureAbortsAsFinish(t *testing.T) {
	engine := NewEngine(failingEncoder{}, Config{SegmentSeconds: 1, BitrateKbps: 1}, slog.Default())

	finished := make(chan *SongPlayback, 1)
	song := domain.Song{Id: "s1", Duration: time.Hour}
	pb, err := engine.Start(song, "conn-1", "/dev/null", func(p *SongPlayback) {
		finished <- p
	})
	require.NoError(t, err)

	select {
	case p := <-finished:
		assert.Equal(t, pb.Id, p.Id)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline failure did not abort playback")
	}

	pb.End()
}

func TestEngineListenersSeeSegments(t *testing.T) {
	engine := testEngine(&stubEncoder{data: bytes.Repeat([]byte("y"), 1000)})

	song := domain.Song{Id: "s1", Duration: time.Hour}
	pb, err := engine.Start(song, "conn-1", "/dev/null", func(*SongPlayback) {})
	require.NoError(t, err)
	defer pb.End()

	l := pb.Broadcaster().Subscribe()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	segment, ok, err := l.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, segment)
}
