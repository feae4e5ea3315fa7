package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// Broadcaster holds the append-only segment sequence for one song and fans
// "segment available" signals out to subscribed listeners. Segments stay in
// memory for the lifetime of the song; songs are bounded-length so the
// buffer is too.
type Broadcaster struct {
	mu       sync.Mutex
	segments [][]byte
	finished bool
	err      error
	subs     map[*Listener]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[*Listener]struct{}),
	}
}

// Run reads fixed-size segments from r and appends them at the pace of real
// playback, one segment per segment duration. It returns when the source is
// drained, r fails, or ctx is cancelled. The broadcaster is always marked
// finished on return so blocked listeners wake up.
func (b *Broadcaster) Run(ctx context.Context, r io.Reader, segmentBytes int, segmentDur time.Duration) error {
	ticker := time.NewTicker(segmentDur)
	defer ticker.Stop()

	first := true
	for {
		buf := make([]byte, segmentBytes)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if !first {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					b.finish(ctx.Err())
					return ctx.Err()
				}
			}
			first = false
			b.append(buf[:n])
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			b.finish(nil)
			return nil
		default:
			if ctx.Err() != nil {
				b.finish(ctx.Err())
				return ctx.Err()
			}
			b.finish(err)
			return err
		}

		select {
		case <-ctx.Done():
			b.finish(ctx.Err())
			return ctx.Err()
		default:
		}
	}
}

func (b *Broadcaster) append(segment []byte) {
	b.mu.Lock()
	b.segments = append(b.segments, segment)
	for l := range b.subs {
		l.signal()
	}
	b.mu.Unlock()
}

func (b *Broadcaster) finish(err error) {
	b.mu.Lock()
	if !b.finished {
		b.finished = true
		b.err = err
		for l := range b.subs {
			l.signal()
		}
	}
	b.mu.Unlock()
}

// SegmentCount returns the number of segments produced so far.
func (b *Broadcaster) SegmentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.segments)
}

// Finished reports whether production has ended, and with what error.
func (b *Broadcaster) Finished() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished, b.err
}

// Subscribe attaches a listener at the live edge: it will only see segments
// produced after this call, never history.
func (b *Broadcaster) Subscribe() *Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(len(b.segments))
}

// SubscribeFrom attaches a listener resuming at its previously-seen cursor.
// Cursors past the live edge are clamped to it.
func (b *Broadcaster) SubscribeFrom(cursor int) *Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(b.segments) {
		cursor = len(b.segments)
	}
	return b.subscribeLocked(cursor)
}

func (b *Broadcaster) subscribeLocked(cursor int) *Listener {
	l := &Listener{
		b:      b,
		cursor: cursor,
		notify: make(chan struct{}, 1),
	}
	b.subs[l] = struct{}{}
	return l
}

// Unsubscribe detaches the listener without blocking the producer.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.subs, l)
	b.mu.Unlock()
	l.signal()
}

// Listener is one subscriber's read position into the segment sequence.
// Each listener advances independently of all others.
type Listener struct {
	b      *Broadcaster
	cursor int
	notify chan struct{}
}

// signal coalesces: a pending unread signal is not duplicated.
func (l *Listener) signal() {
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Cursor returns the listener's current read position.
func (l *Listener) Cursor() int {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	return l.cursor
}

// Pending returns how many produced segments the listener has not read yet.
func (l *Listener) Pending() int {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	return len(l.b.segments) - l.cursor
}

func (l *Listener) take() ([]byte, bool, bool) {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	if _, subscribed := l.b.subs[l]; !subscribed {
		return nil, false, false
	}
	if l.cursor < len(l.b.segments) {
		segment := l.b.segments[l.cursor]
		l.cursor++
		return segment, true, true
	}
	if l.b.finished {
		return nil, false, false
	}
	return nil, false, true
}

// Next returns the segment at the listener's cursor and advances it,
// blocking until one is available. It returns ok=false when production has
// finished and the cursor reached the end, or the listener was detached.
func (l *Listener) Next(ctx context.Context) ([]byte, bool, error) {
	for {
		segment, ok, alive := l.take()
		if ok {
			return segment, true, nil
		}
		if !alive {
			return nil, false, nil
		}

		select {
		case <-l.notify:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}
