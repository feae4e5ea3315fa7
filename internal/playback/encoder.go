package playback

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Encoder opens a source audio file and yields the broadcast codec stream.
type Encoder interface {
	Encode(ctx context.Context, sourcePath string) (io.ReadCloser, error)
	ContentType() string
}

// FFmpegEncoder decodes any source ffmpeg understands and re-encodes it to
// constant-bitrate MP3 on stdout. Constant bitrate keeps segment duration
// derivable from segment size.
type FFmpegEncoder struct {
	Path        string
	BitrateKbps int
	SampleRate  int
	Channels    int
}

func NewFFmpegEncoder(path string, bitrateKbps int) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegEncoder{
		Path:        path,
		BitrateKbps: bitrateKbps,
		SampleRate:  44100,
		Channels:    2,
	}
}

func (e *FFmpegEncoder) ContentType() string {
	return "audio/mpeg"
}

func (e *FFmpegEncoder) Encode(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, e.Path,
		"-hide_banner",
		"-loglevel", "error",
		"-i", sourcePath,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", e.BitrateKbps),
		"-ar", fmt.Sprintf("%d", e.SampleRate),
		"-ac", fmt.Sprintf("%d", e.Channels),
		"-f", "mp3",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open encoder stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	return &pipeline{stdout: stdout, cmd: cmd}, nil
}

// pipeline ties the stdout stream to the encoder process so closing the
// stream always reaps the process.
type pipeline struct {
	stdout io.ReadCloser
	cmd    *exec.Cmd
}

func (p *pipeline) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

func (p *pipeline) Close() error {
	p.stdout.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd.Wait()
	return nil
}
