package playback

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mpeg1Layer3Header is a valid frame sync for MPEG-1 Layer III at
// 128 kbps, 44.1 kHz.
var mpeg1Layer3Header = []byte{0xFF, 0xFB, 0x90, 0x00}

func writeProbeFile(t *testing.T, prefix []byte, audioSize int) string {
	t.Helper()

	data := make([]byte, 0, len(prefix)+audioSize)
	data = append(data, prefix...)
	data = append(data, mpeg1Layer3Header...)
	data = append(data, make([]byte, audioSize-len(mpeg1Layer3Header))...)

	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestProbeDuration(t *testing.T) {
	// 160000 bytes at 128 kbps is exactly 10 seconds.
	path := writeProbeFile(t, nil, 160000)

	d, err := ProbeDuration(path)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, d)
}

func TestProbeDurationSkipsID3Tag(t *testing.T) {
	// ID3v2 header with a 100-byte synchsafe tag size.
	tag := append([]byte("ID3"), 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 100)
	tag = append(tag, make([]byte, 100)...)

	path := writeProbeFile(t, tag, 160000)

	d, err := ProbeDuration(path)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, d)
}

func TestProbeDurationNoFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	_, err := ProbeDuration(path)
	require.Error(t, err)
}
