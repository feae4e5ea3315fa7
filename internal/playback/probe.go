package playback

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// MPEG audio bitrate/sample-rate lookup tables (ISO 11172-3 / 13818-3).
var bitrateTable = [2][3][16]int{
	// MPEG-1
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	},
	// MPEG-2 / MPEG-2.5
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	},
}

var sampleRateTable = [3][4]int{
	{44100, 48000, 32000, 0}, // MPEG-1
	{22050, 24000, 16000, 0}, // MPEG-2
	{11025, 12000, 8000, 0},  // MPEG-2.5
}

// ProbeDuration estimates an MP3 file's duration from its first frame
// header and file size. Used as the finish-timer fallback when the song
// record carries no duration.
func ProbeDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	fileSize := stat.Size()

	// Skip the ID3v2 tag if present.
	var header [10]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	offset := int64(0)
	if string(header[:3]) == "ID3" {
		// Synchsafe integer, 4 bytes of 7 bits each.
		tagSize := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
		offset = 10 + tagSize
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	// Scan for the first valid MPEG frame sync (0xFF 0xE0+).
	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return 0, err
	}
	buf = buf[:n]

	for i := 0; i < len(buf)-4; i++ {
		if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
			continue
		}

		hdr := binary.BigEndian.Uint32(buf[i : i+4])

		versionBits := (hdr >> 19) & 0x03
		layerBits := (hdr >> 17) & 0x03
		bitrateIdx := (hdr >> 12) & 0x0F
		sampleIdx := (hdr >> 10) & 0x03

		if bitrateIdx == 0 || bitrateIdx == 15 || sampleIdx == 3 {
			continue
		}

		versionIdx := 0
		sampleVersion := 0
		switch versionBits {
		case 3:
			versionIdx, sampleVersion = 0, 0 // MPEG-1
		case 2:
			versionIdx, sampleVersion = 1, 1 // MPEG-2
		case 0:
			versionIdx, sampleVersion = 1, 2 // MPEG-2.5
		default:
			continue // reserved
		}

		layerIdx := 0
		switch layerBits {
		case 3:
			layerIdx = 0 // Layer I
		case 2:
			layerIdx = 1 // Layer II
		case 1:
			layerIdx = 2 // Layer III
		default:
			continue
		}

		bitrate := bitrateTable[versionIdx][layerIdx][bitrateIdx] * 1000
		sampleRate := sampleRateTable[sampleVersion][sampleIdx]
		if bitrate == 0 || sampleRate == 0 {
			continue
		}

		audioSize := fileSize - offset
		seconds := float64(audioSize*8) / float64(bitrate)

		return time.Duration(seconds * float64(time.Second)), nil
	}

	return 0, fmt.Errorf("no valid MPEG frame found in %s", path)
}
