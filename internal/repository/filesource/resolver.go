// Package filesource resolves songs to playable files in a media
// directory on local disk.
package filesource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dag10/DJ-sub000/internal/domain"
)

var ErrSourceNotFound = errors.New("source file not found")

type Resolver struct {
	dir string
}

func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// SourcePath maps the song's source id to a file under the media
// directory. Source ids are opaque; path separators are rejected so a
// song can never reference outside the directory.
func (r *Resolver) SourcePath(song domain.Song) (string, error) {
	if song.SourceId == "" || strings.ContainsAny(song.SourceId, `/\`) {
		return "", fmt.Errorf("invalid source id %q", song.SourceId)
	}

	path := filepath.Join(r.dir, song.SourceId)
	if filepath.Ext(path) == "" {
		path += ".mp3"
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, song.SourceId)
		}
		return "", fmt.Errorf("failed to stat source file: %w", err)
	}

	return path, nil
}
