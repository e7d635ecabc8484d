package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

type FileSource struct {
	dir string
}

func (s *FileSource) Dir() string {
	return s.dir
}

func (s *FileSource) Fetch(ctx context.Context) ([]Entry, error) {
	return fetchEntries(ctx, s.open)
}

func (s *FileSource) Packs(ctx context.Context) ([]Pack, error) {
	return fetchPacks(ctx, s.open)
}

func (s *FileSource) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, errMissing)
		}
		return nil, err
	}
	return f, nil
}
