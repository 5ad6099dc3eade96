// Package filestore keeps analysis artifacts in a local directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"sensor-anomaly-service/internal/core/domain"
	ports "sensor-anomaly-service/internal/core/ports/output"
)

type Store struct {
	dir string
}

// New creates dir if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Put(_ context.Context, name, _ string, data []byte) error {
	if err := domain.ValidateArtifactName(name); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

func (s *Store) Open(_ context.Context, name string) (io.ReadCloser, *ports.Artifact, error) {
	if err := domain.ValidateArtifactName(name); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrArtifactNotFound
		}
		return nil, nil, fmt.Errorf("open artifact %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat artifact %s: %w", name, err)
	}
	return f, &ports.Artifact{
		Name:        name,
		ContentType: ContentType(name),
		Size:        info.Size(),
	}, nil
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if filepath.Ext(name) == ".csv" {
		return "text/csv; charset=utf-8"
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
