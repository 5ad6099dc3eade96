package ports

import (
	"context"
	"io"
)

// Artifact describes a stored output file.
type Artifact struct {
	Name        string
	ContentType string
	Size        int64
}

// ArtifactStore persists the files produced by an analysis run under fixed
// names. Put overwrites whatever was stored under name.
type ArtifactStore interface {
	// Put stores data under name, replacing any previous content
	Put(ctx context.Context, name, contentType string, data []byte) error

	// Open returns the stored content. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, *Artifact, error)
}
