// Package storage holds the media file store and the stager that moves
// files between the final directories and the temporary holding area.
//
// Paths handed to a FileStore are slash-separated keys relative to the
// uploads root, e.g. "images/5f0c...e1.jpg" or "tmp/<session>/5f0c...e1.jpg".
package storage

import (
	"context"
	"io"
)

type FileStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	// Write stores r at path. size may be -1 when unknown.
	Write(ctx context.Context, path string, r io.Reader, size int64, contentType string) (int64, error)
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
	// Delete removes a single file. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	// RemoveAll removes dir and everything below it. A missing dir is not an error.
	RemoveAll(ctx context.Context, dir string) error
	MkdirAll(ctx context.Context, dir string) error
	// List returns the names of the direct children of dir.
	List(ctx context.Context, dir string) ([]string, error)
}
