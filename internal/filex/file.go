// Package filex is the local file-access collaborator: it hands picked
// files to the upload flow and prepares on-disk directories.
package filex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxFileSize caps how much of a local file is read into memory.
const MaxFileSize int64 = 64 << 20

// Source is a handle to a file picked for upload.
type Source interface {
	// Name is a human readable file name, used as the default record title.
	Name() string
	// ReadAll returns the whole file content.
	ReadAll(ctx context.Context) ([]byte, error)
}

// LocalFile is a Source backed by a path on disk.
type LocalFile struct {
	Path string
}

func (f LocalFile) Name() string {
	return filepath.Base(f.Path)
}

func (f LocalFile) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("read %s: file exceeds %d bytes", f.Path, MaxFileSize)
	}
	return data, nil
}

// Bytes is an in-memory Source, for content that is already loaded.
type Bytes struct {
	FileName string
	Data     []byte
}

func (b Bytes) Name() string { return b.FileName }

func (b Bytes) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out, nil
}

// EnsureDir creates dir (and parents) unless it exists and returns its
// absolute path. A relative dir is resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}
