// Package file saves export artifacts to a local directory, the
// stand-in for a platform downloads folder.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/sink"
)

type Sink struct {
	dir string
}

var _ sink.BlobSink = (*Sink)(nil)

// New creates a sink rooted at dir, creating it if needed.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// SaveBlob writes data under the sink directory and returns the
// resulting path as the locator. The MIME type is informational here;
// the file extension already encodes the format.
func (s *Sink) SaveBlob(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save blob %s: %w: %v", name, sink.ErrDataAccess, err)
	}

	slog.InfoContext(ctx, "export artifact saved",
		"file_name", name,
		"mime_type", mimeType,
		"bytes", len(data),
		"locator", path)
	return path, nil
}
