// Package sink defines the outbound ports export artifacts leave
// through. Implementations own the actual persistence or delivery; the
// formatter's contract ends at bytes plus a MIME type.
package sink

import (
	"context"
	"errors"
)

// ErrDataAccess marks I/O failures in a sink. Callers surface it as a
// single readable message; no retry happens at this layer.
var ErrDataAccess = errors.New("data access failure")

type (
	// BlobSink persists a named blob and returns an opaque locator.
	BlobSink interface {
		SaveBlob(ctx context.Context, name, mimeType string, data []byte) (locator string, err error)
	}

	// TextSharer hands plain-text content to an external share channel.
	TextSharer interface {
		ShareText(ctx context.Context, content, subject string) error
	}
)
