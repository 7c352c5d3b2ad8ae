package internal

import (
	"context"
	"io"
)

// Repository is durable storage for export artifacts. Implementations
// must not expose a partially written artifact at its final path.
type Repository interface {
	Write(ctx context.Context, path string, reader io.Reader) error
}

// Preserver accumulates the records of a single collection and emits one
// export artifact through a Repository. Preserve may buffer or stream
// depending on the implementation; Flush finalizes the artifact. Closing a
// preserver that was never flushed discards the artifact.
type Preserver interface {
	Preserve(ctx context.Context, record *Record) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
	Columns() []string
	Path() string
	// Bytes reports the artifact size once Flush has completed.
	Bytes() int64
}
