// Package evidence converts tally-sheet photographs into the base64
// payloads the backend expects. Encoding is a pure transform over file
// I/O: no prefix, no media-type header, just the payload bytes.
package evidence

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// ErrRead is returned when an evidence file cannot be read. The submit
// that triggered the read is aborted before any network call.
var ErrRead = errors.New("evidence file unreadable")

// Encoder turns evidence files into transport-safe payloads
type Encoder struct {
	logger *zap.Logger
}

// NewEncoder creates a new encoder
func NewEncoder(logger *zap.Logger) *Encoder {
	return &Encoder{logger: logger}
}

// Encode reads the file at path and returns its content as standard
// base64. An empty path means no file was selected and yields (nil,
// nil), never an empty string and never an error. The file is read on
// every call; encoded bytes are not cached between submit attempts.
func (e *Encoder) Encode(ctx context.Context, path string) (*string, error) {
	if path == "" {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("Failed to read evidence file",
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	encoded := base64.StdEncoding.EncodeToString(content)
	return &encoded, nil
}

// EncodeAll encodes the given files concurrently and returns the
// payloads in input order. Any single failure fails the whole batch;
// no partial result is returned.
func (e *Encoder) EncodeAll(ctx context.Context, paths ...string) ([]*string, error) {
	results := make([]*string, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i], errs[i] = e.Encode(ctx, path)
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
