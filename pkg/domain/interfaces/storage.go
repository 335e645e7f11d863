package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/model"
)

// ErrNotFound is wrapped by every BlobStore when a key is absent
var ErrNotFound = goerr.New("blob not found")

// BlobStore is a durable key-value store of opaque values. Put replaces the
// whole value of a key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// BlobWatcher is implemented by blob stores that can report values changed
// by another writer.
type BlobWatcher interface {
	Watch(ctx context.Context, fn func(key string)) error
}

// SubmissionRepository loads and saves the whole submission history of one
// storage key.
type SubmissionRepository interface {
	// Load returns the stored history. A missing or malformed value is an
	// empty history; only backend failures are returned as errors.
	Load(ctx context.Context, key string) ([]*model.AssessmentSubmission, error)

	// Save replaces the stored history with list
	Save(ctx context.Context, key string, list []*model.AssessmentSubmission) error
}
