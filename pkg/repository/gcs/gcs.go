package gcs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/utils/safe"
	"google.golang.org/api/option"
)

// GCS is a BlobStore that keeps one object per key in a Cloud Storage bucket
type GCS struct {
	client   *storage.Client
	bucket   string
	prefix   string
	endpoint string
}

var _ interfaces.BlobStore = &GCS{}

type Option func(*GCS)

// WithPrefix puts every object under prefix ("isogap/" by default)
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

// WithEndpoint points the client at an emulator such as fake-gcs-server.
// Authentication is disabled when an endpoint is set.
func WithEndpoint(endpoint string) Option {
	return func(g *GCS) {
		g.endpoint = endpoint
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("gcs bucket is required")
	}

	g := &GCS{bucket: bucket, prefix: "isogap/"}
	for _, opt := range opts {
		opt(g)
	}

	var clientOpts []option.ClientOption
	if g.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(g.endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	g.client = client
	return g, nil
}

func (g *GCS) object(key string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(g.prefix + key + ".json")
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to open object", goerr.V("bucket", g.bucket), goerr.V("key", key))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("bucket", g.bucket), goerr.V("key", key))
	}
	return data, nil
}

// Put uploads the whole value; the object only becomes visible once the
// writer is closed successfully.
func (g *GCS) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return goerr.New("key is required")
	}
	w := g.object(key).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", g.bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", g.bucket), goerr.V("key", key))
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
