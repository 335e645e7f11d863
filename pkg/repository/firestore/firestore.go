package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// blobDocument stores one value per document. Firestore limits documents to
// 1 MiB, which bounds the history size (evidence included) of one key.
type blobDocument struct {
	Payload   []byte    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// Firestore is a BlobStore backed by a Firestore collection
type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.BlobStore = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) blobsCollection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_blobs"
	}
	return "blobs"
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := f.client.Collection(f.blobsCollection()).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get blob", goerr.V("key", key))
	}

	var blob blobDocument
	if err := doc.DataTo(&blob); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal blob document", goerr.V("key", key))
	}
	return blob.Payload, nil
}

func (f *Firestore) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return goerr.New("key is required")
	}
	doc := &blobDocument{
		Payload:   data,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.client.Collection(f.blobsCollection()).Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set blob", goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
