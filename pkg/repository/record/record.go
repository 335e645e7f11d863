package record

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// Repository stores each submission history as one JSON array in a BlobStore
type Repository struct {
	store interfaces.BlobStore
}

var _ interfaces.SubmissionRepository = &Repository{}

func New(store interfaces.BlobStore) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Load(ctx context.Context, key string) ([]*model.AssessmentSubmission, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return []*model.AssessmentSubmission{}, nil
		}
		return nil, goerr.Wrap(err, "failed to load submissions", goerr.V(model.StorageKeyKey, key))
	}

	list, err := decode(data)
	if err != nil {
		logging.From(ctx).Warn("PersistenceReadFailure: stored submissions are malformed, treating as empty",
			"storage_key", key,
			"error", err,
		)
		return []*model.AssessmentSubmission{}, nil
	}
	return list, nil
}

// ErrMalformed is returned by Inspect when a stored value cannot be decoded
var ErrMalformed = goerr.New("stored submissions are malformed")

// Inspect decodes the stored history of key without the lenient fallback of
// Load. A missing key is an empty history.
func (r *Repository) Inspect(ctx context.Context, key string) (int, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return 0, nil
		}
		return 0, goerr.Wrap(err, "failed to load submissions", goerr.V(model.StorageKeyKey, key))
	}
	list, err := decode(data)
	if err != nil {
		return 0, goerr.Wrap(ErrMalformed, err.Error(), goerr.V(model.StorageKeyKey, key))
	}
	return len(list), nil
}

func (r *Repository) Save(ctx context.Context, key string, list []*model.AssessmentSubmission) error {
	if list == nil {
		list = []*model.AssessmentSubmission{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return goerr.Wrap(err, "failed to encode submissions", goerr.V(model.StorageKeyKey, key))
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return goerr.Wrap(err, "failed to save submissions", goerr.V(model.StorageKeyKey, key))
	}
	return nil
}

// decode accepts an empty value or JSON null as an empty history
func decode(data []byte) ([]*model.AssessmentSubmission, error) {
	if len(data) == 0 {
		return []*model.AssessmentSubmission{}, nil
	}

	var list []*model.AssessmentSubmission
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, goerr.Wrap(err, "failed to decode submissions")
	}

	result := make([]*model.AssessmentSubmission, 0, len(list))
	for _, s := range list {
		if s == nil {
			return nil, goerr.New("submission entry is null")
		}
		if s.Sections == nil {
			s.Sections = map[types.SectionKey]model.SectionAnswer{}
		}
		result = append(result, s)
	}
	return result, nil
}
