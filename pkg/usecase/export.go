package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// ExportUseCase reads submission histories straight from the repository,
// bypassing any session cache.
type ExportUseCase struct {
	catalog *model.Catalog
	repo    interfaces.SubmissionRepository
}

func NewExportUseCase(catalog *model.Catalog, repo interfaces.SubmissionRepository) *ExportUseCase {
	return &ExportUseCase{catalog: catalog, repo: repo}
}

// DomainExport is the history of one domain
type DomainExport struct {
	Domain      types.DomainID                `json:"domain" yaml:"domain"`
	StorageKey  string                        `json:"storageKey" yaml:"storageKey"`
	Submissions []*model.AssessmentSubmission `json:"submissions" yaml:"submissions"`
}

// Export returns the histories of the given domains, or of every domain
// when none is given. Evidence payloads are dropped unless withPayload.
func (uc *ExportUseCase) Export(ctx context.Context, domainIDs []types.DomainID, withPayload bool) ([]*DomainExport, error) {
	domains := uc.catalog.List()
	if len(domainIDs) > 0 {
		domains = make([]*model.AssessmentDomain, 0, len(domainIDs))
		for _, id := range domainIDs {
			d, err := uc.catalog.Get(id)
			if err != nil {
				return nil, goerr.Wrap(ErrUnknownDomain, err.Error(), goerr.V(model.DomainIDKey, id))
			}
			domains = append(domains, d)
		}
	}

	result := make([]*DomainExport, 0, len(domains))
	for _, d := range domains {
		list, err := uc.repo.Load(ctx, d.StorageKey)
		if err != nil {
			return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrPersistenceRead, err), "failed to export submissions",
				goerr.V(model.DomainIDKey, d.ID),
				goerr.V(model.StorageKeyKey, d.StorageKey))
		}
		if !withPayload {
			list = withoutPayload(list)
		}
		result = append(result, &DomainExport{
			Domain:      d.ID,
			StorageKey:  d.StorageKey,
			Submissions: list,
		})
	}
	return result, nil
}

func withoutPayload(list []*model.AssessmentSubmission) []*model.AssessmentSubmission {
	result := make([]*model.AssessmentSubmission, len(list))
	for i, s := range list {
		result[i] = s.WithoutPayload()
	}
	return result
}
