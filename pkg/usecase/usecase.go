package usecase

import (
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
)

type UseCases struct {
	Session *Session
	Export  *ExportUseCase
}

func New(catalog *model.Catalog, routes *model.RouteTable, history interfaces.History, repo interfaces.SubmissionRepository, opts ...SessionOption) *UseCases {
	return &UseCases{
		Session: NewSession(catalog, routes, history, repo, opts...),
		Export:  NewExportUseCase(catalog, repo),
	}
}
