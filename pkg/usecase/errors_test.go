package usecase_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/usecase"
)

func TestErrors_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrUnknownView", usecase.ErrUnknownView},
		{"ErrUnknownDomain", usecase.ErrUnknownDomain},
		{"ErrSubmissionNotFound", usecase.ErrSubmissionNotFound},
		{"ErrEvidenceNotFound", usecase.ErrEvidenceNotFound},
		{"ErrUnknownField", usecase.ErrUnknownField},
		{"ErrPersistenceRead", usecase.ErrPersistenceRead},
		{"ErrPersistenceWrite", usecase.ErrPersistenceWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.err).NotNil()
		})
	}
}

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	gt.Bool(t, errors.Is(usecase.ErrPersistenceRead, usecase.ErrPersistenceWrite)).False()
	gt.Bool(t, errors.Is(usecase.ErrSubmissionNotFound, usecase.ErrEvidenceNotFound)).False()
	gt.Bool(t, errors.Is(usecase.ErrUnknownView, usecase.ErrUnknownDomain)).False()
}

func TestErrors_PersistenceKeepsCause(t *testing.T) {
	cause := goerr.New("disk full")
	err := goerr.Wrap(fmt.Errorf("%w: %w", usecase.ErrPersistenceWrite, cause), "failed to save")

	gt.Error(t, err).Is(usecase.ErrPersistenceWrite)
	gt.Error(t, err).Is(cause)
}
