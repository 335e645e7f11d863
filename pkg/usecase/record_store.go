package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/service/metrics"
	"github.com/secmon-lab/isogap/pkg/utils/async"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// RecordStore holds the draft of one assessment domain and its submission
// history. The history is append-only and is written back whole on every
// submission.
type RecordStore struct {
	mu       sync.Mutex
	domain   *model.AssessmentDomain
	repo     interfaces.SubmissionRepository
	notifier interfaces.Notifier
	now      func() time.Time

	draft  *model.AssessmentForm
	cache  []*model.AssessmentSubmission
	cached bool
}

type RecordStoreOption func(*RecordStore)

func WithRecordNotifier(notifier interfaces.Notifier) RecordStoreOption {
	return func(s *RecordStore) {
		s.notifier = notifier
	}
}

func WithRecordClock(now func() time.Time) RecordStoreOption {
	return func(s *RecordStore) {
		s.now = now
	}
}

func NewRecordStore(domain *model.AssessmentDomain, repo interfaces.SubmissionRepository, opts ...RecordStoreOption) *RecordStore {
	s := &RecordStore{
		domain: domain,
		repo:   repo,
		now:    time.Now,
		draft:  model.NewAssessmentForm(domain),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Domain returns the domain definition of the store
func (s *RecordStore) Domain() *model.AssessmentDomain {
	return s.domain
}

// Draft returns a copy of the in-progress answers
func (s *RecordStore) Draft() *model.AssessmentForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Copy()
}

func (s *RecordStore) SetRequirementsMet(key types.SectionKey, v types.RequirementsMet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetRequirementsMet(key, v)
}

func (s *RecordStore) SetComments(key types.SectionKey, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetComments(key, v)
}

func (s *RecordStore) SetActionNeeded(key types.SectionKey, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetActionNeeded(key, v)
}

func (s *RecordStore) SetActionOwner(key types.SectionKey, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetActionOwner(key, v)
}

// SetEvidenceFiles replaces the evidence of a section with files
func (s *RecordStore) SetEvidenceFiles(key types.SectionKey, files []model.EvidenceFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetEvidenceFiles(key, files)
}

// Reset discards the draft
func (s *RecordStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = model.NewAssessmentForm(s.domain)
}

// Validate returns a *model.ValidationError naming the first section
// without a requirements-met answer.
func (s *RecordStore) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate()
}

func (s *RecordStore) validate() error {
	key, ok := s.draft.FirstUnanswered()
	if !ok {
		return nil
	}
	section, _ := s.domain.Section(key)
	return &model.ValidationError{
		Domain: s.domain.ID,
		Key:    key,
		Title:  section.Title,
	}
}

// Submit appends the draft to the history as a new submission and resets
// the draft. When anything fails, the draft and the history are left as
// they were.
func (s *RecordStore) Submit(ctx context.Context) (*model.AssessmentSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(); err != nil {
		metrics.Submissions.WithLabelValues(s.domain.ID.String(), metrics.ResultValidationError).Inc()
		return nil, err
	}

	current, err := s.repo.Load(ctx, s.domain.StorageKey)
	if err != nil {
		metrics.Submissions.WithLabelValues(s.domain.ID.String(), metrics.ResultReadError).Inc()
		metrics.PersistenceFailures.WithLabelValues(s.domain.StorageKey, metrics.OperationLoad).Inc()
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrPersistenceRead, err), "failed to load submissions before submit",
			goerr.V(model.DomainIDKey, s.domain.ID),
			goerr.V(model.StorageKeyKey, s.domain.StorageKey))
	}

	now := s.now().UTC()
	submission := &model.AssessmentSubmission{
		ID:          model.NewSubmissionID(now, current),
		Domain:      s.domain.ID,
		SubmittedAt: now,
		Sections:    s.draft.Sections(),
	}

	next := make([]*model.AssessmentSubmission, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, submission)

	if err := s.repo.Save(ctx, s.domain.StorageKey, next); err != nil {
		metrics.Submissions.WithLabelValues(s.domain.ID.String(), metrics.ResultWriteError).Inc()
		metrics.PersistenceFailures.WithLabelValues(s.domain.StorageKey, metrics.OperationSave).Inc()
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrPersistenceWrite, err), "failed to save submission",
			goerr.V(model.DomainIDKey, s.domain.ID),
			goerr.V(model.StorageKeyKey, s.domain.StorageKey))
	}

	s.cache = next
	s.cached = true
	s.draft = model.NewAssessmentForm(s.domain)
	metrics.Submissions.WithLabelValues(s.domain.ID.String(), metrics.ResultSuccess).Inc()

	logging.From(ctx).Info("assessment submitted",
		"domain_id", s.domain.ID,
		"submission_id", submission.ID,
		"total", len(next),
	)
	s.notify(ctx, &model.Notification{
		Level:     types.NotificationSuccess,
		Title:     "Assessment submitted",
		Message:   fmt.Sprintf("%s assessment has been saved", s.domain.Name),
		Domain:    s.domain.ID,
		View:      s.domain.ReportsView,
		CreatedAt: now,
	})

	return submission.Copy(), nil
}

func (s *RecordStore) notify(ctx context.Context, n *model.Notification) {
	if s.notifier == nil {
		return
	}
	notifier := s.notifier
	async.Dispatch(ctx, "notify", func(ctx context.Context) error {
		return notifier.Notify(ctx, n)
	})
}

// ListSubmissions returns the history in submission order. Read failures
// yield an empty history which is not cached, so the next call retries.
func (s *RecordStore) ListSubmissions(ctx context.Context) []*model.AssessmentSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CopySubmissions(s.load(ctx))
}

// Summary returns the number of submissions and the latest one without its
// evidence data. latest is nil when the history is empty.
func (s *RecordStore) Summary(ctx context.Context) (count int, latest *model.AssessmentSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	if len(list) == 0 {
		return 0, nil
	}
	return len(list), list[len(list)-1].WithoutPayload()
}

// load returns the cached history, reading it from the backend on first use.
// A failed read is reported and yields an empty history that is not cached.
// Callers must hold s.mu and must not modify the result.
func (s *RecordStore) load(ctx context.Context) []*model.AssessmentSubmission {
	if s.cached {
		return s.cache
	}

	list, err := s.repo.Load(ctx, s.domain.StorageKey)
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues(s.domain.StorageKey, metrics.OperationLoad).Inc()
		logging.From(ctx).Warn("PersistenceReadFailure: failed to load submissions, showing none",
			"domain_id", s.domain.ID,
			"storage_key", s.domain.StorageKey,
			"error", err,
		)
		return []*model.AssessmentSubmission{}
	}

	s.cache = list
	s.cached = true
	return list
}

// FindSubmission returns one submission of the history
func (s *RecordStore) FindSubmission(ctx context.Context, id model.SubmissionID) (*model.AssessmentSubmission, error) {
	for _, sub := range s.ListSubmissions(ctx) {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, goerr.Wrap(ErrSubmissionNotFound, "submission not found",
		goerr.V(model.DomainIDKey, s.domain.ID),
		goerr.V(SubmissionIDKey, id))
}

// Invalidate drops the cached history so the next read goes to the backend
func (s *RecordStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.cached = false
}
