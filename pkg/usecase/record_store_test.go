package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/repository/memory"
	"github.com/secmon-lab/isogap/pkg/repository/record"
	"github.com/secmon-lab/isogap/pkg/usecase"
)

// fourSectionDomain is context-organization: sections 4.1 to 4.4
func fourSectionDomain(t *testing.T) *model.AssessmentDomain {
	t.Helper()
	d, err := model.DefaultCatalog().Get(types.DomainContextOrganization)
	gt.NoError(t, err).Required()
	gt.Array(t, d.Sections).Length(4).Required()
	return d
}

// controlledRepo wraps a working repository and injects failures
type controlledRepo struct {
	mu      sync.Mutex
	inner   *record.Repository
	loadErr error
	saveErr error
	saves   int
}

func newControlledRepo() *controlledRepo {
	return &controlledRepo{inner: record.New(memory.New())}
}

func (r *controlledRepo) Load(ctx context.Context, key string) ([]*model.AssessmentSubmission, error) {
	r.mu.Lock()
	err := r.loadErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.inner.Load(ctx, key)
}

func (r *controlledRepo) Save(ctx context.Context, key string, list []*model.AssessmentSubmission) error {
	r.mu.Lock()
	err := r.saveErr
	r.saves++
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.inner.Save(ctx, key, list)
}

func (r *controlledRepo) setLoadErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErr = err
}

func (r *controlledRepo) setSaveErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

type mockNotifier struct {
	ch chan *model.Notification
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{ch: make(chan *model.Notification, 16)}
}

func (m *mockNotifier) Notify(ctx context.Context, n *model.Notification) error {
	m.ch <- n
	return nil
}

func answerAll(t *testing.T, store *usecase.RecordStore, v types.RequirementsMet) {
	t.Helper()
	for _, s := range store.Domain().Sections {
		gt.NoError(t, store.SetRequirementsMet(s.Key, v)).Required()
	}
}

func TestRecordStoreSetters(t *testing.T) {
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())

	gt.NoError(t, store.SetRequirementsMet("section1", types.RequirementsNo)).Required()
	gt.NoError(t, store.SetComments("section1", "policy not reviewed")).Required()
	gt.NoError(t, store.SetActionNeeded("section1", "schedule review")).Required()
	gt.NoError(t, store.SetActionOwner("section1", "CISO")).Required()

	a, ok := store.Draft().Answer("section1")
	gt.Bool(t, ok).True().Required()
	gt.Value(t, a.RequirementsMet).Equal(types.RequirementsNo)
	gt.Value(t, a.Comments).Equal("policy not reviewed")
	gt.Value(t, a.ActionNeeded).Equal("schedule review")
	gt.Value(t, a.ActionOwner).Equal("CISO")

	other, ok := store.Draft().Answer("section2")
	gt.Bool(t, ok).True().Required()
	gt.Bool(t, other.IsBlank()).True()
}

func TestRecordStoreUnknownSection(t *testing.T) {
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())
	before := store.Draft()

	gt.Error(t, store.SetComments("section9", "x")).Is(model.ErrUnknownSection)
	gt.Error(t, store.SetRequirementsMet("section9", types.RequirementsYes)).Is(model.ErrUnknownSection)
	gt.Error(t, store.SetEvidenceFiles("section9", nil)).Is(model.ErrUnknownSection)

	gt.Value(t, store.Draft().Sections()).Equal(before.Sections())
}

func TestRecordStoreDraftIsACopy(t *testing.T) {
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())

	draft := store.Draft()
	gt.NoError(t, draft.SetComments("section1", "changed outside")).Required()

	a, _ := store.Draft().Answer("section1")
	gt.Value(t, a.Comments).Equal("")
}

func TestRecordStoreEvidenceReplace(t *testing.T) {
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())

	a := model.NewEvidenceFile("a.pdf", "application/pdf", []byte("a"))
	b := model.NewEvidenceFile("b.pdf", "application/pdf", []byte("bb"))
	c := model.NewEvidenceFile("c.pdf", "application/pdf", []byte("ccc"))

	gt.NoError(t, store.SetEvidenceFiles("section2", []model.EvidenceFile{a})).Required()
	gt.NoError(t, store.SetEvidenceFiles("section2", []model.EvidenceFile{b, c})).Required()

	answer, _ := store.Draft().Answer("section2")
	gt.Array(t, answer.EvidenceFiles).Length(2).Required()
	gt.Value(t, answer.EvidenceFiles[0].Name).Equal("b.pdf")
	gt.Value(t, answer.EvidenceFiles[1].Name).Equal("c.pdf")
}

func TestRecordStoreValidationNamesFirstUnansweredSection(t *testing.T) {
	ctx := context.Background()
	repo := newControlledRepo()
	d := fourSectionDomain(t)
	store := usecase.NewRecordStore(d, repo)

	for _, key := range []types.SectionKey{"section1", "section2", "section3"} {
		gt.NoError(t, store.SetRequirementsMet(key, types.RequirementsYes)).Required()
	}

	_, err := store.Submit(ctx)
	gt.Error(t, err).Is(model.ErrRequirementsNotAnswered)

	var verr *model.ValidationError
	gt.Bool(t, errors.As(err, &verr)).True().Required()
	gt.Value(t, verr.Key).Equal(types.SectionKey("section4"))
	gt.Value(t, verr.Title).Equal(d.Sections[3].Title)
	gt.String(t, err.Error()).Contains("4.4 Information security management system")

	gt.Array(t, store.ListSubmissions(ctx)).Length(0)
	gt.Value(t, repo.saves).Equal(0)

	// the draft is kept for correction
	a, _ := store.Draft().Answer("section1")
	gt.Value(t, a.RequirementsMet).Equal(types.RequirementsYes)
}

func TestRecordStoreValidationOrder(t *testing.T) {
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())
	gt.NoError(t, store.SetRequirementsMet("section1", types.RequirementsYes)).Required()
	gt.NoError(t, store.SetRequirementsMet("section3", types.RequirementsNo)).Required()

	var verr *model.ValidationError
	gt.Bool(t, errors.As(store.Validate(), &verr)).True().Required()
	gt.Value(t, verr.Key).Equal(types.SectionKey("section2"))
}

func TestRecordStoreSubmit(t *testing.T) {
	ctx := context.Background()
	notifier := newMockNotifier()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo(),
		usecase.WithRecordNotifier(notifier),
		usecase.WithRecordClock(func() time.Time { return now }),
	)

	answerAll(t, store, types.RequirementsYes)
	gt.NoError(t, store.SetActionOwner("section2", "J. Smith")).Required()

	sub, err := store.Submit(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, sub.Domain).Equal(types.DomainContextOrganization)
	gt.Bool(t, sub.SubmittedAt.Equal(now)).True()
	gt.Value(t, sub.ID).Equal(model.SubmissionID("1714555800000"))

	list := store.ListSubmissions(ctx)
	gt.Array(t, list).Length(1).Required()
	section2, ok := list[0].Section("section2")
	gt.Bool(t, ok).True().Required()
	gt.Value(t, section2.ActionOwner).Equal("J. Smith")

	gt.Bool(t, store.Draft().IsBlank()).True()

	select {
	case n := <-notifier.ch:
		gt.Value(t, n.Level).Equal(types.NotificationSuccess)
		gt.Value(t, n.Domain).Equal(types.DomainContextOrganization)
		gt.Value(t, n.View).Equal(types.ViewContextOrganizationReports)
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestRecordStoreSubmissionIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo(),
		usecase.WithRecordClock(func() time.Time { return fixed }),
	)

	for range 3 {
		answerAll(t, store, types.RequirementsNo)
		_, err := store.Submit(ctx)
		gt.NoError(t, err).Required()
	}

	list := store.ListSubmissions(ctx)
	gt.Array(t, list).Length(3).Required()
	seen := map[model.SubmissionID]bool{}
	for _, s := range list {
		gt.Bool(t, seen[s.ID]).False()
		seen[s.ID] = true
	}
	gt.Value(t, list[2].ID).Equal(model.SubmissionID("1714555800002"))
}

func TestRecordStoreSaveFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	repo := newControlledRepo()
	store := usecase.NewRecordStore(fourSectionDomain(t), repo)

	answerAll(t, store, types.RequirementsYes)
	_, err := store.Submit(ctx)
	gt.NoError(t, err).Required()

	answerAll(t, store, types.RequirementsNo)
	gt.NoError(t, store.SetComments("section1", "second round")).Required()

	writeErr := goerr.New("disk full")
	repo.setSaveErr(writeErr)

	_, err = store.Submit(ctx)
	gt.Error(t, err).Is(usecase.ErrPersistenceWrite)
	gt.Error(t, err).Is(writeErr)

	a, _ := store.Draft().Answer("section1")
	gt.Value(t, a.Comments).Equal("second round")
	gt.Value(t, a.RequirementsMet).Equal(types.RequirementsNo)
	gt.Array(t, store.ListSubmissions(ctx)).Length(1)

	// recovers once the backend does
	repo.setSaveErr(nil)
	_, err = store.Submit(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, store.ListSubmissions(ctx)).Length(2)
}

func TestRecordStoreLoadFailureOnSubmit(t *testing.T) {
	ctx := context.Background()
	repo := newControlledRepo()
	store := usecase.NewRecordStore(fourSectionDomain(t), repo)
	answerAll(t, store, types.RequirementsYes)

	repo.setLoadErr(goerr.New("connection refused"))
	_, err := store.Submit(ctx)
	gt.Error(t, err).Is(usecase.ErrPersistenceRead)
	gt.Value(t, repo.saves).Equal(0)
	gt.Bool(t, store.Draft().IsBlank()).False()
}

func TestRecordStoreListFailureIsNotCached(t *testing.T) {
	ctx, buf := newLogContext()
	repo := newControlledRepo()
	d := fourSectionDomain(t)

	// a previous process stored one submission
	seed := usecase.NewRecordStore(d, repo)
	answerAll(t, seed, types.RequirementsYes)
	_, err := seed.Submit(ctx)
	gt.NoError(t, err).Required()

	store := usecase.NewRecordStore(d, repo)
	repo.setLoadErr(goerr.New("timeout"))
	gt.Array(t, store.ListSubmissions(ctx)).Length(0)
	gt.String(t, buf.String()).Contains("PersistenceReadFailure")

	repo.setLoadErr(nil)
	gt.Array(t, store.ListSubmissions(ctx)).Length(1)
}

func TestRecordStoreSummary(t *testing.T) {
	ctx, buf := newLogContext()
	repo := newControlledRepo()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	store := usecase.NewRecordStore(fourSectionDomain(t), repo,
		usecase.WithRecordClock(func() time.Time {
			now = now.Add(time.Minute)
			return now
		}),
	)

	count, latest := store.Summary(ctx)
	gt.Value(t, count).Equal(0)
	gt.Value(t, latest).Nil()

	answerAll(t, store, types.RequirementsYes)
	_, err := store.Submit(ctx)
	gt.NoError(t, err).Required()

	answerAll(t, store, types.RequirementsNo)
	policy := model.NewEvidenceFile("policy.pdf", "application/pdf", []byte("%PDF"))
	gt.NoError(t, store.SetEvidenceFiles("section1", []model.EvidenceFile{policy})).Required()
	second, err := store.Submit(ctx)
	gt.NoError(t, err).Required()

	count, latest = store.Summary(ctx)
	gt.Value(t, count).Equal(2)
	gt.Value(t, latest).NotNil().Required()
	gt.Value(t, latest.ID).Equal(second.ID)

	section1, ok := latest.Section("section1")
	gt.Bool(t, ok).True().Required()
	gt.Value(t, section1.RequirementsMet).Equal(types.RequirementsNo)
	gt.Array(t, section1.EvidenceFiles).Length(1).Required()
	gt.Value(t, section1.EvidenceFiles[0].Name).Equal("policy.pdf")
	gt.Value(t, section1.EvidenceFiles[0].Size).Equal(int64(4))
	gt.Value(t, len(section1.EvidenceFiles[0].Data)).Equal(0)

	// the stored history keeps the payload
	stored, err := store.FindSubmission(ctx, second.ID)
	gt.NoError(t, err).Required()
	file, ok := stored.Evidence(policy.ID)
	gt.Bool(t, ok).True().Required()
	gt.Value(t, string(file.Data)).Equal("%PDF")

	t.Run("load failure is reported and not cached", func(t *testing.T) {
		fresh := usecase.NewRecordStore(fourSectionDomain(t), repo)
		repo.setLoadErr(goerr.New("timeout"))
		count, latest := fresh.Summary(ctx)
		gt.Value(t, count).Equal(0)
		gt.Value(t, latest).Nil()
		gt.String(t, buf.String()).Contains("PersistenceReadFailure")

		repo.setLoadErr(nil)
		count, _ = fresh.Summary(ctx)
		gt.Value(t, count).Equal(2)
	})
}

func TestRecordStoreMalformedHistory(t *testing.T) {
	ctx, buf := newLogContext()
	blobs := memory.New()
	d := fourSectionDomain(t)
	gt.NoError(t, blobs.Put(ctx, d.StorageKey, []byte("not json at all"))).Required()

	store := usecase.NewRecordStore(d, record.New(blobs))
	gt.Array(t, store.ListSubmissions(ctx)).Length(0)
	gt.Bool(t, strings.Contains(buf.String(), "PersistenceReadFailure")).True()

	answerAll(t, store, types.RequirementsYes)
	_, err := store.Submit(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, store.ListSubmissions(ctx)).Length(1)

	reloaded := usecase.NewRecordStore(d, record.New(blobs))
	gt.Array(t, reloaded.ListSubmissions(ctx)).Length(1)
}

func TestRecordStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	repo := newControlledRepo()
	d := fourSectionDomain(t)

	reader := usecase.NewRecordStore(d, repo)
	gt.Array(t, reader.ListSubmissions(ctx)).Length(0)

	writer := usecase.NewRecordStore(d, repo)
	answerAll(t, writer, types.RequirementsYes)
	_, err := writer.Submit(ctx)
	gt.NoError(t, err).Required()

	// cached until invalidated
	gt.Array(t, reader.ListSubmissions(ctx)).Length(0)
	reader.Invalidate()
	gt.Array(t, reader.ListSubmissions(ctx)).Length(1)
}

func TestRecordStoreReset(t *testing.T) {
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())
	answerAll(t, store, types.RequirementsYes)
	gt.NoError(t, store.SetEvidenceFiles("section1", []model.EvidenceFile{
		model.NewEvidenceFile("a.pdf", "application/pdf", []byte("a")),
	})).Required()

	store.Reset()
	gt.Bool(t, store.Draft().IsBlank()).True()
}

func TestRecordStoreFindSubmission(t *testing.T) {
	ctx := context.Background()
	store := usecase.NewRecordStore(fourSectionDomain(t), newControlledRepo())
	answerAll(t, store, types.RequirementsYes)
	sub, err := store.Submit(ctx)
	gt.NoError(t, err).Required()

	found, err := store.FindSubmission(ctx, sub.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, found.ID).Equal(sub.ID)

	_, err = store.FindSubmission(ctx, "0")
	gt.Error(t, err).Is(usecase.ErrSubmissionNotFound)
}
