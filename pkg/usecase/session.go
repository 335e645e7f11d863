package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/model/config"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// Section field names accepted by UpdateField
const (
	FieldRequirementsMet = "requirementsMet"
	FieldComments        = "comments"
	FieldActionNeeded    = "actionNeeded"
	FieldActionOwner     = "actionOwner"
)

// NavigationState is the navigation part of the session visible to clients
type NavigationState struct {
	View       types.View `json:"view"`
	Location   string     `json:"location"`
	CanBack    bool       `json:"canBack"`
	CanForward bool       `json:"canForward"`
}

// Session is the state of one dashboard: navigation, drafts and histories.
// Every event is applied under one lock, in the order the events arrive.
type Session struct {
	mu sync.Mutex

	id         string
	catalog    *model.Catalog
	routes     *model.RouteTable
	history    interfaces.History
	nav        *NavigationController
	dispatcher *Dispatcher

	stores    map[types.DomainID]*RecordStore
	byStorage map[string]*RecordStore
}

type sessionOptions struct {
	notifier interfaces.Notifier
	risk     *config.RiskConfig
	now      func() time.Time
}

type SessionOption func(*sessionOptions)

func WithNotifier(notifier interfaces.Notifier) SessionOption {
	return func(o *sessionOptions) {
		o.notifier = notifier
	}
}

func WithRiskConfig(risk *config.RiskConfig) SessionOption {
	return func(o *sessionOptions) {
		o.risk = risk
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(o *sessionOptions) {
		o.now = now
	}
}

// NewSession wires one record store per catalog domain and registers the
// page of every view.
func NewSession(catalog *model.Catalog, routes *model.RouteTable, history interfaces.History, repo interfaces.SubmissionRepository, opts ...SessionOption) *Session {
	o := &sessionOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	s := &Session{
		id:        uuid.NewString(),
		catalog:   catalog,
		routes:    routes,
		history:   history,
		stores:    make(map[types.DomainID]*RecordStore),
		byStorage: make(map[string]*RecordStore),
	}

	storeOpts := []RecordStoreOption{WithRecordClock(o.now)}
	if o.notifier != nil {
		storeOpts = append(storeOpts, WithRecordNotifier(o.notifier))
	}

	stores := make([]*RecordStore, 0, len(catalog.List()))
	for _, d := range catalog.List() {
		store := NewRecordStore(d, repo, storeOpts...)
		s.stores[d.ID] = store
		s.byStorage[d.StorageKey] = store
		stores = append(stores, store)
	}

	dashboard := NewDashboardPage(stores)
	s.dispatcher = NewDispatcher(dashboard)
	s.dispatcher.Register(types.ViewDashboard, dashboard)
	s.dispatcher.Register(types.ViewRiskAnalysis, NewRiskAnalysisPage(o.risk))
	for _, store := range stores {
		d := store.Domain()
		s.dispatcher.Register(d.FormView, NewAssessmentFormPage(store))
		s.dispatcher.Register(d.ReportsView, NewAssessmentReportsPage(store))
	}

	s.nav = NewNavigationController(routes, history)
	return s
}

// ID identifies the session in logs
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Catalog() *model.Catalog {
	return s.catalog
}

func (s *Session) Routes() *model.RouteTable {
	return s.routes
}

// Validate checks every view of the closed set has its own page. Views
// without a page would silently show the dashboard.
func (s *Session) Validate() error {
	for _, v := range types.AllViews() {
		if !s.dispatcher.Registered(v) {
			return goerr.Wrap(ErrUnknownView, "view has no page", goerr.V(model.ViewKey, v))
		}
	}
	return nil
}

// Visit handles a location change made by the user. Visiting the current
// location again re-derives the view, like reloading a page.
func (s *Session) Visit(ctx context.Context, location string) NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if model.NormalizeLocation(location) == s.history.CurrentLocation() {
		s.nav.OnLocationChanged(ctx, location)
	} else {
		s.history.Visit(ctx, location)
	}
	return s.navigationState()
}

func (s *Session) Back(ctx context.Context) NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Back(ctx)
	return s.navigationState()
}

func (s *Session) Forward(ctx context.Context) NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Forward(ctx)
	return s.navigationState()
}

func (s *Session) RequestView(ctx context.Context, view types.View) (NavigationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.nav.RequestView(ctx, view); err != nil {
		return s.navigationState(), err
	}
	return s.navigationState(), nil
}

func (s *Session) Navigation() NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigationState()
}

func (s *Session) navigationState() NavigationState {
	return NavigationState{
		View:       s.nav.Active(),
		Location:   s.nav.Location(),
		CanBack:    s.history.CanBack(),
		CanForward: s.history.CanForward(),
	}
}

// Render renders the active view. A component may request another view
// while rendering; the newly active view is rendered instead.
func (s *Session) Render(ctx context.Context) (*model.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range len(types.AllViews()) {
		view := s.nav.Active()
		page, err := s.dispatcher.Dispatch(view).Render(ctx, s.nav.RequestView)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to render page", goerr.V(model.ViewKey, view))
		}
		if s.nav.Active() != view {
			continue
		}

		// the fallback renders as the dashboard, but the active view is kept
		page.View = view
		page.Location = s.nav.Location()
		return page, nil
	}
	return nil, goerr.Wrap(ErrUnknownView, "too many view requests while rendering")
}

// Records returns the record store of a domain
func (s *Session) Records(domainID types.DomainID) (*RecordStore, error) {
	store, ok := s.stores[domainID]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownDomain, "no record store for domain", goerr.V(model.DomainIDKey, domainID))
	}
	return store, nil
}

// UpdateField sets one field of one section of a domain draft
func (s *Session) UpdateField(ctx context.Context, domainID types.DomainID, key types.SectionKey, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return err
	}

	switch field {
	case FieldRequirementsMet:
		v, err := types.ParseRequirementsMet(value)
		if err != nil {
			return goerr.Wrap(model.ErrInvalidAnswer, err.Error(),
				goerr.V(model.DomainIDKey, domainID), goerr.V(model.SectionKeyKey, key))
		}
		return store.SetRequirementsMet(key, v)
	case FieldComments:
		return store.SetComments(key, value)
	case FieldActionNeeded:
		return store.SetActionNeeded(key, value)
	case FieldActionOwner:
		return store.SetActionOwner(key, value)
	default:
		return goerr.Wrap(ErrUnknownField, "field cannot be set",
			goerr.V(model.DomainIDKey, domainID),
			goerr.V(model.SectionKeyKey, key),
			goerr.V(FieldKey, field))
	}
}

func (s *Session) SetEvidenceFiles(ctx context.Context, domainID types.DomainID, key types.SectionKey, files []model.EvidenceFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return err
	}
	return store.SetEvidenceFiles(key, files)
}

func (s *Session) Draft(ctx context.Context, domainID types.DomainID) (*model.AssessmentForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return nil, err
	}
	return store.Draft(), nil
}

func (s *Session) Reset(ctx context.Context, domainID types.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return err
	}
	store.Reset()
	return nil
}

func (s *Session) Submit(ctx context.Context, domainID types.DomainID) (*model.AssessmentSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return nil, err
	}
	return store.Submit(ctx)
}

func (s *Session) ListSubmissions(ctx context.Context, domainID types.DomainID) ([]*model.AssessmentSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return nil, err
	}
	return store.ListSubmissions(ctx), nil
}

func (s *Session) FindSubmission(ctx context.Context, domainID types.DomainID, id model.SubmissionID) (*model.AssessmentSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.Records(domainID)
	if err != nil {
		return nil, err
	}
	return store.FindSubmission(ctx, id)
}

// Evidence returns one evidence file of a submission, payload included
func (s *Session) Evidence(ctx context.Context, domainID types.DomainID, id model.SubmissionID, fileID string) (*model.EvidenceFile, error) {
	sub, err := s.FindSubmission(ctx, domainID, id)
	if err != nil {
		return nil, err
	}
	file, ok := sub.Evidence(fileID)
	if !ok {
		return nil, goerr.Wrap(ErrEvidenceNotFound, "evidence file not found",
			goerr.V(model.DomainIDKey, domainID),
			goerr.V(SubmissionIDKey, id),
			goerr.V(FileIDKey, fileID))
	}
	return file, nil
}

// Invalidate drops the cached history stored under storageKey. Unknown
// keys are ignored.
func (s *Session) Invalidate(ctx context.Context, storageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.byStorage[storageKey]
	if !ok {
		return
	}
	store.Invalidate()
	logging.From(ctx).Debug("submission cache invalidated", "storage_key", storageKey)
}
