// Package session drives a labeling workspace against the backend.
//
// A Session owns one workspace.State. Events are applied under a mutex so
// they are observed in order; network calls run outside the lock and their
// results are applied only if the project they were issued for is still
// the open project.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/observability/metrics"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

const (
	componentName = "session"

	defaultSnapshotTTL = 5 * time.Minute
)

// ErrSuperseded is returned when a newer Open replaced the project a load was for
var ErrSuperseded = errors.NewStd("project load superseded by a newer request")

// Backend is the part of the REST API a session uses. *client.Client implements it.
type Backend interface {
	GetProject(ctx context.Context, projectID string) (client.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	ListCategories(ctx context.Context, projectID string) ([]labeling.Label, error)
	ListAssets(ctx context.Context, projectID string, status labeling.Status) ([]assettree.Asset, error)
	CreateAsset(ctx context.Context, projectID string, in client.AssetCreate) (assettree.Asset, error)
	DeleteAsset(ctx context.Context, projectID, assetID string) error
	ListAnnotations(ctx context.Context, projectID string) ([]labeling.Annotation, error)
	UpsertAnnotation(ctx context.Context, projectID string, in client.AnnotationUpsert) (labeling.Annotation, error)
}

// Snapshot is everything fetched when a project is opened
type Snapshot struct {
	Project     client.Project
	Labels      []labeling.Label
	Assets      []assettree.Asset
	Annotations []labeling.Annotation
}

// Session is safe for concurrent use
type Session struct {
	backend       Backend
	snapshots     *cache.Cache
	limiter       *rate.Limiter
	metrics       WorkflowRecorder
	payloadSource string
	multiLabel    bool
	log           logger.Logger

	mu         sync.Mutex
	state      workspace.State
	generation uint64
	// multi-label is remembered per project for the lifetime of the session
	multiLabelByProject map[string]bool
}

// Option configures a Session
type Option func(*Session)

// WithSnapshotTTL sets how long fetched project data is reused by Open
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.snapshots = cache.New(ttl, 2*ttl)
		}
	}
}

// WithRateLimit paces per-asset backend writes. Zero or negative disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(s *Session) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			s.limiter = nil
		}
	}
}

// WithMetrics records workflow metrics
func WithMetrics(m WorkflowRecorder) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithPayloadSource sets payload.source on saved annotations
func WithPayloadSource(source string) Option {
	return func(s *Session) {
		if source != "" {
			s.payloadSource = source
		}
	}
}

// WithMultiLabel sets the multi-label default for newly opened projects
func WithMultiLabel(enabled bool) Option {
	return func(s *Session) {
		s.multiLabel = enabled
	}
}

// New creates a session with no project open
func New(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend:             backend,
		snapshots:           cache.New(defaultSnapshotTTL, 2*defaultSnapshotTTL),
		metrics:             nopWorkflow{},
		payloadSource:       labeling.DefaultSource,
		log:                 logger.Global().Module(componentName),
		state:               workspace.New(),
		multiLabelByProject: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromSettings creates a session configured from the client and workspace sections
func NewFromSettings(backend Backend, settings *conf.Settings, opts ...Option) *Session {
	base := []Option{
		WithSnapshotTTL(settings.Workspace.SnapshotTTL),
		WithRateLimit(settings.Client.RequestsPerSecond),
		WithPayloadSource(settings.Workspace.PayloadSource),
		WithMultiLabel(settings.Workspace.MultiLabel),
	}
	return New(backend, append(base, opts...)...)
}

// Snapshot returns the current state. The value must be treated as read only.
func (s *Session) Snapshot() workspace.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and returns the resulting state
func (s *Session) Dispatch(action workspace.Action) workspace.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(action)
}

func (s *Session) applyLocked(actions ...workspace.Action) workspace.State {
	for _, action := range actions {
		prev := s.state
		s.state = workspace.Apply(s.state, action)

		switch a := action.(type) {
		case workspace.SetMultiLabel:
			if s.state.ProjectID != "" {
				s.multiLabelByProject[s.state.ProjectID] = a.Enabled
			}
		case workspace.ToggleLabel, workspace.SetLabels, workspace.Hotkey:
			if stagedChanged(prev, s.state) {
				s.metrics.RecordStagedEdit()
			}
		}
		s.metrics.RecordOperation(action.Name(), metrics.StatusSuccess)
	}
	s.metrics.SetPendingEdits(s.state.PendingCount())
	return s.state
}

// stagedChanged reports whether the pending entry of the focused asset changed
func stagedChanged(prev, next workspace.State) bool {
	id := next.CurrentAssetID()
	before, hadBefore := prev.Pending[id]
	after, hasAfter := next.Pending[id]
	if hadBefore != hasAfter {
		return true
	}
	return hasAfter && !labeling.Equal(before, after)
}

// applyFor applies actions only while projectID is still open
func (s *Session) applyFor(projectID string, actions ...workspace.Action) (workspace.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ProjectID != projectID {
		s.log.Debug("dropping stale result",
			logger.String("requested_project", projectID),
			logger.String("open_project", s.state.ProjectID))
		return s.state, false
	}
	return s.applyLocked(actions...), true
}

// Open loads a project and replaces the workspace with it. When another
// Open starts before this one finishes, the older result is discarded and
// ErrSuperseded is returned.
func (s *Session) Open(ctx context.Context, projectID string) (workspace.State, error) {
	if projectID == "" {
		return s.Snapshot(), errors.ValidationError("project id is required")
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()
	snap, err := s.load(ctx, projectID)
	s.metrics.RecordDuration("open", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError("open", string(categoryOf(err)))
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return s.state, ErrSuperseded
	}

	multi, ok := s.multiLabelByProject[projectID]
	if !ok {
		multi = s.multiLabel
	}
	state := s.applyLocked(workspace.ProjectLoaded{
		ProjectID:   projectID,
		ProjectName: snap.Project.Name,
		MultiLabel:  multi,
		Labels:      snap.Labels,
		Assets:      snap.Assets,
		Annotations: snap.Annotations,
	})

	s.log.Info("project opened",
		logger.String("project_id", projectID),
		logger.Int("assets", len(snap.Assets)),
		logger.Int("labels", len(snap.Labels)),
		logger.Int("annotations", len(snap.Annotations)))
	return state, nil
}

// Refresh refetches the open project without resetting focus, scope or staged edits
func (s *Session) Refresh(ctx context.Context) (workspace.State, error) {
	projectID := s.Snapshot().ProjectID
	if projectID == "" {
		return s.Snapshot(), nil
	}
	s.snapshots.Delete(projectID)

	snap, err := s.load(ctx, projectID)
	if err != nil {
		return s.Snapshot(), err
	}
	state, _ := s.applyFor(projectID,
		workspace.LabelsReplaced{Labels: snap.Labels},
		workspace.AnnotationsReplaced{Annotations: snap.Annotations},
		workspace.AssetsReplaced{Assets: snap.Assets},
	)
	return state, nil
}

// Close drops the open project
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.applyLocked(workspace.Reset{})
}

// load returns the cached snapshot of projectID or fetches it concurrently
func (s *Session) load(ctx context.Context, projectID string) (Snapshot, error) {
	if cached, ok := s.snapshots.Get(projectID); ok {
		if snap, ok := cached.(Snapshot); ok {
			return snap, nil
		}
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.backend.GetProject(gctx, projectID)
		snap.Project = p
		return err
	})
	g.Go(func() error {
		labels, err := s.backend.ListCategories(gctx, projectID)
		snap.Labels = labels
		return err
	})
	g.Go(func() error {
		assets, err := s.backend.ListAssets(gctx, projectID, "")
		snap.Assets = assets
		return err
	})
	g.Go(func() error {
		annotations, err := s.backend.ListAnnotations(gctx, projectID)
		snap.Annotations = annotations
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, errors.New(err).
			Component(componentName).
			Category(categoryOf(err)).
			Context("operation", "load_project").
			Context("project_id", projectID).
			Build()
	}

	s.snapshots.SetDefault(projectID, snap)
	return snap, nil
}

// invalidate forgets the cached snapshot after a write
func (s *Session) invalidate(projectID string) {
	s.snapshots.Delete(projectID)
}

// wait blocks for the write pacer
func (s *Session) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}

// categoryOf maps backend failures to an error category
func categoryOf(err error) errors.ErrorCategory {
	switch {
	case errors.Is(err, context.Canceled):
		return errors.CategoryCancellation
	case errors.Is(err, context.DeadlineExceeded):
		return errors.CategoryTimeout
	}
	switch status := client.StatusOf(err); {
	case status == 0:
		return errors.CategoryNetwork
	case status == 404:
		return errors.CategoryNotFound
	case status == 409:
		return errors.CategoryConflict
	case status >= 400 && status < 500:
		return errors.CategoryValidation
	}
	return errors.CategoryHTTP
}
