package session

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

type fakeProject struct {
	project     client.Project
	labels      []labeling.Label
	assets      []assettree.Asset
	annotations map[string]labeling.Annotation
}

// fakeBackend is an in-memory Backend
type fakeBackend struct {
	mu       sync.Mutex
	projects map[string]*fakeProject
	calls    map[string]int
	nextID   int

	// failUpsert and failDelete name asset IDs whose writes fail with a 500
	failUpsert map[string]bool
	failDelete map[string]bool

	// hooks run before the matching call touches any data
	onGetProject func(projectID string)
	onUpsert     func(assetID string)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		projects:   map[string]*fakeProject{},
		calls:      map[string]int{},
		failUpsert: map[string]bool{},
		failDelete: map[string]bool{},
	}
}

func imageAsset(id, rel string) assettree.Asset {
	return assettree.Asset{ID: id, Type: "image", URI: "/data/" + id, Metadata: map[string]any{"relative_path": rel}}
}

func label(id labeling.LabelID, name string, order int) labeling.Label {
	return labeling.Label{ID: id, Name: name, DisplayOrder: order, IsActive: true}
}

func committed(assetID string, status labeling.Status, ids ...any) labeling.Annotation {
	return labeling.Annotation{
		ID:      "ann-" + assetID,
		AssetID: assetID,
		Status:  status,
		Payload: map[string]any{"category_ids": ids},
	}
}

func (f *fakeBackend) addProject(id, name string, labels []labeling.Label, assets []assettree.Asset, annotations ...labeling.Annotation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &fakeProject{
		project:     client.Project{ID: id, Name: name, TaskType: "classification_single", SchemaVersion: "1.0.0"},
		labels:      labels,
		assets:      assets,
		annotations: map[string]labeling.Annotation{},
	}
	for _, a := range annotations {
		a.ProjectID = id
		p.annotations[a.AssetID] = a
	}
	f.projects[id] = p
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) get(name, projectID string) (*fakeProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	p, ok := f.projects[projectID]
	if !ok {
		return nil, &client.APIError{Method: http.MethodGet, URL: "/projects/" + projectID, Status: http.StatusNotFound}
	}
	return p, nil
}

func (f *fakeBackend) GetProject(_ context.Context, projectID string) (client.Project, error) {
	if f.onGetProject != nil {
		f.onGetProject(projectID)
	}
	p, err := f.get("GetProject", projectID)
	if err != nil {
		return client.Project{}, err
	}
	return p.project, nil
}

func (f *fakeBackend) DeleteProject(_ context.Context, projectID string) error {
	if _, err := f.get("DeleteProject", projectID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.projects, projectID)
	return nil
}

func (f *fakeBackend) ListCategories(_ context.Context, projectID string) ([]labeling.Label, error) {
	p, err := f.get("ListCategories", projectID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(p.labels), nil
}

func (f *fakeBackend) ListAssets(_ context.Context, projectID string, _ labeling.Status) ([]assettree.Asset, error) {
	p, err := f.get("ListAssets", projectID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(p.assets), nil
}

func (f *fakeBackend) CreateAsset(_ context.Context, projectID string, in client.AssetCreate) (assettree.Asset, error) {
	p, err := f.get("CreateAsset", projectID)
	if err != nil {
		return assettree.Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	asset := assettree.Asset{
		ID:        fmt.Sprintf("new-%d", f.nextID),
		ProjectID: projectID,
		Type:      in.Type,
		URI:       in.URI,
		MIMEType:  in.MIMEType,
		Width:     in.Width,
		Height:    in.Height,
		Checksum:  in.Checksum,
		Metadata:  maps.Clone(in.Metadata),
	}
	p.assets = append(p.assets, asset)
	return asset, nil
}

func (f *fakeBackend) DeleteAsset(_ context.Context, projectID, assetID string) error {
	p, err := f.get("DeleteAsset", projectID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[assetID] {
		return &client.APIError{Method: http.MethodDelete, URL: "/assets/" + assetID, Status: http.StatusInternalServerError}
	}
	p.assets = slices.DeleteFunc(p.assets, func(a assettree.Asset) bool { return a.ID == assetID })
	delete(p.annotations, assetID)
	return nil
}

func (f *fakeBackend) ListAnnotations(_ context.Context, projectID string) ([]labeling.Annotation, error) {
	p, err := f.get("ListAnnotations", projectID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Collect(maps.Values(p.annotations)), nil
}

func (f *fakeBackend) UpsertAnnotation(_ context.Context, projectID string, in client.AnnotationUpsert) (labeling.Annotation, error) {
	if f.onUpsert != nil {
		f.onUpsert(in.AssetID)
	}
	p, err := f.get("UpsertAnnotation", projectID)
	if err != nil {
		return labeling.Annotation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert[in.AssetID] {
		return labeling.Annotation{}, &client.APIError{
			Method: http.MethodPost,
			URL:    "http://sheriff.test/api/v1/projects/" + projectID + "/annotations",
			Status: http.StatusInternalServerError,
		}
	}
	ann := labeling.Annotation{
		ID:        "ann-" + in.AssetID,
		AssetID:   in.AssetID,
		ProjectID: projectID,
		Status:    in.Status,
		Payload:   in.Payload,
	}
	p.annotations[in.AssetID] = ann
	return ann, nil
}

func (f *fakeBackend) annotation(projectID, assetID string) (labeling.Annotation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ann, ok := f.projects[projectID].annotations[assetID]
	return ann, ok
}

// recordingMetrics counts workflow events
type recordingMetrics struct {
	mu          sync.Mutex
	staged      int
	submissions map[string]int // mode/status
	deletions   map[string]int
	pending     int
	errors      map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{submissions: map[string]int{}, deletions: map[string]int{}, errors: map[string]int{}}
}

func (m *recordingMetrics) RecordOperation(string, string) {}
func (m *recordingMetrics) RecordDuration(string, float64) {}

func (m *recordingMetrics) RecordError(operation, errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[operation+"/"+errorType]++
}

func (m *recordingMetrics) RecordStagedEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged++
}

func (m *recordingMetrics) RecordSubmission(mode, status string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[mode+"/"+status] += count
}

func (m *recordingMetrics) RecordDeletion(status string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletions[status] += count
}

func (m *recordingMetrics) SetPendingEdits(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = n
}

// newFixture opens project p1 "Birds" with labels cat, dog and bird. The
// tree order of its assets is c, d, a, b, e and asset a is approved as cat.
func newFixture(t *testing.T, opts ...Option) (*Session, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	fb.addProject("p1", "Birds",
		[]labeling.Label{label(1, "cat", 0), label(2, "dog", 1), label(3, "bird", 2)},
		[]assettree.Asset{
			imageAsset("a", "root/a.jpg"),
			imageAsset("b", "root/b.jpg"),
			imageAsset("c", "root/sub/c.jpg"),
			imageAsset("d", "root/subfolder2/d.jpg"),
			imageAsset("e", "top.jpg"),
		},
		committed("a", labeling.StatusApproved, 1),
	)
	fb.addProject("p2", "Cats",
		[]labeling.Label{label(7, "tabby", 0)},
		[]assettree.Asset{imageAsset("x", "x.jpg")},
	)

	sess := New(fb, opts...)
	_, err := sess.Open(t.Context(), "p1")
	require.NoError(t, err, "open fixture project")
	return sess, fb
}
