package datastore

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/observability/metrics"
)

func createDatabase(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = t.TempDir() + "/test.db"

	store := New(settings)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func seedProject(t *testing.T, store Interface) Project {
	t.Helper()
	p := Project{Name: "birds"}
	require.NoError(t, store.CreateProject(t.Context(), &p))
	return p
}

func TestNew_SelectsBackend(t *testing.T) {
	t.Parallel()

	s := &conf.Settings{}
	s.Database.Type = conf.DatabaseSQLite
	assert.IsType(t, &SQLiteStore{}, New(s))

	s.Database.Type = conf.DatabaseMySQL
	assert.IsType(t, &MySQLStore{}, New(s))

	s.Database.Type = "oracle"
	assert.Nil(t, New(s))
}

func TestSQLiteOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	store := New(&conf.Settings{})
	err := store.Open()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestProjects(t *testing.T) {
	t.Parallel()
	store := createDatabase(t)
	ctx := t.Context()

	p := seedProject(t, store)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, TaskTypeClassificationSingle, p.TaskType)
	assert.Equal(t, SchemaVersion, p.SchemaVersion)

	got, err := store.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "birds", got.Name)

	list, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.GetProject(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Project not found", err.Error())

	assert.True(t, errors.IsValidation(store.CreateProject(ctx, &Project{})))
	assert.True(t, errors.IsValidation(store.CreateProject(ctx, &Project{Name: "x", TaskType: "detection"})))
}

func TestCategories(t *testing.T) {
	t.Parallel()
	store := createDatabase(t)
	ctx := t.Context()
	p := seedProject(t, store)

	for i, name := range []string{"owl", "hawk", "crow"} {
		c := Category{ProjectID: p.ID, Name: name, DisplayOrder: 2 - i, IsActive: true}
		require.NoError(t, store.CreateCategory(ctx, &c))
		assert.NotZero(t, c.ID)
	}

	list, err := store.ListCategories(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"crow", "hawk", "owl"}, []string{list[0].Name, list[1].Name, list[2].Name})

	name, inactive := "raven", false
	updated, err := store.UpdateCategory(ctx, list[0].ID, CategoryPatch{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "raven", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 0, updated.DisplayOrder, "unset fields keep their value")

	_, err = store.UpdateCategory(ctx, 9999, CategoryPatch{Name: &name})
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Category not found", err.Error())

	err = store.CreateCategory(ctx, &Category{ProjectID: "missing", Name: "x"})
	assert.True(t, errors.IsNotFound(err))
}

func TestAssetsAndAnnotations(t *testing.T) {
	t.Parallel()
	store := createDatabase(t)
	ctx := t.Context()
	p := seedProject(t, store)

	a1 := Asset{ProjectID: p.ID, URI: "/a1.jpg", Checksum: "c1", Metadata: map[string]any{"relative_path": "root/a1.jpg"}}
	a2 := Asset{ProjectID: p.ID, URI: "/a2.jpg", Checksum: "c2"}
	require.NoError(t, store.CreateAsset(ctx, &a1))
	require.NoError(t, store.CreateAsset(ctx, &a2))
	assert.Equal(t, AssetTypeImage, a1.Type)
	assert.Equal(t, "image/jpeg", a1.MIMEType)

	assert.True(t, errors.IsValidation(store.CreateAsset(ctx, &Asset{ProjectID: p.ID, URI: "x", Type: "audio"})))

	ann := Annotation{
		ProjectID: p.ID,
		AssetID:   a1.ID,
		Status:    labeling.StatusApproved,
		Payload:   map[string]any{"category_ids": []any{float64(3)}},
	}
	require.NoError(t, store.UpsertAnnotation(ctx, &ann))
	firstID := ann.ID
	assert.NotEmpty(t, firstID)

	by := "reviewer"
	again := Annotation{ProjectID: p.ID, AssetID: a1.ID, Status: labeling.StatusLabeled, Payload: map[string]any{}, AnnotatedBy: &by}
	require.NoError(t, store.UpsertAnnotation(ctx, &again))
	assert.Equal(t, firstID, again.ID, "upsert keeps one row per asset")
	assert.Equal(t, labeling.StatusLabeled, again.Status)

	anns, err := store.ListAnnotations(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, "reviewer", *anns[0].AnnotatedBy)

	all, err := store.ListAssets(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, got := range all {
		if got.ID == a1.ID {
			assert.Equal(t, "root/a1.jpg", got.Metadata["relative_path"])
		}
	}

	labeled, err := store.ListAssets(ctx, p.ID, labeling.StatusLabeled)
	require.NoError(t, err)
	require.Len(t, labeled, 1)
	assert.Equal(t, a1.ID, labeled[0].ID)

	unlabeled, err := store.ListAssets(ctx, p.ID, labeling.StatusUnlabeled)
	require.NoError(t, err)
	assert.Empty(t, unlabeled, "assets without an annotation do not match a status filter")

	_, err = store.ListAssets(ctx, p.ID, "bogus")
	assert.True(t, errors.IsValidation(err))

	err = store.UpsertAnnotation(ctx, &Annotation{ProjectID: p.ID, AssetID: "missing"})
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.DeleteAsset(ctx, p.ID, a1.ID))
	anns, err = store.ListAnnotations(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, anns, "deleting an asset deletes its annotation")

	assert.True(t, errors.IsNotFound(store.DeleteAsset(ctx, p.ID, a1.ID)))
}

func TestDeleteProject_Cascades(t *testing.T) {
	t.Parallel()
	store := createDatabase(t)
	ctx := t.Context()
	p := seedProject(t, store)
	other := seedProject(t, store)

	require.NoError(t, store.CreateCategory(ctx, &Category{ProjectID: p.ID, Name: "owl", IsActive: true}))
	a := Asset{ProjectID: p.ID, URI: "/a.jpg", Checksum: "c"}
	require.NoError(t, store.CreateAsset(ctx, &a))
	require.NoError(t, store.UpsertAnnotation(ctx, &Annotation{ProjectID: p.ID, AssetID: a.ID}))
	require.NoError(t, store.CreateDatasetVersion(ctx, &DatasetVersion{ProjectID: p.ID, ExportURI: "exports/x.zip", Hash: "h"}))
	keep := Asset{ProjectID: other.ID, URI: "/b.jpg", Checksum: "c"}
	require.NoError(t, store.CreateAsset(ctx, &keep))
	model := Model{Name: "m", URI: "file:///m.onnx"}
	require.NoError(t, store.CreateModel(ctx, &model))
	require.NoError(t, store.CreateSuggestion(ctx, &Suggestion{AssetID: a.ID, ModelID: model.ID}))
	require.NoError(t, store.CreateSuggestion(ctx, &Suggestion{AssetID: keep.ID, ModelID: model.ID}))

	require.NoError(t, store.DeleteProject(ctx, p.ID))

	cats, err := store.ListCategories(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cats)
	assets, err := store.ListAssets(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Empty(t, assets)
	versions, err := store.ListDatasetVersions(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	remaining, err := store.ListAssets(ctx, other.ID, "")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	gone, err := store.ListSuggestions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)
	kept, err := store.ListSuggestions(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	assert.True(t, errors.IsNotFound(store.DeleteProject(ctx, p.ID)))
}

func TestModelsAndSuggestions(t *testing.T) {
	t.Parallel()
	store := createDatabase(t)
	ctx := t.Context()
	p := seedProject(t, store)
	a := Asset{ProjectID: p.ID, URI: "/a.jpg", Checksum: "c"}
	require.NoError(t, store.CreateAsset(ctx, &a))

	assert.True(t, errors.IsValidation(store.CreateModel(ctx, &Model{URI: "file:///m"})))
	assert.True(t, errors.IsValidation(store.CreateModel(ctx, &Model{Name: "m"})))

	first := Model{Name: "resnet", URI: "s3://models/resnet.onnx"}
	require.NoError(t, store.CreateModel(ctx, &first))
	assert.NotEmpty(t, first.ID)
	second := Model{Name: "vit", URI: "s3://models/vit.onnx"}
	require.NoError(t, store.CreateModel(ctx, &second))

	models, err := store.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "resnet", models[0].Name)

	s := Suggestion{AssetID: a.ID, ModelID: first.ID, Payload: map[string]any{"category_ids": []any{float64(2)}}}
	require.NoError(t, store.CreateSuggestion(ctx, &s))
	assert.True(t, errors.IsNotFound(store.CreateSuggestion(ctx, &Suggestion{AssetID: "missing", ModelID: first.ID})))
	assert.True(t, errors.IsNotFound(store.CreateSuggestion(ctx, &Suggestion{AssetID: a.ID, ModelID: "missing"})))
	assert.True(t, errors.IsValidation(store.CreateSuggestion(ctx, &Suggestion{AssetID: a.ID})))

	got, err := store.ListSuggestions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ModelID)
	assert.Equal(t, []any{float64(2)}, got[0].Payload["category_ids"])

	none, err := store.ListSuggestions(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.DeleteAsset(ctx, p.ID, a.ID))
	got, err = store.ListSuggestions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDatasetVersions_DefaultCriteria(t *testing.T) {
	t.Parallel()
	store := createDatabase(t)
	ctx := t.Context()
	p := seedProject(t, store)

	v := DatasetVersion{ProjectID: p.ID, Manifest: map[string]any{"k": "v"}, ExportURI: "exports/p/h.zip", Hash: "h"}
	require.NoError(t, store.CreateDatasetVersion(ctx, &v))

	list, err := store.ListDatasetVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, map[string]any{"status": "approved"}, list[0].SelectionCriteria)
	assert.Equal(t, "v", list[0].Manifest["k"])
}

func TestConversions(t *testing.T) {
	t.Parallel()

	by := "me"
	c := Category{ID: 4, ProjectID: "p", Name: "owl", DisplayOrder: 2, IsActive: true}
	assert.Equal(t, labeling.Label{ID: 4, ProjectID: "p", Name: "owl", DisplayOrder: 2, IsActive: true}, c.Label())

	a := Asset{ID: "a", ProjectID: "p", URI: "/x", Metadata: map[string]any{"relative_path": "r/x"}}
	assert.Equal(t, "r/x", a.TreeAsset().Metadata["relative_path"])

	ann := Annotation{ID: "n", AssetID: "a", Status: labeling.StatusApproved, AnnotatedBy: &by}
	got := ann.Committed()
	assert.Equal(t, labeling.StatusApproved, got.Status)
	assert.Equal(t, "me", *got.AnnotatedBy)
}

func TestClosedStore(t *testing.T) {
	t.Parallel()

	var ds DataStore
	_, err := ds.ListProjects(t.Context())
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{errors.NewStd("UNIQUE constraint failed: annotations.asset_id"), "constraint_violation"},
		{errors.NewStd("Error 1062: Duplicate entry"), "constraint_violation"},
		{errors.NewStd("database is locked"), "database_locked"},
		{errors.NewStd("context deadline exceeded"), "timeout"},
		{errors.NewStd("boom"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorizeError(tt.err))
	}

	assert.True(t, errors.IsCategory(dbError(errors.NewStd("UNIQUE constraint failed"), "op", "Asset", "1"), errors.CategoryConflict))
}

func TestSetMetrics_RecordsStatements(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Database.SQLite.Path = t.TempDir() + "/metrics.db"
	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)
	require.NoError(t, store.SetMetrics(m))

	p := Project{Name: "instrumented"}
	require.NoError(t, store.CreateProject(t.Context(), &p))
	_, err = store.GetProject(t.Context(), p.ID)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, "datastore_db_operations_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2, "create and query series")
}
