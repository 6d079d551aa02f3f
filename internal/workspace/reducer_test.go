package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/hotkeys"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

func testAsset(id, rel string) assettree.Asset {
	return assettree.Asset{ID: id, URI: "/files/" + id, Metadata: map[string]any{"relative_path": rel}}
}

func testLabels() []labeling.Label {
	return []labeling.Label{
		{ID: 7, Name: "bird", DisplayOrder: 2, IsActive: true},
		{ID: 1, Name: "cat", DisplayOrder: 0, IsActive: true},
		{ID: 3, Name: "retired", DisplayOrder: 1, IsActive: false},
		{ID: 2, Name: "dog", DisplayOrder: 1, IsActive: true},
	}
}

func committed(assetID string, status labeling.Status, ids ...any) labeling.Annotation {
	return labeling.Annotation{
		AssetID: assetID,
		Status:  status,
		Payload: map[string]any{"type": "classification", "category_ids": ids},
	}
}

// loaded opens a project with x, y under a/ and z under b/
func loaded(t *testing.T, annotations ...labeling.Annotation) State {
	t.Helper()
	s := Apply(New(), ProjectLoaded{
		ProjectID:   "p1",
		ProjectName: "Birds",
		Labels:      testLabels(),
		Assets: []assettree.Asset{
			testAsset("z", "b/z.jpg"),
			testAsset("y", "a/y.jpg"),
			testAsset("x", "a/x.jpg"),
		},
		Annotations: annotations,
	})
	require.Equal(t, []string{"x", "y", "z"}, s.Tree.OrderedAssetIDs)
	return s
}

func apply(s State, actions ...Action) State {
	for _, a := range actions {
		s = Apply(s, a)
	}
	return s
}

func TestStagedEditSurvivesNavigation(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	require.Equal(t, "x", s.CurrentAssetID())

	s = apply(s, ToggleLabel{LabelID: 7}, Navigate{Delta: 1})
	assert.Equal(t, "y", s.CurrentAssetID())
	assert.Equal(t, labeling.EmptySelection(), s.Draft())

	s = Apply(s, Navigate{Delta: -1})
	assert.Equal(t, "x", s.CurrentAssetID())
	assert.Equal(t, labeling.Selection{LabelIDs: []labeling.LabelID{7}, Status: labeling.StatusLabeled}, s.Draft())
	assert.Equal(t, 1, s.PendingCount())
	assert.True(t, s.IsDirty("x"))
	assert.True(t, s.CanSubmit())
}

func TestClearingApprovedAssetStagesUnlabeled(t *testing.T) {
	t.Parallel()

	s := loaded(t, committed("x", labeling.StatusApproved, 1))
	require.Equal(t, []labeling.LabelID{1}, s.SelectedLabelIDs)
	require.Equal(t, labeling.StatusApproved, s.CurrentStatus)
	assert.False(t, s.CanSubmit())

	s = Apply(s, ToggleLabel{LabelID: 1})
	assert.Equal(t, labeling.Selection{LabelIDs: []labeling.LabelID{}, Status: labeling.StatusUnlabeled}, s.Pending["x"])
	assert.True(t, s.CanSubmit())

	// restoring the label does not restore the reviewed status
	s = Apply(s, ToggleLabel{LabelID: 1})
	assert.Equal(t, labeling.StatusLabeled, s.Pending["x"].Status)
	assert.True(t, s.IsDirty("x"))
}

func TestToggleBackDropsPending(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s = apply(s, ToggleLabel{LabelID: 1}, ToggleLabel{LabelID: 1})
	assert.Zero(t, s.PendingCount())
	assert.False(t, s.CanSubmit())
}

func TestSingleLabelReplacesSelection(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s = apply(s, ToggleLabel{LabelID: 1}, ToggleLabel{LabelID: 2})
	assert.Equal(t, []labeling.LabelID{2}, s.Pending["x"].LabelIDs)
}

func TestEditModeGatesDirectSave(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s = Apply(s, SetEditMode{Enabled: true})
	assert.False(t, s.CanSubmit())

	s = Apply(s, ToggleLabel{LabelID: 2})
	assert.True(t, s.CanSubmit(), "staged edits always allow submit")
}

func TestDraftIgnoresInactiveLabels(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s = Apply(s, SetLabels{LabelIDs: []labeling.LabelID{3, 1, 3}})
	assert.Equal(t, []labeling.LabelID{3, 1}, s.SelectedLabelIDs)
	assert.Equal(t, labeling.Selection{LabelIDs: []labeling.LabelID{1}, Status: labeling.StatusLabeled}, s.Draft())
}

func TestTurningMultiLabelOffTruncates(t *testing.T) {
	t.Parallel()

	s := loaded(t, committed("z", labeling.StatusLabeled, 1))
	s = apply(s,
		SetMultiLabel{Enabled: true},
		ToggleLabel{LabelID: 1},
		ToggleLabel{LabelID: 2},
		FocusAsset{AssetID: "z"},
		ToggleLabel{LabelID: 7},
	)
	require.Equal(t, []labeling.LabelID{1, 2}, s.Pending["x"].LabelIDs)
	require.Equal(t, []labeling.LabelID{1, 7}, s.Pending["z"].LabelIDs)

	s = Apply(s, SetMultiLabel{Enabled: false})
	assert.Equal(t, []labeling.LabelID{1}, s.Pending["x"].LabelIDs)
	assert.False(t, s.IsDirty("z"), "truncated entry equal to committed is dropped")
	assert.Equal(t, []labeling.LabelID{1}, s.SelectedLabelIDs)
	assert.Equal(t, labeling.StatusLabeled, s.CurrentStatus)
}

func TestFocusAssetScopesToFolder(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s = apply(s, ToggleFolderCollapsed{Path: "b"}, FocusAsset{AssetID: "z", FolderPath: "b"})
	assert.Equal(t, "b", s.FolderScope)
	assert.Equal(t, []string{"z"}, s.ScopedAssetIDs())
	assert.Equal(t, "z", s.CurrentAssetID())
	assert.False(t, s.CollapsedFolders["b"])

	s = Apply(s, FocusAsset{AssetID: "y"})
	assert.Empty(t, s.FolderScope, "asset outside the scope widens it")
	assert.Equal(t, "y", s.CurrentAssetID())

	unknown := Apply(s, FocusAsset{AssetID: "nope"})
	assert.Equal(t, "y", unknown.CurrentAssetID())

	scoped := apply(s, FocusAsset{AssetID: "z", FolderPath: "b"})
	unchanged := Apply(scoped, FocusAsset{AssetID: "nope", FolderPath: "a"})
	assert.Equal(t, "b", unchanged.FolderScope, "unknown asset leaves the scope alone")
	assert.Equal(t, "z", unchanged.CurrentAssetID())
	assert.Equal(t, scoped.CollapsedFolders, unchanged.CollapsedFolders)
}

func TestPendingRestoredKeepsSavedStatus(t *testing.T) {
	t.Parallel()

	s := loaded(t, committed("x", labeling.StatusApproved, 1))
	saved := labeling.Selection{LabelIDs: []labeling.LabelID{1}, Status: labeling.StatusLabeled}

	s = Apply(s, PendingRestored{AssetID: "x", Selection: saved})
	assert.Equal(t, labeling.PendingMap{"x": saved}, s.Pending)
	assert.True(t, s.EditMode)
	assert.Equal(t, saved, s.Draft(), "focused asset shows the restored edit")

	same := Apply(s, PendingRestored{AssetID: "x", Selection: labeling.Selection{LabelIDs: []labeling.LabelID{1}, Status: labeling.StatusApproved}})
	assert.Empty(t, same.Pending, "edit equal to the committed state is dropped")

	ignored := apply(loaded(t),
		PendingRestored{AssetID: "nope", Selection: saved},
		PendingRestored{AssetID: "y", Selection: labeling.Selection{LabelIDs: []labeling.LabelID{1}, Status: "bogus"}})
	assert.Empty(t, ignored.Pending)
	assert.False(t, ignored.EditMode)
}

func TestNavigateClampsWithinScope(t *testing.T) {
	t.Parallel()

	s := apply(loaded(t), SetFolderScope{Path: "a"}, Navigate{Delta: 5})
	assert.Equal(t, []string{"x", "y"}, s.ScopedAssetIDs())
	assert.Equal(t, "y", s.CurrentAssetID())

	s = Apply(s, Navigate{Delta: -10})
	assert.Equal(t, "x", s.CurrentAssetID())

	empty := Apply(New(), Navigate{Delta: 1})
	assert.Empty(t, empty.CurrentAssetID())
	_, ok := empty.CurrentAsset()
	assert.False(t, ok)
}

func TestBulkDeleteSelection(t *testing.T) {
	t.Parallel()

	s := loaded(t, committed("x", labeling.StatusLabeled, 2))
	s = Apply(s, ToggleDeleteSelection{AssetID: "x"})
	assert.Empty(t, s.SelectedDeleteIDs(), "selection needs bulk mode")

	s = apply(s, ToggleBulkDelete{}, ToggleDeleteSelection{AssetID: "z"}, SetFolderScope{Path: "a"}, SelectAllDeleteScope{})
	assert.Equal(t, []string{"x", "y"}, s.SelectedDeleteIDs())

	s = apply(s, Navigate{Delta: 1}, ToggleLabel{LabelID: 1}, AssetsDeleted{AssetIDs: []string{"x", "y"}})
	assert.Empty(t, s.SelectedDeleteIDs())
	assert.Zero(t, s.PendingCount())
	assert.NotContains(t, s.Annotations, "x")
	assert.Equal(t, []string{"z"}, s.Tree.OrderedAssetIDs)
	assert.Empty(t, s.ScopedAssetIDs(), "scope a is gone")
	assert.Empty(t, s.CurrentAssetID())

	s = apply(s, SetFolderScope{Path: ""}, ToggleDeleteSelection{AssetID: "z"}, ToggleBulkDelete{})
	assert.False(t, s.BulkDelete)
	assert.Empty(t, s.SelectedDeleteIDs())
}

func TestSelectAllDeleteScopeEmpty(t *testing.T) {
	t.Parallel()

	s := Apply(New(), SelectAllDeleteScope{})
	assert.Equal(t, "No images in current scope.", s.Message)
}

func TestAssetsReplacedPrunesDeleteSelection(t *testing.T) {
	t.Parallel()

	s := apply(loaded(t), ToggleBulkDelete{}, SelectAllDeleteScope{})
	require.Len(t, s.SelectedDeleteIDs(), 3)

	s = Apply(s, AssetsReplaced{Assets: []assettree.Asset{testAsset("y", "a/y.jpg")}})
	assert.Equal(t, []string{"y"}, s.SelectedDeleteIDs())
	assert.Equal(t, "y", s.CurrentAssetID())
}

func TestFolderDeleted(t *testing.T) {
	t.Parallel()

	s := Apply(New(), ProjectLoaded{
		ProjectID: "p1",
		Assets: []assettree.Asset{
			testAsset("s1", "root/sub/a.jpg"),
			testAsset("s2", "root/subfolder2/b.jpg"),
			testAsset("s3", "root/c.jpg"),
		},
	})
	s = apply(s, SetFolderScope{Path: "root/sub"}, ToggleFolderCollapsed{Path: "root/subfolder2"})

	s = Apply(s, FolderDeleted{Path: "root/sub", AssetIDs: []string{"s1"}})
	assert.Empty(t, s.FolderScope)
	assert.Equal(t, 0, s.AssetIndex)
	assert.Equal(t, map[string]bool{"root": false, "root/subfolder2": true}, s.CollapsedFolders)
	assert.Equal(t, []string{"s2", "s3"}, s.Tree.OrderedAssetIDs)

	same := Apply(s, FolderDeleted{Path: "root", AssetIDs: nil})
	assert.Equal(t, s.Tree, same.Tree)
}

func TestAnnotationSaved(t *testing.T) {
	t.Parallel()

	s := apply(loaded(t), ToggleLabel{LabelID: 7})
	s = Apply(s, AnnotationSaved{Annotations: []labeling.Annotation{committed("x", labeling.StatusLabeled, 7)}})
	assert.Zero(t, s.PendingCount())
	assert.Equal(t, labeling.Selection{LabelIDs: []labeling.LabelID{7}, Status: labeling.StatusLabeled}, s.Committed())
	assert.False(t, s.CanSubmit())

	s = apply(s, SetEditMode{Enabled: true}, ToggleLabel{LabelID: 1}, Navigate{Delta: 1}, ToggleLabel{LabelID: 2})
	require.Equal(t, 2, s.PendingCount())

	s = Apply(s, AnnotationSaved{Bulk: true, Annotations: []labeling.Annotation{committed("y", labeling.StatusLabeled, 2)}})
	assert.Zero(t, s.PendingCount())
	assert.False(t, s.EditMode)
	assert.Equal(t, []labeling.LabelID{2}, s.SelectedLabelIDs)
}

func TestHotkeys(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s = Apply(s, Hotkey{Event: hotkeys.Event{Key: "2", Code: "Digit2"}})
	assert.Equal(t, []labeling.LabelID{2}, s.Pending["x"].LabelIDs, "second label in palette order")

	s = Apply(s, Hotkey{Event: hotkeys.Event{Key: "ArrowRight"}})
	assert.Equal(t, "y", s.CurrentAssetID())

	typed := Apply(s, Hotkey{Event: hotkeys.Event{Key: "ArrowLeft", Target: &hotkeys.Target{TagName: "INPUT"}}})
	assert.Equal(t, "y", typed.CurrentAssetID())

	s = Apply(s, Hotkey{Event: hotkeys.Event{Key: "9", Code: "Digit9"}})
	assert.False(t, s.IsDirty("y"))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	before := apply(loaded(t), ToggleBulkDelete{})
	after := apply(before,
		ToggleLabel{LabelID: 1},
		ToggleFolderCollapsed{Path: "a"},
		ToggleDeleteSelection{AssetID: "x"},
		AssetsDeleted{AssetIDs: []string{"z"}},
	)

	assert.Empty(t, before.Pending)
	assert.Empty(t, before.CollapsedFolders)
	assert.Empty(t, before.DeleteSelection)
	assert.Len(t, before.Assets, 3)
	assert.NotEmpty(t, after.Pending)
	assert.Len(t, after.Assets, 2)
}

func TestResetAndUnknownAction(t *testing.T) {
	t.Parallel()

	s := apply(loaded(t), ToggleLabel{LabelID: 1}, SetMessage{Text: "Saved annotation."})
	assert.Equal(t, New(), Apply(s, Reset{}))

	type custom struct{ Action }
	assert.Equal(t, s, Apply(s, custom{}))

	cleared := Apply(s, PendingCleared{})
	assert.Zero(t, cleared.PendingCount())
	assert.Empty(t, cleared.SelectedLabelIDs)
}
