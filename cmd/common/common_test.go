package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

func TestParseLabelIDs(t *testing.T) {
	t.Parallel()

	ids, err := ParseLabelIDs([]string{"3", "1"})
	require.NoError(t, err)
	assert.Equal(t, []labeling.LabelID{3, 1}, ids)

	ids, err = ParseLabelIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseLabelIDs([]string{"cat"})
	assert.EqualError(t, err, `invalid label id "cat"`)
}

func TestLabelNames(t *testing.T) {
	t.Parallel()
	labels := []labeling.Label{{ID: 1, Name: "cat"}, {ID: 2, Name: "dog"}}

	assert.Equal(t, "-", LabelNames(nil, labels))
	assert.Equal(t, "dog, cat", LabelNames([]labeling.LabelID{2, 1}, labels))
	assert.Equal(t, "cat, 9", LabelNames([]labeling.LabelID{1, 9}, labels))
}

func TestRenderTree(t *testing.T) {
	t.Parallel()

	asset := func(id, rel string) assettree.Asset {
		return assettree.Asset{ID: id, Type: "image", Metadata: map[string]any{"relative_path": rel}}
	}
	st := workspace.Apply(workspace.New(), workspace.ProjectLoaded{
		ProjectID:   "p1",
		ProjectName: "Birds",
		Labels:      []labeling.Label{{ID: 1, Name: "cat", IsActive: true}},
		Assets:      []assettree.Asset{asset("a", "root/a.jpg"), asset("b", "root/b.jpg")},
		Annotations: []labeling.Annotation{{AssetID: "a", Status: labeling.StatusLabeled, Payload: map[string]any{"category_ids": []any{1}}}},
	})
	st = workspace.Apply(st, workspace.FocusAsset{AssetID: "b"})
	st = workspace.Apply(st, workspace.SetLabels{LabelIDs: []labeling.LabelID{1}})

	var buf bytes.Buffer
	RenderTree(&buf, st)
	assert.Equal(t,
		"+ root/ [all_labeled]\n"+
			"  [x] a.jpg  (a)\n"+
			"  [x] b.jpg * <  (b)\n",
		buf.String())

	st = workspace.Apply(st, workspace.ToggleFolderCollapsed{Path: "root"})
	buf.Reset()
	RenderTree(&buf, st)
	assert.Equal(t, "> root/ [all_labeled]\n", buf.String())
}

func TestPageStrip(t *testing.T) {
	t.Parallel()

	assets := make([]assettree.Asset, 0, 20)
	for i := range 20 {
		id := string(rune('a' + i))
		assets = append(assets, assettree.Asset{ID: id, Metadata: map[string]any{"relative_path": id + ".jpg"}})
	}
	st := workspace.Apply(workspace.New(), workspace.ProjectLoaded{ProjectID: "p1", Assets: assets})

	assert.Empty(t, PageStrip(workspace.New(), 0))
	assert.Equal(t, "[1] 2 3 4 5 6 7 8 9 10 ... 20", PageStrip(st, 0))

	st = workspace.Apply(st, workspace.Navigate{Delta: 9})
	assert.Equal(t, "1 ... 6 7 8 9 [10] 11 12 13 14 ... 20", PageStrip(st, 0))
}
