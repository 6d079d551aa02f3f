package workspace

import (
	"maps"
	"slices"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/deletion"
	"github.com/sheriffhq/sheriff/internal/hotkeys"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// Apply returns the state after action. Unknown actions leave s unchanged.
func Apply(s State, action Action) State {
	switch a := action.(type) {
	case ProjectLoaded:
		next := New()
		next.ProjectID = a.ProjectID
		next.ProjectName = a.ProjectName
		next.MultiLabel = a.MultiLabel
		next.Labels = slices.Clone(a.Labels)
		next = next.withAssets(a.Assets).withAnnotations(a.Annotations)
		return next.syncDraft()

	case AssetsReplaced:
		return s.withAssets(a.Assets).syncDraft()

	case LabelsReplaced:
		s.Labels = slices.Clone(a.Labels)
		return s

	case AnnotationsReplaced:
		return s.withAnnotations(a.Annotations).syncDraft()

	case AnnotationSaved:
		return s.saved(a)

	case FocusAsset:
		return s.focus(a.AssetID, a.FolderPath)

	case Navigate:
		return s.navigate(a.Delta)

	case ToggleLabel:
		if s.CurrentAssetID() == "" {
			return s
		}
		return s.stage(labeling.ToggleLabel(s.SelectedLabelIDs, a.LabelID, s.MultiLabel))

	case SetLabels:
		return s.stage(a.LabelIDs)

	case SetEditMode:
		s.EditMode = a.Enabled
		return s

	case SetMultiLabel:
		return s.setMultiLabel(a.Enabled)

	case SetFolderScope:
		if a.Path != "" {
			s.CollapsedFolders = expandChain(s.CollapsedFolders, a.Path)
		}
		s.FolderScope = a.Path
		s.AssetIndex = 0
		return s.syncDraft()

	case ToggleFolderCollapsed:
		next := maps.Clone(s.CollapsedFolders)
		if next == nil {
			next = map[string]bool{}
		}
		next[a.Path] = !next[a.Path]
		s.CollapsedFolders = next
		return s

	case SetAllFoldersCollapsed:
		next := map[string]bool{}
		if a.Collapsed {
			for path := range s.Tree.FolderAssetIDs {
				next[path] = true
			}
		}
		s.CollapsedFolders = next
		return s

	case ToggleBulkDelete:
		s.BulkDelete = !s.BulkDelete
		if !s.BulkDelete {
			s.DeleteSelection = deletion.Selection{}
		}
		return s

	case ToggleDeleteSelection:
		if !s.BulkDelete {
			return s
		}
		s.DeleteSelection = deletion.Toggle(s.DeleteSelection, a.AssetID)
		return s

	case SelectAllDeleteScope:
		ids := s.ScopedAssetIDs()
		if len(ids) == 0 {
			s.Message = "No images in current scope."
			return s
		}
		s.DeleteSelection = deletion.SelectScope(ids)
		return s

	case ClearDeleteSelection:
		s.DeleteSelection = deletion.Selection{}
		return s

	case AssetsDeleted:
		return s.removeAssets(a.AssetIDs)

	case FolderDeleted:
		if len(a.AssetIDs) == 0 {
			return s
		}
		s = s.removeAssets(a.AssetIDs)
		if deletion.ShouldResetSelectedFolder(s.FolderScope, a.Path) {
			s.FolderScope = ""
			s.AssetIndex = 0
			s = s.syncDraft()
		}
		s.CollapsedFolders = deletion.PruneCollapsedFolders(s.CollapsedFolders, a.Path)
		return s

	case PendingCleared:
		if len(s.Pending) == 0 {
			return s
		}
		s.Pending = labeling.PendingMap{}
		return s.syncDraft()

	case SetMessage:
		s.Message = a.Text
		return s

	case PendingRestored:
		return s.restore(a)

	case Reset:
		return New()

	case Hotkey:
		return s.hotkey(a.Event)
	}
	return s
}

func (s State) withAssets(assets []assettree.Asset) State {
	s.Assets = slices.Clone(assets)
	s.Tree = assettree.Build(s.Assets)
	s.byID = make(map[string]int, len(s.Assets))
	for i, asset := range s.Assets {
		s.byID[asset.ID] = i
	}
	s.DeleteSelection = deletion.Prune(s.DeleteSelection, func(id string) bool {
		_, ok := s.byID[id]
		return ok
	})
	s.AssetIndex = s.CurrentIndex()
	return s
}

func (s State) withAnnotations(annotations []labeling.Annotation) State {
	byAsset := make(map[string]labeling.Annotation, len(annotations))
	for _, ann := range annotations {
		byAsset[ann.AssetID] = ann
	}
	s.Annotations = byAsset
	return s
}

// syncDraft reloads the shown selection for the focused asset: the staged
// edit when there is one, else the committed annotation.
func (s State) syncDraft() State {
	sel, _ := labeling.SelectionForAsset(s.CurrentAssetID(), s.Pending, s.Annotations)
	s.SelectedLabelIDs = sel.LabelIDs
	s.CurrentStatus = sel.Status
	return s
}

// stage records ids as the draft of the focused asset and stores or drops
// its pending entry depending on whether it differs from the committed state.
func (s State) stage(ids []labeling.LabelID) State {
	assetID := s.CurrentAssetID()
	if assetID == "" {
		return s
	}
	ids = labeling.NormalizeIDs(ids)
	draft := labeling.Selection{LabelIDs: ids, Status: labeling.NextStatus(s.CurrentStatus, ids)}
	s.Pending = labeling.ApplyPending(s.Pending, assetID, draft, s.committedFor(assetID))
	s.SelectedLabelIDs = draft.LabelIDs
	s.CurrentStatus = draft.Status
	return s
}

func (s State) restore(a PendingRestored) State {
	if _, ok := s.Asset(a.AssetID); !ok || !a.Selection.Status.Valid() {
		return s
	}
	s.Pending = labeling.ApplyPending(s.Pending, a.AssetID, a.Selection, s.committedFor(a.AssetID))
	if _, staged := s.Pending[a.AssetID]; staged {
		s.EditMode = true
	}
	if a.AssetID == s.CurrentAssetID() {
		return s.syncDraft()
	}
	return s
}

func (s State) saved(a AnnotationSaved) State {
	if len(a.Annotations) == 0 && !a.Bulk {
		return s
	}
	next := maps.Clone(s.Annotations)
	if next == nil {
		next = map[string]labeling.Annotation{}
	}
	ids := make([]string, 0, len(a.Annotations))
	for _, ann := range a.Annotations {
		next[ann.AssetID] = ann
		ids = append(ids, ann.AssetID)
	}
	s.Annotations = next

	if a.Bulk {
		s.Pending = labeling.PendingMap{}
		s.EditMode = false
	} else {
		s.Pending = s.Pending.WithoutAssets(ids...)
	}
	return s.syncDraft()
}

func (s State) focus(assetID, folderPath string) State {
	if s.Tree.IndexOf(assetID) < 0 {
		return s
	}
	scope := s.FolderScope
	if folderPath != "" && folderPath != s.FolderScope {
		scope = folderPath
		s.CollapsedFolders = expandChain(s.CollapsedFolders, folderPath)
	}

	index := slices.Index(s.Tree.AssetsInScope(scope), assetID)
	if index < 0 {
		scope = ""
		index = s.Tree.IndexOf(assetID)
	}
	s.FolderScope = scope
	s.AssetIndex = index
	return s.syncDraft()
}

func (s State) navigate(delta int) State {
	n := len(s.ScopedAssetIDs())
	if n == 0 || delta == 0 {
		return s
	}
	current := s.CurrentIndex()
	target := min(max(current+delta, 0), n-1)
	if target == current {
		return s
	}
	s.AssetIndex = target
	return s.syncDraft()
}

// setMultiLabel truncates every selection to its first label when
// multi-label is turned off. Truncated pending entries are resolved again so
// an entry that now matches its committed state is dropped.
func (s State) setMultiLabel(enabled bool) State {
	s.MultiLabel = enabled
	if enabled {
		return s
	}

	if len(s.SelectedLabelIDs) > 1 {
		s.SelectedLabelIDs = []labeling.LabelID{s.SelectedLabelIDs[0]}
	}

	pending := s.Pending
	for _, id := range s.Pending.SortedAssetIDs() {
		entry := s.Pending[id]
		if len(entry.LabelIDs) <= 1 {
			continue
		}
		truncated := labeling.Selection{LabelIDs: labeling.FirstOnly(entry.LabelIDs), Status: entry.Status}
		pending = labeling.ApplyPending(pending, id, truncated, s.committedFor(id))
	}
	if len(pending) == len(s.Pending) && pendingEqual(pending, s.Pending) {
		return s
	}
	s.Pending = pending
	return s.syncDraft()
}

func pendingEqual(a, b labeling.PendingMap) bool {
	return maps.EqualFunc(a, b, func(x, y labeling.Selection) bool {
		return x.Status == y.Status && slices.Equal(x.LabelIDs, y.LabelIDs)
	})
}

func (s State) removeAssets(ids []string) State {
	if len(ids) == 0 {
		return s
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}

	s.Pending = s.Pending.WithoutAssets(ids...)
	annotations := make(map[string]labeling.Annotation, len(s.Annotations))
	for assetID, ann := range s.Annotations {
		if !gone[assetID] {
			annotations[assetID] = ann
		}
	}
	s.Annotations = annotations
	s.DeleteSelection = deletion.Clear(s.DeleteSelection, ids)

	remaining := make([]assettree.Asset, 0, len(s.Assets))
	for _, asset := range s.Assets {
		if !gone[asset.ID] {
			remaining = append(remaining, asset)
		}
	}
	return s.withAssets(remaining).syncDraft()
}

func (s State) hotkey(e hotkeys.Event) State {
	active := s.ActiveLabels()
	action, ok := hotkeys.Resolve(e, hotkeys.Context{ActiveLabelCount: len(active)})
	if !ok {
		return s
	}
	switch action.Type {
	case hotkeys.ActionNavigatePrev:
		return s.navigate(-1)
	case hotkeys.ActionNavigateNext:
		return s.navigate(1)
	case hotkeys.ActionToggleLabel:
		if action.LabelIndex < 0 || action.LabelIndex >= len(active) {
			return s
		}
		return Apply(s, ToggleLabel{LabelID: active[action.LabelIndex].ID})
	}
	return s
}

// expandChain marks folder and its ancestors as expanded
func expandChain(collapsed map[string]bool, folder string) map[string]bool {
	next := maps.Clone(collapsed)
	if next == nil {
		next = map[string]bool{}
	}
	for _, path := range assettree.FolderChain(folder) {
		next[path] = false
	}
	return next
}
