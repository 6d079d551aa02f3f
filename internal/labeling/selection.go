package labeling

import (
	"maps"
	"slices"
)

// NextStatus derives the status for a new label set. An empty set always
// demotes to unlabeled, the first label promotes unlabeled to labeled, and
// any other status is kept.
func NextStatus(current Status, ids []LabelID) Status {
	if len(ids) == 0 {
		return StatusUnlabeled
	}
	if current == StatusUnlabeled {
		return StatusLabeled
	}
	return current
}

// Equal reports whether two selections have the same status and label set
func Equal(a, b Selection) bool {
	if a.Status != b.Status {
		return false
	}
	left := NormalizeIDs(a.LabelIDs)
	right := NormalizeIDs(b.LabelIDs)
	if len(left) != len(right) {
		return false
	}
	slices.Sort(left)
	slices.Sort(right)
	return slices.Equal(left, right)
}

// CommittedSelection reads the selection an annotation commits to.
// A nil annotation is the empty selection.
func CommittedSelection(ann *Annotation) Selection {
	if ann == nil {
		return EmptySelection()
	}
	return Selection{LabelIDs: ReadLabelIDs(ann.Payload), Status: ann.Status}
}

// ResolvePending returns the pending entry to store for draft, or false when
// the draft matches what is committed and any entry must be dropped.
func ResolvePending(draft, committed Selection) (Selection, bool) {
	if Equal(draft, committed) {
		return Selection{}, false
	}
	return Selection{LabelIDs: NormalizeIDs(draft.LabelIDs), Status: draft.Status}, true
}

// PendingMap holds staged edits keyed by asset ID
type PendingMap map[string]Selection

// ApplyPending resolves draft for assetID and returns the updated map.
// The input map is never modified; it is returned as is when nothing changes.
func ApplyPending(pending PendingMap, assetID string, draft, committed Selection) PendingMap {
	entry, keep := ResolvePending(draft, committed)
	_, exists := pending[assetID]
	if !keep && !exists {
		return pending
	}

	next := make(PendingMap, len(pending)+1)
	maps.Copy(next, pending)
	if keep {
		next[assetID] = entry
	} else {
		delete(next, assetID)
	}
	return next
}

// WithoutAssets returns pending minus the given asset IDs
func (p PendingMap) WithoutAssets(ids ...string) PendingMap {
	changed := false
	for _, id := range ids {
		if _, ok := p[id]; ok {
			changed = true
			break
		}
	}
	if !changed {
		return p
	}
	next := maps.Clone(p)
	for _, id := range ids {
		delete(next, id)
	}
	return next
}

// SortedAssetIDs lists the staged asset IDs in byte order
func (p PendingMap) SortedAssetIDs() []string {
	return slices.Sorted(maps.Keys(p))
}

// SubmitGate carries the inputs of CanSubmit
type SubmitGate struct {
	PendingCount    int
	EditMode        bool
	HasCurrentAsset bool
	Draft           Selection
	Committed       Selection
}

// CanSubmit decides whether Submit is enabled. Any staged edit enables it.
// Edit mode with nothing staged, or no focused asset, disables it. Otherwise
// a direct save is allowed when the draft differs from the committed state.
func CanSubmit(g SubmitGate) bool {
	if g.PendingCount > 0 {
		return true
	}
	if g.EditMode {
		return false
	}
	if !g.HasCurrentAsset {
		return false
	}
	return !Equal(g.Draft, g.Committed)
}

// SelectionSource tells where SelectionForAsset found its answer
type SelectionSource string

const (
	SourceEmpty     SelectionSource = "empty"
	SourcePending   SelectionSource = "pending"
	SourceCommitted SelectionSource = "committed"
)

// SelectionForAsset loads the selection shown when assetID gains focus:
// a staged edit first, then the committed annotation, then the empty state.
func SelectionForAsset(assetID string, pending PendingMap, committed map[string]Annotation) (Selection, SelectionSource) {
	if assetID == "" {
		return EmptySelection(), SourceEmpty
	}
	if entry, ok := pending[assetID]; ok {
		return Selection{LabelIDs: NormalizeIDs(entry.LabelIDs), Status: entry.Status}, SourcePending
	}
	ann, ok := committed[assetID]
	if !ok {
		return EmptySelection(), SourceEmpty
	}
	return CommittedSelection(&ann), SourceCommitted
}

// ToggleLabel flips id in the current selection. In single-label mode the
// label replaces the selection, and toggling the sole selected label clears it.
func ToggleLabel(current []LabelID, id LabelID, multiLabel bool) []LabelID {
	ids := NormalizeIDs(current)
	if multiLabel {
		if i := slices.Index(ids, id); i >= 0 {
			return slices.Delete(ids, i, i+1)
		}
		return append(ids, id)
	}
	if len(ids) == 1 && ids[0] == id {
		return []LabelID{}
	}
	return []LabelID{id}
}

// FirstOnly truncates ids to their first entry, used when multi-label is turned off
func FirstOnly(ids []LabelID) []LabelID {
	ids = NormalizeIDs(ids)
	if len(ids) > 1 {
		return ids[:1]
	}
	return ids
}
