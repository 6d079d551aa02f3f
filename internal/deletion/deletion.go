// Package deletion tracks which assets are marked for deletion and scopes
// folder deletes. All functions return new values and never modify inputs.
package deletion

import (
	"maps"
	"slices"
	"strings"

	"github.com/sheriffhq/sheriff/internal/assettree"
)

// Selection is the set of asset IDs marked for deletion
type Selection map[string]bool

// Toggle flips the membership of assetID
func Toggle(sel Selection, assetID string) Selection {
	next := maps.Clone(sel)
	if next == nil {
		next = Selection{}
	}
	if next[assetID] {
		delete(next, assetID)
	} else {
		next[assetID] = true
	}
	return next
}

// SelectScope marks every asset in scope, replacing any prior selection
func SelectScope(assetIDs []string) Selection {
	next := make(Selection, len(assetIDs))
	for _, id := range assetIDs {
		next[id] = true
	}
	return next
}

// Clear removes assetIDs from the selection. With no IDs the input is returned as is.
func Clear(sel Selection, assetIDs []string) Selection {
	if len(assetIDs) == 0 {
		return sel
	}
	next := maps.Clone(sel)
	for _, id := range assetIDs {
		delete(next, id)
	}
	return next
}

// Prune drops selected IDs for which exists reports false. The input is
// returned unchanged when every entry survives.
func Prune(sel Selection, exists func(assetID string) bool) Selection {
	next := make(Selection, len(sel))
	for id, selected := range sel {
		if selected && exists(id) {
			next[id] = true
		}
	}
	if len(next) == len(sel) {
		return sel
	}
	return next
}

// SelectedIDs returns the marked IDs sorted
func SelectedIDs(sel Selection) []string {
	ids := make([]string, 0, len(sel))
	for id, selected := range sel {
		if selected {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// inSubtree matches path against folder exactly or as a descendant.
// "abc" is not inside "ab".
func inSubtree(path, folder string) bool {
	return path == folder || strings.HasPrefix(path, folder+"/")
}

// ShouldResetSelectedFolder reports whether the selected folder scope was
// removed by deleting folder.
func ShouldResetSelectedFolder(selected, deleted string) bool {
	if selected == "" {
		return false
	}
	return inSubtree(selected, deleted)
}

// PruneCollapsedFolders drops collapse state for deleted and its descendants
func PruneCollapsedFolders(collapsed map[string]bool, deleted string) map[string]bool {
	next := maps.Clone(collapsed)
	if next == nil {
		return map[string]bool{}
	}
	for path := range next {
		if inSubtree(path, deleted) {
			delete(next, path)
		}
	}
	return next
}

// SubtreeTargets returns the asset IDs a folder delete must remove, in tree order
func SubtreeTargets(tree assettree.Tree, folder string) []string {
	if folder == "" {
		return []string{}
	}
	ids := tree.AssetsInScope(folder)
	if ids == nil {
		return []string{}
	}
	return ids
}
