package assettree

import "github.com/sheriffhq/sheriff/internal/labeling"

// FolderStatus summarizes the review progress of a folder subtree
type FolderStatus string

const (
	FolderEmpty        FolderStatus = "empty"
	FolderAllLabeled   FolderStatus = "all_labeled"
	FolderHasUnlabeled FolderStatus = "has_unlabeled"
)

// IsLabeled reports the review state shown for one asset. A staged edit
// decides when present; otherwise the committed status does.
func IsLabeled(assetID string, pending labeling.PendingMap, committed map[string]labeling.Annotation) bool {
	if entry, ok := pending[assetID]; ok {
		return entry.Status != labeling.StatusUnlabeled && len(entry.LabelIDs) > 0
	}
	ann, ok := committed[assetID]
	return ok && ann.Status != labeling.StatusUnlabeled
}

// FolderStatuses computes the status of every folder in the tree
func FolderStatuses(t Tree, pending labeling.PendingMap, committed map[string]labeling.Annotation) map[string]FolderStatus {
	out := make(map[string]FolderStatus, len(t.FolderAssetIDs))
	for path, ids := range t.FolderAssetIDs {
		if len(ids) == 0 {
			out[path] = FolderEmpty
			continue
		}
		status := FolderAllLabeled
		for _, id := range ids {
			if !IsLabeled(id, pending, committed) {
				status = FolderHasUnlabeled
				break
			}
		}
		out[path] = status
	}
	return out
}
