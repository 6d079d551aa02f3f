// Package labeling holds the pure annotation workflow rules: label-set
// normalization, the classification payload codec, status transitions,
// selection comparison, pending-edit resolution and the submit gate.
//
// Nothing here performs I/O or mutates its inputs. Every function returns
// fresh values so callers may hold snapshots across events.
package labeling

import "slices"

// LabelID identifies a label (category). IDs are integers server side.
type LabelID int64

// Status is the review state of an annotation
type Status string

const (
	StatusUnlabeled   Status = "unlabeled"
	StatusLabeled     Status = "labeled"
	StatusSkipped     Status = "skipped"
	StatusNeedsReview Status = "needs_review"
	StatusApproved    Status = "approved"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusUnlabeled, StatusLabeled, StatusSkipped, StatusNeedsReview, StatusApproved:
		return true
	}
	return false
}

// Label is a project category as served by the backend
type Label struct {
	ID           LabelID `json:"id"`
	ProjectID    string  `json:"project_id,omitempty"`
	Name         string  `json:"name"`
	DisplayOrder int     `json:"display_order"`
	IsActive     bool    `json:"is_active"`
}

// Annotation is the committed classification result for one asset
type Annotation struct {
	ID          string         `json:"id,omitempty"`
	AssetID     string         `json:"asset_id"`
	ProjectID   string         `json:"project_id,omitempty"`
	Status      Status         `json:"status"`
	Payload     map[string]any `json:"payload_json"`
	AnnotatedBy *string        `json:"annotated_by,omitempty"`
}

// Selection is a set of label IDs plus the status it implies.
// Comparison ignores label order.
type Selection struct {
	LabelIDs []LabelID `json:"label_ids"`
	Status   Status    `json:"status"`
}

// EmptySelection is the committed state of an asset without an annotation
func EmptySelection() Selection {
	return Selection{LabelIDs: []LabelID{}, Status: StatusUnlabeled}
}

// Clone returns a copy that shares no memory with s
func (s Selection) Clone() Selection {
	ids := slices.Clone(s.LabelIDs)
	if ids == nil {
		ids = []LabelID{}
	}
	return Selection{LabelIDs: ids, Status: s.Status}
}

// ActiveLabels returns the labels that participate in selection, in input order
func ActiveLabels(labels []Label) []Label {
	active := make([]Label, 0, len(labels))
	for _, l := range labels {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active
}

// SortLabels orders labels for the palette: display order, then ID
func SortLabels(labels []Label) []Label {
	sorted := slices.Clone(labels)
	slices.SortStableFunc(sorted, func(a, b Label) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return sorted
}
