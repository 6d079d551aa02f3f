// Package workspace holds the labeling workspace state as one typed value
// and a pure reducer over typed actions.
//
// State values are treated as immutable: Apply returns a new State and never
// writes through maps or slices reachable from its input, so a caller may
// keep the previous State as a snapshot.
package workspace

import (
	"strings"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/deletion"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// State is everything the labeling workspace shows and edits
type State struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`

	Assets      []assettree.Asset              `json:"assets"`
	Tree        assettree.Tree                 `json:"tree"`
	Labels      []labeling.Label               `json:"labels"`
	Annotations map[string]labeling.Annotation `json:"annotations"`
	Pending     labeling.PendingMap            `json:"pending"`

	// AssetIndex points into the assets of the current folder scope. It may
	// run past the end after a delete; readers clamp it.
	AssetIndex       int                `json:"asset_index"`
	SelectedLabelIDs []labeling.LabelID `json:"selected_label_ids"`
	CurrentStatus    labeling.Status    `json:"current_status"`

	EditMode   bool `json:"edit_mode"`
	MultiLabel bool `json:"multi_label"`

	BulkDelete       bool               `json:"bulk_delete"`
	DeleteSelection  deletion.Selection `json:"delete_selection"`
	CollapsedFolders map[string]bool    `json:"collapsed_folders"`
	FolderScope      string             `json:"folder_scope"`

	Message string `json:"message,omitempty"`

	byID map[string]int
}

// New returns the state of a workspace with no project open
func New() State {
	return State{
		Tree:             assettree.Build(nil),
		Annotations:      map[string]labeling.Annotation{},
		Pending:          labeling.PendingMap{},
		SelectedLabelIDs: []labeling.LabelID{},
		CurrentStatus:    labeling.StatusUnlabeled,
		DeleteSelection:  deletion.Selection{},
		CollapsedFolders: map[string]bool{},
	}
}

// ScopedAssetIDs lists the navigable assets: the folder scope subtree, or every asset
func (s State) ScopedAssetIDs() []string {
	return s.Tree.AssetsInScope(s.FolderScope)
}

// CurrentIndex is AssetIndex clamped to the scoped asset list
func (s State) CurrentIndex() int {
	n := len(s.Tree.AssetsInScope(s.FolderScope))
	return min(max(s.AssetIndex, 0), max(n-1, 0))
}

// CurrentAssetID returns the focused asset ID, or "" when the scope is empty
func (s State) CurrentAssetID() string {
	ids := s.ScopedAssetIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[s.CurrentIndex()]
}

// CurrentAsset returns the focused asset
func (s State) CurrentAsset() (assettree.Asset, bool) {
	return s.Asset(s.CurrentAssetID())
}

// Asset looks up an asset by ID
func (s State) Asset(id string) (assettree.Asset, bool) {
	if id == "" {
		return assettree.Asset{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return assettree.Asset{}, false
	}
	return s.Assets[i], true
}

// ActiveLabels returns the selectable labels in palette order
func (s State) ActiveLabels() []labeling.Label {
	return labeling.SortLabels(labeling.ActiveLabels(s.Labels))
}

// Draft is the selection shown for the focused asset, limited to active labels
func (s State) Draft() labeling.Selection {
	ids := labeling.ResolveActiveSelection(s.SelectedLabelIDs, s.Labels)
	return labeling.Selection{LabelIDs: ids, Status: labeling.NextStatus(s.CurrentStatus, ids)}
}

// Committed is the stored selection of the focused asset
func (s State) Committed() labeling.Selection {
	return s.committedFor(s.CurrentAssetID())
}

func (s State) committedFor(assetID string) labeling.Selection {
	if ann, ok := s.Annotations[assetID]; ok {
		return labeling.CommittedSelection(&ann)
	}
	return labeling.EmptySelection()
}

// PendingCount is the number of staged edits
func (s State) PendingCount() int {
	return len(s.Pending)
}

// IsDirty reports whether assetID has a staged edit
func (s State) IsDirty(assetID string) bool {
	_, ok := s.Pending[assetID]
	return ok
}

// CanSubmit reports whether Submit is enabled
func (s State) CanSubmit() bool {
	return labeling.CanSubmit(labeling.SubmitGate{
		PendingCount:    s.PendingCount(),
		EditMode:        s.EditMode,
		HasCurrentAsset: s.CurrentAssetID() != "",
		Draft:           s.Draft(),
		Committed:       s.Committed(),
	})
}

// FolderStatuses returns the review state of every folder
func (s State) FolderStatuses() map[string]assettree.FolderStatus {
	return assettree.FolderStatuses(s.Tree, s.Pending, s.Annotations)
}

// SelectedDeleteIDs lists the assets marked for deletion
func (s State) SelectedDeleteIDs() []string {
	return deletion.SelectedIDs(s.DeleteSelection)
}

// VisibleEntries drops tree rows hidden under a collapsed folder
func (s State) VisibleEntries() []assettree.Entry {
	visible := make([]assettree.Entry, 0, len(s.Tree.Entries))
	for _, e := range s.Tree.Entries {
		parent := e.FolderPath
		if e.Kind == assettree.KindFolder {
			parent = ""
			if i := strings.LastIndexByte(e.Path, '/'); i >= 0 {
				parent = e.Path[:i]
			}
		}
		if !s.hiddenUnder(parent) {
			visible = append(visible, e)
		}
	}
	return visible
}

func (s State) hiddenUnder(parent string) bool {
	if parent == "" {
		return false
	}
	for _, ancestor := range assettree.FolderChain(parent) {
		if s.CollapsedFolders[ancestor] {
			return true
		}
	}
	return false
}

// Tone classifies a status message for display
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// MessageTone reports error for messages mentioning a failure, success otherwise
func MessageTone(message string) Tone {
	if message == "" {
		return ToneInfo
	}
	lower := strings.ToLower(message)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
		return ToneError
	}
	return ToneSuccess
}
