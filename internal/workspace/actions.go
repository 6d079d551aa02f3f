package workspace

import (
	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/hotkeys"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// Action is an event the reducer understands
type Action interface {
	// Name identifies the action in logs and metrics
	Name() string
}

// ProjectLoaded opens a project and resets every per-project view
type ProjectLoaded struct {
	ProjectID   string
	ProjectName string
	MultiLabel  bool
	Labels      []labeling.Label
	Assets      []assettree.Asset
	Annotations []labeling.Annotation
}

// AssetsReplaced swaps in a fresh asset list
type AssetsReplaced struct{ Assets []assettree.Asset }

// LabelsReplaced swaps in a fresh label list
type LabelsReplaced struct{ Labels []labeling.Label }

// AnnotationsReplaced swaps in the committed annotations
type AnnotationsReplaced struct{ Annotations []labeling.Annotation }

// AnnotationSaved records annotations returned by the backend. A bulk save
// clears every staged edit and leaves edit mode; a single save drops only the
// staged edits of the saved assets.
type AnnotationSaved struct {
	Annotations []labeling.Annotation
	Bulk        bool
}

// FocusAsset focuses an asset, optionally scoping navigation to its folder
type FocusAsset struct {
	AssetID    string
	FolderPath string
}

// Navigate moves focus by Delta within the scope, clamped at both ends
type Navigate struct{ Delta int }

// ToggleLabel flips one label on the focused asset
type ToggleLabel struct{ LabelID labeling.LabelID }

// SetLabels stages an explicit label set for the focused asset
type SetLabels struct{ LabelIDs []labeling.LabelID }

// SetEditMode switches staged editing on or off
type SetEditMode struct{ Enabled bool }

// SetMultiLabel switches multi-label selection on or off
type SetMultiLabel struct{ Enabled bool }

// SetFolderScope limits navigation to a folder subtree; "" shows everything
type SetFolderScope struct{ Path string }

// ToggleFolderCollapsed flips the collapse state of one folder row
type ToggleFolderCollapsed struct{ Path string }

// SetAllFoldersCollapsed collapses or expands every folder
type SetAllFoldersCollapsed struct{ Collapsed bool }

// ToggleBulkDelete enters or leaves bulk delete mode
type ToggleBulkDelete struct{}

// ToggleDeleteSelection marks or unmarks one asset in bulk delete mode
type ToggleDeleteSelection struct{ AssetID string }

// SelectAllDeleteScope marks every asset of the current scope
type SelectAllDeleteScope struct{}

// ClearDeleteSelection unmarks every asset
type ClearDeleteSelection struct{}

// AssetsDeleted removes assets the backend confirmed as deleted
type AssetsDeleted struct{ AssetIDs []string }

// FolderDeleted removes a folder subtree after the backend deleted its assets
type FolderDeleted struct {
	Path     string
	AssetIDs []string
}

// PendingRestored puts back a staged edit saved earlier. The selection is
// kept as saved, status included, and is dropped only when it equals the
// committed state.
type PendingRestored struct {
	AssetID   string
	Selection labeling.Selection
}

// PendingCleared drops every staged edit
type PendingCleared struct{}

// SetMessage replaces the status message
type SetMessage struct{ Text string }

// Reset closes the project
type Reset struct{}

// Hotkey applies a keyboard shortcut
type Hotkey struct{ Event hotkeys.Event }

func (ProjectLoaded) Name() string          { return "project_loaded" }
func (AssetsReplaced) Name() string         { return "assets_replaced" }
func (LabelsReplaced) Name() string         { return "labels_replaced" }
func (AnnotationsReplaced) Name() string    { return "annotations_replaced" }
func (AnnotationSaved) Name() string        { return "annotation_saved" }
func (FocusAsset) Name() string             { return "focus_asset" }
func (Navigate) Name() string               { return "navigate" }
func (ToggleLabel) Name() string            { return "toggle_label" }
func (SetLabels) Name() string              { return "set_labels" }
func (SetEditMode) Name() string            { return "set_edit_mode" }
func (SetMultiLabel) Name() string          { return "set_multi_label" }
func (SetFolderScope) Name() string         { return "set_folder_scope" }
func (ToggleFolderCollapsed) Name() string  { return "toggle_folder_collapsed" }
func (SetAllFoldersCollapsed) Name() string { return "set_all_folders_collapsed" }
func (ToggleBulkDelete) Name() string       { return "toggle_bulk_delete" }
func (ToggleDeleteSelection) Name() string  { return "toggle_delete_selection" }
func (SelectAllDeleteScope) Name() string   { return "select_all_delete_scope" }
func (ClearDeleteSelection) Name() string   { return "clear_delete_selection" }
func (AssetsDeleted) Name() string          { return "assets_deleted" }
func (FolderDeleted) Name() string          { return "folder_deleted" }
func (PendingRestored) Name() string        { return "pending_restored" }
func (PendingCleared) Name() string         { return "pending_cleared" }
func (SetMessage) Name() string             { return "set_message" }
func (Reset) Name() string                  { return "reset" }
func (Hotkey) Name() string                 { return "hotkey" }
