// Package importing validates folder imports and maps local files to the
// virtual paths assets are created with.
package importing

import (
	"strings"
)

// Mode selects whether an import creates a project or extends one
type Mode string

const (
	ModeNew      Mode = "new"
	ModeExisting Mode = "existing"
)

// Validation messages shown next to the offending field
const (
	ErrFolderRequired     = "Folder name is required."
	ErrFolderDotSegments  = "Folder name cannot contain '.' or '..' path segments."
	ErrNoFiles            = "No files selected."
	ErrProjectNameMissing = "Project name is required for new project imports."
	ErrProjectNotSelected = "Please select an existing project."
)

// NormalizeFolderName converts backslashes and trims surrounding slashes
func NormalizeFolderName(raw string) string {
	return strings.Trim(strings.ReplaceAll(raw, `\`, "/"), "/")
}

// ValidateFolderName returns the message for an invalid target folder, or "" when valid
func ValidateFolderName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrFolderRequired
	}

	normalized := NormalizeFolderName(trimmed)
	if normalized == "" {
		return ErrFolderRequired
	}

	for segment := range strings.SplitSeq(normalized, "/") {
		if segment == "." || segment == ".." {
			return ErrFolderDotSegments
		}
	}
	return ""
}

// Params is the state of the import dialog
type Params struct {
	FilesCount        int
	Mode              Mode
	ExistingProjectID string
	NewProjectName    string
	FolderName        string
}

// Validation reports per-field errors; empty strings mean the field is fine
type Validation struct {
	FilesError   string `json:"files_error,omitempty"`
	ProjectError string `json:"project_error,omitempty"`
	FolderError  string `json:"folder_error,omitempty"`
	CanSubmit    bool   `json:"can_submit"`
}

// Validate checks every field of the dialog
func Validate(p Params) Validation {
	var v Validation
	if p.FilesCount <= 0 {
		v.FilesError = ErrNoFiles
	}

	if p.Mode == ModeNew {
		if strings.TrimSpace(p.NewProjectName) == "" {
			v.ProjectError = ErrProjectNameMissing
		}
	} else if p.ExistingProjectID == "" {
		v.ProjectError = ErrProjectNotSelected
	}

	v.FolderError = ValidateFolderName(p.FolderName)
	v.CanSubmit = v.FilesError == "" && v.ProjectError == "" && v.FolderError == ""
	return v
}

// Defaults are the remembered dialog preferences
type Defaults struct {
	Mode                    Mode              `json:"mode,omitempty"`
	ExistingProjectID       string            `json:"existing_project_id,omitempty"`
	ExistingFolderByProject map[string]string `json:"existing_folder_by_project,omitempty"`
}

// DialogState is the initial or updated form state
type DialogState struct {
	Mode                   Mode   `json:"mode"`
	ExistingProjectID      string `json:"existing_project_id"`
	SelectedExistingFolder string `json:"selected_existing_folder"`
	FolderName             string `json:"folder_name"`
	NewProjectName         string `json:"new_project_name,omitempty"`
}

// ResolveDialogDefaults picks the opening state of the dialog from remembered
// preferences, the project currently open and the picked folder's name.
// Existing mode without a project to target falls back to new.
func ResolveDialogDefaults(sourceFolderName, fallbackProjectID string, d Defaults) DialogState {
	preferredMode := d.Mode
	if preferredMode == "" {
		preferredMode = ModeNew
		if fallbackProjectID != "" {
			preferredMode = ModeExisting
		}
	}

	preferredProject := d.ExistingProjectID
	if preferredProject == "" {
		preferredProject = fallbackProjectID
	}

	mode := preferredMode
	if mode == ModeExisting && preferredProject == "" {
		mode = ModeNew
	}

	existingProject := ""
	if mode == ModeExisting {
		existingProject = preferredProject
	}

	remembered := ""
	if existingProject != "" {
		remembered = d.ExistingFolderByProject[existingProject]
	}

	state := DialogState{
		Mode:              mode,
		ExistingProjectID: existingProject,
		FolderName:        sourceFolderName,
		NewProjectName:    sourceFolderName,
	}
	if mode == ModeExisting {
		state.SelectedExistingFolder = remembered
		if remembered != "" {
			state.FolderName = remembered
		}
	}
	return state
}

// ResolveExistingProjectSelection updates the folder fields after the user picks a project
func ResolveExistingProjectSelection(projectID, sourceFolderName string, folderByProject map[string]string) DialogState {
	remembered := ""
	if projectID != "" {
		remembered = folderByProject[projectID]
	}
	folder := remembered
	if folder == "" {
		folder = sourceFolderName
	}
	return DialogState{
		Mode:                   ModeExisting,
		ExistingProjectID:      projectID,
		SelectedExistingFolder: remembered,
		FolderName:             folder,
	}
}

// ResolveModeSelection updates the form when the user switches mode
func ResolveModeSelection(mode Mode, currentProjectID, fallbackProjectID, sourceFolderName string, folderByProject map[string]string) DialogState {
	projectID := currentProjectID
	if projectID == "" {
		projectID = fallbackProjectID
	}

	if mode == ModeNew {
		return DialogState{
			Mode:              mode,
			ExistingProjectID: projectID,
			FolderName:        sourceFolderName,
		}
	}

	state := ResolveExistingProjectSelection(projectID, sourceFolderName, folderByProject)
	state.Mode = mode
	return state
}
