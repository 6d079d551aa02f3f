package session

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

// Stage focuses assetID and stages ids as its label set. It reports false
// when the asset is not part of the open project.
func (s *Session) Stage(assetID string, ids []labeling.LabelID) (workspace.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Asset(assetID); !ok {
		return s.state, false
	}
	return s.applyLocked(
		workspace.FocusAsset{AssetID: assetID},
		workspace.SetEditMode{Enabled: true},
		workspace.SetLabels{LabelIDs: ids},
	), true
}

// Restore puts back every entry of pending that names an asset of the open
// project, status included, and returns the IDs it could not place.
func (s *Session) Restore(pending labeling.PendingMap) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []string
	actions := make([]workspace.Action, 0, len(pending))
	for _, id := range pending.SortedAssetIDs() {
		if _, ok := s.state.Asset(id); !ok {
			missing = append(missing, id)
			continue
		}
		actions = append(actions, workspace.PendingRestored{AssetID: id, Selection: pending[id]})
	}
	s.applyLocked(actions...)
	return missing
}

// stagedFile is the on-disk form of staged edits
type stagedFile struct {
	ProjectID string               `yaml:"project_id"`
	Edits     map[string]stagedRow `yaml:"edits"`
}

type stagedRow struct {
	Labels []int64 `yaml:"labels"`
	Status string  `yaml:"status"`
}

// SavePending writes the staged edits of the open project to path
func (s *Session) SavePending(path string) error {
	st := s.Snapshot()
	file := stagedFile{ProjectID: st.ProjectID, Edits: make(map[string]stagedRow, len(st.Pending))}
	for id, entry := range st.Pending {
		row := stagedRow{Labels: make([]int64, len(entry.LabelIDs)), Status: string(entry.Status)}
		for i, l := range entry.LabelIDs {
			row.Labels[i] = int64(l)
		}
		file.Edits[id] = row
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return stagingError(err, "marshal", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stagingError(err, "mkdir", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "staged-*.yaml")
	if err != nil {
		return stagingError(err, "create_temp", path)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return stagingError(err, "write", path)
	}
	if err := tmp.Close(); err != nil {
		return stagingError(err, "close", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return stagingError(err, "rename", path)
	}
	return nil
}

// LoadPending reads staged edits written by SavePending. A missing file
// yields an empty map. Edits saved for another project are an error.
func LoadPending(path, projectID string) (labeling.PendingMap, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return labeling.PendingMap{}, nil
	}
	if err != nil {
		return nil, stagingError(err, "read", path)
	}

	var file stagedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, stagingError(err, "unmarshal", path)
	}
	if file.ProjectID != "" && file.ProjectID != projectID {
		return nil, errors.Newf("staged edits belong to project %s", file.ProjectID).
			Component(componentName).
			Category(errors.CategoryState).
			Context("path", path).
			Context("project_id", projectID).
			Build()
	}

	pending := make(labeling.PendingMap, len(file.Edits))
	for id, row := range file.Edits {
		ids := make([]labeling.LabelID, len(row.Labels))
		for i, l := range row.Labels {
			ids[i] = labeling.LabelID(l)
		}
		status := labeling.Status(row.Status)
		if !status.Valid() {
			return nil, errors.Newf("invalid status %q for staged asset %s", row.Status, id).
				Component(componentName).
				Category(errors.CategoryValidation).
				Context("path", path).
				Build()
		}
		pending[id] = labeling.Selection{LabelIDs: labeling.NormalizeIDs(ids), Status: status}
	}
	return pending, nil
}

func stagingError(err error, op, path string) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryFileIO).
		Context("operation", op).
		Context("path", path).
		Build()
}
