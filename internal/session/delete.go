package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/sheriffhq/sheriff/internal/deletion"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/observability/metrics"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

// DeleteSummary reports the outcome of a delete run
type DeleteSummary struct {
	Requested          int
	Removed            int
	Failed             int
	AnnotationsRemoved int
	Message            string
}

// DeleteAssets deletes assets of the open project one by one and reports a
// summary. IDs that are unknown or repeated are ignored. Assets that fail to
// delete stay in the workspace and keep their delete mark.
func (s *Session) DeleteAssets(ctx context.Context, assetIDs []string, scopeLabel string) (DeleteSummary, error) {
	st := s.Snapshot()
	if st.ProjectID == "" {
		summary := DeleteSummary{Failed: len(assetIDs), Message: "Select a dataset before deleting assets."}
		s.Dispatch(workspace.SetMessage{Text: summary.Message})
		return summary, nil
	}
	summary, removed, err := s.deleteTargets(ctx, st, assetIDs, scopeLabel)
	s.applyFor(st.ProjectID, workspace.AssetsDeleted{AssetIDs: removed}, workspace.SetMessage{Text: summary.Message})
	return summary, err
}

// DeleteCurrent deletes the focused asset
func (s *Session) DeleteCurrent(ctx context.Context) (DeleteSummary, error) {
	st := s.Snapshot()
	assetID := st.CurrentAssetID()
	if assetID == "" {
		summary := DeleteSummary{Message: "Select an image before removing it."}
		s.Dispatch(workspace.SetMessage{Text: summary.Message})
		return summary, nil
	}
	return s.DeleteAssets(ctx, []string{assetID}, fmt.Sprintf(`"%s"`, st.ProjectName))
}

// DeleteSelected deletes every asset marked for deletion
func (s *Session) DeleteSelected(ctx context.Context) (DeleteSummary, error) {
	st := s.Snapshot()
	ids := st.SelectedDeleteIDs()
	if len(ids) == 0 {
		summary := DeleteSummary{Message: "Select one or more images to remove."}
		s.Dispatch(workspace.SetMessage{Text: summary.Message})
		return summary, nil
	}
	scope := fmt.Sprintf(`project "%s"`, st.ProjectName)
	if st.FolderScope != "" {
		scope = fmt.Sprintf(`folder "%s"`, st.FolderScope)
	}
	return s.DeleteAssets(ctx, ids, scope)
}

// DeleteFolder deletes every asset in the folder subtree at path. When any
// asset was removed the folder's scope and collapse state are cleaned up.
func (s *Session) DeleteFolder(ctx context.Context, path string) (DeleteSummary, error) {
	st := s.Snapshot()
	if path == "" {
		summary := DeleteSummary{Message: "Select a folder before deleting it."}
		s.Dispatch(workspace.SetMessage{Text: summary.Message})
		return summary, nil
	}
	targets := deletion.SubtreeTargets(st.Tree, path)
	if len(targets) == 0 {
		summary := DeleteSummary{Message: fmt.Sprintf(`Folder "%s" has no images to delete.`, path)}
		s.Dispatch(workspace.SetMessage{Text: summary.Message})
		return summary, nil
	}

	summary, removed, err := s.deleteTargets(ctx, st, targets, fmt.Sprintf(`folder "%s"`, path))
	s.applyFor(st.ProjectID,
		workspace.FolderDeleted{Path: path, AssetIDs: removed},
		workspace.SetMessage{Text: summary.Message},
	)
	return summary, err
}

// deleteTargets performs the backend deletes and builds the summary. It
// does not touch the workspace.
func (s *Session) deleteTargets(ctx context.Context, st workspace.State, assetIDs []string, scopeLabel string) (DeleteSummary, []string, error) {
	seen := make(map[string]bool, len(assetIDs))
	targets := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := st.Asset(id); ok {
			targets = append(targets, id)
		}
	}

	summary := DeleteSummary{Requested: len(targets)}
	if len(targets) == 0 {
		summary.Message = fmt.Sprintf("No images selected to remove in %s.", scopeLabel)
		return summary, nil, nil
	}

	removed := make([]string, 0, len(targets))
	var errs []error
	for i, id := range targets {
		if err := s.wait(ctx); err != nil {
			summary.Failed += len(targets) - i
			errs = append(errs, err)
			break
		}
		if err := s.backend.DeleteAsset(ctx, st.ProjectID, id); err != nil {
			summary.Failed++
			errs = append(errs, err)
			s.log.Warn("asset delete failed",
				logger.String("project_id", st.ProjectID),
				logger.String("asset_id", id),
				logger.Error(err))
			continue
		}
		removed = append(removed, id)
		if _, ok := st.Annotations[id]; ok {
			summary.AnnotationsRemoved++
		}
	}
	summary.Removed = len(removed)

	s.metrics.RecordDeletion(metrics.StatusSuccess, summary.Removed)
	s.metrics.RecordDeletion(metrics.StatusError, summary.Failed)
	if summary.Removed > 0 {
		s.invalidate(st.ProjectID)
	}
	summary.Message = deleteMessage(summary, scopeLabel)

	s.log.Info("assets deleted",
		logger.String("project_id", st.ProjectID),
		logger.String("scope", scopeLabel),
		logger.Int("removed", summary.Removed),
		logger.Int("failed", summary.Failed))

	if len(errs) == 0 {
		return summary, removed, nil
	}
	return summary, removed, errors.New(errors.Join(errs...)).
		Component(componentName).
		Category(errors.CategoryNetwork).
		Context("operation", "delete_assets").
		Context("project_id", st.ProjectID).
		Context("failed", summary.Failed).
		Build()
}

func deleteMessage(d DeleteSummary, scopeLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deleted %d/%d images from %s", d.Removed, d.Requested, scopeLabel)
	switch {
	case d.Removed > 0:
		fmt.Fprintf(&b, " (annotations removed: %d", d.AnnotationsRemoved)
		if d.Failed > 0 {
			fmt.Fprintf(&b, ", failed: %d", d.Failed)
		}
		b.WriteString(").")
	case d.Failed > 0:
		fmt.Fprintf(&b, " (failed: %d).", d.Failed)
	default:
		b.WriteString(".")
	}
	return b.String()
}

// DeleteProject deletes the open project with everything in it and closes it
func (s *Session) DeleteProject(ctx context.Context) (workspace.State, error) {
	st := s.Snapshot()
	if st.ProjectID == "" {
		return s.Dispatch(workspace.SetMessage{Text: "Select a dataset before deleting it."}), nil
	}

	if err := s.backend.DeleteProject(ctx, st.ProjectID); err != nil {
		state, _ := s.applyFor(st.ProjectID, workspace.SetMessage{Text: "Failed to delete project: " + err.Error()})
		return state, errors.New(err).
			Component(componentName).
			Category(categoryOf(err)).
			Context("operation", "delete_project").
			Context("project_id", st.ProjectID).
			Build()
	}
	s.invalidate(st.ProjectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.multiLabelByProject, st.ProjectID)
	if s.state.ProjectID != st.ProjectID {
		return s.state, nil
	}
	s.generation++
	return s.applyLocked(
		workspace.Reset{},
		workspace.SetMessage{Text: fmt.Sprintf(`Deleted project "%s" (assets removed: %d, annotations removed: %d).`,
			st.ProjectName, len(st.Assets), len(st.Annotations))},
	), nil
}
