package session

import (
	"context"
	"fmt"

	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/observability/metrics"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

// Messages shown after a submit
const (
	MsgSelectAssetFirst   = "Select a dataset and asset before submitting."
	MsgSelectProjectFirst = "Select a dataset before submitting."
	MsgLabelUnresolved    = "Selected label could not be resolved."
	MsgCleared            = "Cleared annotation labels."
	MsgSaved              = "Saved annotation."
	MsgNothingStaged      = "No staged edits to submit."
	MsgSubmitFailed       = "Failed to submit annotation."
)

// Submit saves staged edits when there are any, otherwise the draft of the
// focused asset. The outcome is reported through the state message; the
// returned error is non-nil only when the backend rejected a save.
func (s *Session) Submit(ctx context.Context) (workspace.State, error) {
	st := s.Snapshot()
	if st.PendingCount() > 0 {
		return s.submitPending(ctx, st)
	}
	return s.submitSingle(ctx, st)
}

// SubmitPending saves the staged edits only
func (s *Session) SubmitPending(ctx context.Context) (workspace.State, error) {
	return s.submitPending(ctx, s.Snapshot())
}

func (s *Session) submitSingle(ctx context.Context, st workspace.State) (workspace.State, error) {
	assetID := st.CurrentAssetID()
	if st.ProjectID == "" || assetID == "" {
		return s.Dispatch(workspace.SetMessage{Text: MsgSelectAssetFirst}), nil
	}

	input, ok := labeling.BuildUpsertInput(assetID, st.CurrentStatus, st.SelectedLabelIDs, st.Labels,
		labeling.WithSource(s.payloadSource))
	if !ok {
		s.metrics.RecordSubmission(metrics.ModeSingle, metrics.StatusSkipped, 1)
		return s.Dispatch(workspace.SetMessage{Text: MsgLabelUnresolved}), nil
	}

	ann, err := s.backend.UpsertAnnotation(ctx, st.ProjectID, upsertBody(input))
	if err != nil {
		s.metrics.RecordSubmission(metrics.ModeSingle, metrics.StatusError, 1)
		state, _ := s.applyFor(st.ProjectID, workspace.SetMessage{Text: submitFailureMessage(err)})
		return state, s.submitError(err, st.ProjectID, assetID)
	}
	s.metrics.RecordSubmission(metrics.ModeSingle, metrics.StatusSuccess, 1)
	s.invalidate(st.ProjectID)

	msg := MsgSaved
	if input.IsUnlabeledSelection {
		msg = MsgCleared
	}
	state, _ := s.applyFor(st.ProjectID,
		workspace.AnnotationSaved{Annotations: []labeling.Annotation{ann}},
		workspace.SetMessage{Text: msg},
	)
	return state, nil
}

// submitPending saves every staged edit in asset ID order. Entries whose
// payload cannot be built are skipped and stay staged. A backend failure
// stops the run; edits saved before it are kept.
func (s *Session) submitPending(ctx context.Context, st workspace.State) (workspace.State, error) {
	if st.ProjectID == "" {
		return s.Dispatch(workspace.SetMessage{Text: MsgSelectProjectFirst}), nil
	}
	if st.PendingCount() == 0 {
		return s.Dispatch(workspace.SetMessage{Text: MsgNothingStaged}), nil
	}

	saved := make([]labeling.Annotation, 0, st.PendingCount())
	skipped := 0
	for _, assetID := range st.Pending.SortedAssetIDs() {
		entry := st.Pending[assetID]
		input, ok := labeling.BuildUpsertInput(assetID, entry.Status, entry.LabelIDs, st.Labels,
			labeling.WithSource(s.payloadSource))
		if !ok {
			skipped++
			continue
		}

		if err := s.wait(ctx); err != nil {
			return s.abortPending(st.ProjectID, assetID, saved, err)
		}
		ann, err := s.backend.UpsertAnnotation(ctx, st.ProjectID, upsertBody(input))
		if err != nil {
			return s.abortPending(st.ProjectID, assetID, saved, err)
		}
		saved = append(saved, ann)
	}

	s.metrics.RecordSubmission(metrics.ModeBulk, metrics.StatusSuccess, len(saved))
	if skipped > 0 {
		s.metrics.RecordSubmission(metrics.ModeBulk, metrics.StatusSkipped, skipped)
		s.log.Warn("skipped staged edits with unresolvable labels",
			logger.String("project_id", st.ProjectID),
			logger.Int("skipped", skipped))
	}
	if len(saved) > 0 {
		s.invalidate(st.ProjectID)
	}

	state, _ := s.applyFor(st.ProjectID,
		workspace.AnnotationSaved{Annotations: saved, Bulk: true},
		workspace.SetMessage{Text: fmt.Sprintf("Submitted %d staged annotations.", len(saved))},
	)
	return state, nil
}

func (s *Session) abortPending(projectID, assetID string, saved []labeling.Annotation, err error) (workspace.State, error) {
	s.metrics.RecordSubmission(metrics.ModeBulk, metrics.StatusSuccess, len(saved))
	s.metrics.RecordSubmission(metrics.ModeBulk, metrics.StatusError, 1)
	if len(saved) > 0 {
		s.invalidate(projectID)
	}
	state, _ := s.applyFor(projectID,
		workspace.AnnotationSaved{Annotations: saved},
		workspace.SetMessage{Text: submitFailureMessage(err)},
	)
	return state, s.submitError(err, projectID, assetID)
}

func (s *Session) submitError(err error, projectID, assetID string) error {
	s.log.Error("annotation submit failed",
		logger.String("project_id", projectID),
		logger.String("asset_id", assetID),
		logger.Error(err))
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryAnnotation).
		Context("operation", "submit").
		Context("project_id", projectID).
		Context("asset_id", assetID).
		Build()
}

func upsertBody(in labeling.UpsertInput) client.AnnotationUpsert {
	return client.AnnotationUpsert{
		AssetID: in.AssetID,
		Status:  in.Status,
		Payload: in.Payload.ToMap(),
	}
}

// submitFailureMessage shows backend errors verbatim and anything else generically
func submitFailureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return MsgSubmitFailed
}
