// Package common holds helpers shared by the sheriff sub-commands
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/pagination"
	"github.com/sheriffhq/sheriff/internal/session"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

// OpenSession connects to the configured backend and opens projectID
func OpenSession(ctx context.Context, settings *conf.Settings, projectID string) (*session.Session, error) {
	c := client.NewFromSettings(settings)
	sess := session.NewFromSettings(c, settings)
	if _, err := sess.Open(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to open project %s: %w", projectID, err)
	}
	return sess, nil
}

// StagedPath is the file holding the staged edits of projectID between runs
func StagedPath(projectID string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("error locating cache directory: %w", err)
	}
	return filepath.Join(dir, "sheriff", "staged", projectID+".yaml"), nil
}

// RestoreStaged loads the staged edits of the open project into sess and
// returns the staging file path. Edits for assets that no longer exist are
// reported on w and dropped.
func RestoreStaged(w io.Writer, sess *session.Session) (string, error) {
	projectID := sess.Snapshot().ProjectID
	path, err := StagedPath(projectID)
	if err != nil {
		return "", err
	}
	pending, err := session.LoadPending(path, projectID)
	if err != nil {
		return "", err
	}
	for _, id := range sess.Restore(pending) {
		fmt.Fprintf(w, "dropping staged edit for missing asset %s\n", id)
	}
	return path, nil
}

// ParseLabelIDs converts command-line label arguments
func ParseLabelIDs(args []string) ([]labeling.LabelID, error) {
	ids := make([]labeling.LabelID, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid label id %q", arg)
		}
		ids = append(ids, labeling.LabelID(n))
	}
	return ids, nil
}

// RenderTree writes the visible tree rows of st. Folders show their review
// state; files show a check when labeled and an asterisk when staged.
func RenderTree(w io.Writer, st workspace.State) {
	statuses := st.FolderStatuses()
	current := st.CurrentAssetID()
	for _, e := range st.VisibleEntries() {
		indent := strings.Repeat("  ", e.Depth)
		if e.Kind == assettree.KindFolder {
			marker := "+"
			if st.CollapsedFolders[e.Path] {
				marker = ">"
			}
			fmt.Fprintf(w, "%s%s %s/ [%s]\n", indent, marker, e.Name, statuses[e.Path])
			continue
		}

		mark := " "
		if assettree.IsLabeled(e.AssetID, st.Pending, st.Annotations) {
			mark = "x"
		}
		line := fmt.Sprintf("%s[%s] %s", indent, mark, e.Name)
		if _, staged := st.Pending[e.AssetID]; staged {
			line += " *"
		}
		if e.AssetID == current {
			line += " <"
		}
		fmt.Fprintf(w, "%s  (%s)\n", line, e.AssetID)
	}
}

// LabelNames renders ids with the names of the project labels
func LabelNames(ids []labeling.LabelID, labels []labeling.Label) string {
	if len(ids) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		i := slices.IndexFunc(labels, func(l labeling.Label) bool { return l.ID == id })
		if i < 0 {
			names = append(names, strconv.FormatInt(int64(id), 10))
			continue
		}
		names = append(names, labels[i].Name)
	}
	return strings.Join(names, ", ")
}

// PageStrip renders the navigation position of st as a page strip for a
// viewer width in pixels, for example "1 ... 4 [5] 6 ... 12".
func PageStrip(st workspace.State, width int) string {
	total := len(st.ScopedAssetIDs())
	current := st.CurrentIndex()
	tokens := pagination.BuildPageTokens(total, current, pagination.EstimateMaxVisiblePages(total, width))

	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok.Type == pagination.TokenEllipsis:
			parts = append(parts, "...")
		case tok.Page == current+1:
			parts = append(parts, "["+strconv.Itoa(tok.Page)+"]")
		default:
			parts = append(parts, strconv.Itoa(tok.Page))
		}
	}
	return strings.Join(parts, " ")
}
