package session

import (
	"context"
	_ "crypto/sha256"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/importing"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/observability/metrics"
)

// ImportRequest describes a local directory import
type ImportRequest struct {
	ProjectID string
	Root      string // local directory to scan
	Folder    string // virtual folder the files are placed under

	// Progress, when set, receives a snapshot after every file
	Progress func(importing.Progress)
}

// ImportResult summarizes an import
type ImportResult struct {
	Created []string // asset IDs
	Skipped []importing.File
	Failed  []importing.File
	Final   importing.Progress
}

// LocalFile is an import candidate found on disk
type LocalFile struct {
	importing.File
	Path string
}

// ScanDirectory lists the regular files under root in lexical order.
// RelativePath starts with the base name of root, the way a directory
// picker reports it.
func ScanDirectory(root string) ([]LocalFile, error) {
	base := filepath.Base(filepath.Clean(root))
	var files []LocalFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, LocalFile{
			File: importing.File{
				Name:         d.Name(),
				RelativePath: base + "/" + filepath.ToSlash(rel),
				Size:         info.Size(),
			},
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileIO).
			Context("operation", "scan_directory").
			Context("root", root).
			Build()
	}
	return files, nil
}

// ImportDirectory registers every image under req.Root as an asset of
// req.ProjectID. Files are checksummed locally and referenced by file URI.
func (s *Session) ImportDirectory(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if msg := importing.ValidateFolderName(req.Folder); msg != "" {
		return ImportResult{}, errors.New(errors.NewStd(msg)).
			Component(componentName).
			Category(errors.CategoryImport).
			Context("folder", req.Folder).
			Build()
	}
	if req.ProjectID == "" {
		return ImportResult{}, errors.New(errors.NewStd(importing.ErrProjectNotSelected)).
			Component(componentName).
			Category(errors.CategoryImport).
			Build()
	}

	scanned, err := ScanDirectory(req.Root)
	if err != nil {
		return ImportResult{}, err
	}
	localPath := make(map[string]string, len(scanned))
	files := make([]importing.File, 0, len(scanned))
	for _, f := range scanned {
		localPath[f.RelativePath] = f.Path
		files = append(files, f.File)
	}
	if len(files) == 0 {
		return ImportResult{}, errors.New(errors.NewStd(importing.ErrNoFiles)).
			Component(componentName).
			Category(errors.CategoryImport).
			Context("root", req.Root).
			Build()
	}

	planned, skipped := importing.Plan(files, importing.NormalizeFolderName(req.Folder))
	result := ImportResult{Skipped: skipped}
	progress := importing.Progress{TotalFiles: len(planned), StartedAt: time.Now()}
	for _, p := range planned {
		progress.TotalBytes += p.File.Size
	}

	for _, p := range planned {
		progress.ActiveFileName = p.File.Name
		if err := s.wait(ctx); err != nil {
			return result, err
		}

		assetID, err := s.importOne(ctx, req.ProjectID, localPath[p.File.RelativePath], p)
		progress.CompletedFiles++
		progress.ProcessedBytes += p.File.Size
		if err != nil {
			progress.FailedFiles++
			result.Failed = append(result.Failed, p.File)
			s.log.Warn("asset import failed",
				logger.String("project_id", req.ProjectID),
				logger.String("file", p.RelativePath),
				logger.Error(err))
		} else {
			progress.UploadedFiles++
			result.Created = append(result.Created, assetID)
		}
		if req.Progress != nil {
			req.Progress(progress)
		}
	}
	progress.ActiveFileName = ""
	result.Final = progress

	s.metrics.RecordOperation("import", metrics.StatusSuccess)
	if len(result.Created) > 0 {
		s.invalidate(req.ProjectID)
		if s.Snapshot().ProjectID == req.ProjectID {
			if _, err := s.Refresh(ctx); err != nil {
				return result, err
			}
		}
	}

	s.log.Info("import finished",
		logger.String("project_id", req.ProjectID),
		logger.Int("created", len(result.Created)),
		logger.Int("skipped", len(result.Skipped)),
		logger.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *Session) importOne(ctx context.Context, projectID, path string, p importing.Planned) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	in := client.AssetCreate{
		Type:     "image",
		URI:      (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		MIMEType: p.MIMEType,
		Checksum: sum.Encoded(),
		Metadata: map[string]any{
			"relative_path":     p.RelativePath,
			"original_filename": p.File.Name,
			"size_bytes":        p.File.Size,
		},
	}
	// unreadable headers leave the size unknown
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if w, h, ok := importing.ImageSize(f); ok {
		in.Width, in.Height = &w, &h
	}

	asset, err := s.backend.CreateAsset(ctx, projectID, in)
	if err != nil {
		return "", err
	}
	return asset.ID, nil
}
