package importing

import (
	"path"
	"strings"
)

// File is a local file offered for import
type File struct {
	Name         string // base name
	Type         string // MIME type reported by the picker, may be empty
	RelativePath string // path inside the picked directory, first segment is the directory itself
	Size         int64
}

var imageExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return strings.ToLower(name)
}

// IsImageCandidate accepts files with an image MIME type or a known image extension
func IsImageCandidate(f File) bool {
	if strings.HasPrefix(strings.ToLower(f.Type), "image/") {
		return true
	}
	_, ok := imageExtensions[extension(f.Name)]
	return ok
}

// InferMIMEType maps a filename to its image MIME type, or application/octet-stream
func InferMIMEType(filename string) string {
	if mime, ok := imageExtensions[extension(filename)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// TargetRelativePath places f under folder, keeping the structure below the
// picked directory. Files picked without a directory land directly in folder.
func TargetRelativePath(f File, folder string) string {
	normalizedFolder := NormalizeFolderName(folder)

	remainder := f.Name
	if f.RelativePath != "" {
		parts := strings.Split(strings.ReplaceAll(f.RelativePath, `\`, "/"), "/")
		var kept []string
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		if len(kept) > 1 {
			remainder = strings.Join(kept[1:], "/")
		} else {
			remainder = ""
		}
	}
	if remainder == "" {
		remainder = f.Name
	}
	return normalizedFolder + "/" + remainder
}

// Planned is one asset to create for an import
type Planned struct {
	File         File
	RelativePath string
	MIMEType     string
}

// Plan filters image candidates and computes their target paths and MIME types.
// Skipped files are returned separately so callers can report them.
func Plan(files []File, folder string) (planned []Planned, skipped []File) {
	for _, f := range files {
		if !IsImageCandidate(f) {
			skipped = append(skipped, f)
			continue
		}
		mime := f.Type
		if mime == "" {
			mime = InferMIMEType(f.Name)
		}
		planned = append(planned, Planned{
			File:         f,
			RelativePath: TargetRelativePath(f, folder),
			MIMEType:     mime,
		})
	}
	return planned, skipped
}

// SourceFolderName is the picked directory name used to prefill the dialog
func SourceFolderName(files []File) string {
	for _, f := range files {
		rel := strings.ReplaceAll(f.RelativePath, `\`, "/")
		if first, _, ok := strings.Cut(strings.TrimLeft(rel, "/"), "/"); ok && first != "" {
			return first
		}
	}
	if len(files) > 0 {
		return strings.TrimSuffix(files[0].Name, path.Ext(files[0].Name))
	}
	return ""
}
