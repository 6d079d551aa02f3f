package export

import (
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// ManifestFileName is the manifest entry inside an export archive
const ManifestFileName = "manifest.json"

// WriteArchive writes a zip holding the canonical manifest. modified is
// stamped on the entry so equal manifests produce equal archives.
func WriteArchive(w io.Writer, m Manifest, modified time.Time) error {
	body, err := Canonical(m)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	header := &zip.FileHeader{
		Name:     ManifestFileName,
		Method:   zip.Deflate,
		Modified: modified.UTC(),
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return exportError(err, "archive_create")
	}
	if _, err := entry.Write(body); err != nil {
		return exportError(err, "archive_write")
	}
	if err := zw.Close(); err != nil {
		return exportError(err, "archive_close")
	}
	return nil
}

// ReadArchive returns the manifest bytes stored in an export archive
func ReadArchive(r io.ReaderAt, size int64) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, exportError(err, "archive_open")
	}
	f, err := zr.Open(ManifestFileName)
	if err != nil {
		return nil, exportError(err, "archive_open")
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		return nil, exportError(err, "archive_read")
	}
	return body, nil
}
