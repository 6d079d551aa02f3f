package importing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageCandidate(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImageCandidate(File{Name: "a.JPG"}))
	assert.True(t, IsImageCandidate(File{Name: "scan.tiff"}))
	assert.True(t, IsImageCandidate(File{Name: "noext", Type: "Image/HEIC"}))
	assert.False(t, IsImageCandidate(File{Name: "notes.txt", Type: "text/plain"}))
	assert.True(t, IsImageCandidate(File{Name: "jpg"}), "a bare extension counts")
}

func TestInferMIMEType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a.jpg":   "image/jpeg",
		"a.JPEG":  "image/jpeg",
		"a.png":   "image/png",
		"a.webp":  "image/webp",
		"a.tif":   "image/tiff",
		"a.bmp":   "image/bmp",
		"a.heic":  "application/octet-stream",
		"archive": "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, InferMIMEType(name), name)
	}
}

func TestTargetRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file File
		dir  string
		want string
	}{
		{"directory pick drops the picked root", File{Name: "a.jpg", RelativePath: "pics/sub/a.jpg"}, "batch", "batch/sub/a.jpg"},
		{"backslashes", File{Name: "a.jpg", RelativePath: `pics\a.jpg`}, `\batch\2\`, "batch/2/a.jpg"},
		{"single file pick", File{Name: "a.jpg"}, "batch", "batch/a.jpg"},
		{"relative path with only the root", File{Name: "a.jpg", RelativePath: "a.jpg"}, "batch", "batch/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TargetRelativePath(tt.file, tt.dir))
		})
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	files := []File{
		{Name: "a.png", RelativePath: "pics/a.png"},
		{Name: "readme.md", RelativePath: "pics/readme.md"},
		{Name: "b", Type: "image/gif", RelativePath: "pics/nested/b"},
	}

	planned, skipped := Plan(files, "imports")
	require.Len(t, planned, 2)
	assert.Equal(t, "imports/a.png", planned[0].RelativePath)
	assert.Equal(t, "image/png", planned[0].MIMEType)
	assert.Equal(t, "imports/nested/b", planned[1].RelativePath)
	assert.Equal(t, "image/gif", planned[1].MIMEType)
	require.Len(t, skipped, 1)
	assert.Equal(t, "readme.md", skipped[0].Name)

	assert.Equal(t, "pics", SourceFolderName(files))
	assert.Equal(t, "photo", SourceFolderName([]File{{Name: "photo.jpg"}}))
	assert.Empty(t, SourceFolderName(nil))
}
