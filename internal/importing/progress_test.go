package importing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "0 B", FormatBytes(math.Inf(1)))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 GB", FormatBytes(2*1024*1024*1024))
	assert.Equal(t, "2048.0 GB", FormatBytes(2*1024*1024*1024*1024))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0s", FormatDuration(-1))
	assert.Equal(t, "42s", FormatDuration(41.6))
	assert.Equal(t, "3m 5s", FormatDuration(185))
}

func TestProgressView(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := Progress{
		TotalFiles:     10,
		CompletedFiles: 4,
		UploadedFiles:  3,
		FailedFiles:    1,
		TotalBytes:     4096,
		ProcessedBytes: 1024,
		StartedAt:      start,
		ActiveFileName: "e.jpg",
	}

	v := p.View(start.Add(2 * time.Second))
	assert.Equal(t, 40, v.Percent)
	assert.Equal(t, "2s", v.Elapsed)
	assert.Equal(t, "6s", v.ETA)
	assert.Equal(t, "2.0 files/s", v.FileRate)
	assert.Equal(t, "512 B/s", v.Speed)
	assert.Equal(t, "4/10", v.Progress)
	assert.Equal(t, "1.0 KB / 4.0 KB", v.Bytes)
	assert.Equal(t, "6 remaining", v.RemainingFiles)
	assert.Equal(t, "3 uploaded", v.UploadedFiles)
	assert.Equal(t, "1 failed", v.FailedFiles)

	idle := Progress{TotalFiles: 0, StartedAt: start}.View(start)
	assert.Equal(t, 0, idle.Percent)
	assert.Equal(t, "--", idle.ETA)
}
