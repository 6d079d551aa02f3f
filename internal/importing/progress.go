package importing

import (
	"fmt"
	"math"
	"time"
)

// Progress counts the work done by a running import
type Progress struct {
	TotalFiles     int
	CompletedFiles int
	UploadedFiles  int
	FailedFiles    int
	TotalBytes     int64
	ProcessedBytes int64
	StartedAt      time.Time
	ActiveFileName string
}

// ProgressView is the human readable rendering of Progress
type ProgressView struct {
	Percent        int    `json:"percent"`
	Elapsed        string `json:"elapsed"`
	ETA            string `json:"eta"`
	FileRate       string `json:"file_rate"`
	Speed          string `json:"speed"`
	Progress       string `json:"progress"`
	Bytes          string `json:"bytes"`
	RemainingFiles string `json:"remaining_files"`
	UploadedFiles  string `json:"uploaded_files"`
	FailedFiles    string `json:"failed_files"`
	ActiveFileName string `json:"active_file_name,omitempty"`
}

// View renders p as of now
func (p Progress) View(now time.Time) ProgressView {
	elapsed := max(now.Sub(p.StartedAt).Seconds(), 0.001)
	fileRate := float64(p.CompletedFiles) / elapsed
	byteRate := float64(p.ProcessedBytes) / elapsed
	remaining := max(p.TotalBytes-p.ProcessedBytes, 0)

	eta := "--"
	if byteRate > 0 {
		eta = FormatDuration(float64(remaining) / byteRate)
	}

	percent := 0
	if p.TotalFiles > 0 {
		percent = int(math.Round(float64(p.CompletedFiles) / float64(p.TotalFiles) * 100))
	}

	rateFormat := "%.1f files/s"
	if fileRate >= 10 {
		rateFormat = "%.0f files/s"
	}

	return ProgressView{
		Percent:        percent,
		Elapsed:        FormatDuration(elapsed),
		ETA:            eta,
		FileRate:       fmt.Sprintf(rateFormat, fileRate),
		Speed:          FormatBytes(byteRate) + "/s",
		Progress:       fmt.Sprintf("%d/%d", p.CompletedFiles, p.TotalFiles),
		Bytes:          FormatBytes(float64(p.ProcessedBytes)) + " / " + FormatBytes(float64(p.TotalBytes)),
		RemainingFiles: fmt.Sprintf("%d remaining", max(p.TotalFiles-p.CompletedFiles, 0)),
		UploadedFiles:  fmt.Sprintf("%d uploaded", p.UploadedFiles),
		FailedFiles:    fmt.Sprintf("%d failed", p.FailedFiles),
		ActiveFileName: p.ActiveFileName,
	}
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders a byte count with binary units up to GB
func FormatBytes(bytes float64) string {
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) || bytes <= 0 {
		return "0 B"
	}
	unit := 0
	for bytes >= 1024 && unit < len(byteUnits)-1 {
		bytes /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%.0f %s", bytes, byteUnits[unit])
	}
	return fmt.Sprintf("%.1f %s", bytes, byteUnits[unit])
}

// FormatDuration renders seconds as "42s" or "3m 5s"
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "0s"
	}
	rounded := int(math.Round(seconds))
	mins, secs := rounded/60, rounded%60
	if mins == 0 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
