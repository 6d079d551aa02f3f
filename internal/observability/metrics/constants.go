// Package metrics provides constants used across metric definitions.
package metrics

// Operation outcomes recorded in status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Submission modes.
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

// Histogram bucket constants for consistent bucket definitions.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart100B is the starting bucket for 100 byte histograms (100B to ~100MB range).
	BucketStart100B = 100.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketFactor10 is the exponential growth factor of 10 for larger ranges.
	BucketFactor10 = 10

	// BucketCount6 defines 6 exponential buckets.
	BucketCount6 = 6
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
