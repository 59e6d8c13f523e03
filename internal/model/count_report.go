package model

import "time"

// CountEntry is the size of one bucket.
type CountEntry struct {
	// Bucket is the technology keyword.
	Bucket string `json:"bucket"`

	// Count is the number of URLs in the bucket.
	Count int `json:"count"`
}

// CountReport is the output of the count stage.
// Entries are sorted by Count, highest first. Total is the sum of all counts,
// which counts a URL once per bucket it belongs to.
type CountReport struct {
	// Source is the bucket file the counts were computed from.
	Source string `json:"source,omitempty"`

	// GeneratedAt is when the counts were computed.
	GeneratedAt time.Time `json:"generated_at"`

	// Entries are the per-bucket counts in report order.
	Entries []CountEntry `json:"entries"`

	// Total is the sum of all entry counts.
	Total int `json:"total"`
}

// Counts returns the entries as an ordered map, the shape of the count file.
func (r *CountReport) Counts() *Counts {
	counts := NewOrderedMap[int]()
	for _, e := range r.Entries {
		counts.Set(e.Bucket, e.Count)
	}
	return counts
}

// Lookup returns the count for bucket and whether the bucket is present.
func (r *CountReport) Lookup(bucket string) (int, bool) {
	for _, e := range r.Entries {
		if e.Bucket == bucket {
			return e.Count, true
		}
	}
	return 0, false
}

// Share returns the fraction of Total held by count, or 0 when Total is 0.
func (r *CountReport) Share(count int) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(count) / float64(r.Total)
}
