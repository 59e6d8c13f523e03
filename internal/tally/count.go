package tally

import (
	"cmp"
	"slices"
	"time"

	"github.com/nao1215/techtally/internal/model"
)

// Count sizes every bucket and sorts the entries by count, highest first.
// Ties keep their bucket order. Total counts memberships, so a URL in two
// buckets adds two.
func Count(buckets *model.Buckets) *model.CountReport {
	report := &model.CountReport{
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]model.CountEntry, 0, buckets.Len()),
	}
	buckets.Each(func(bucket string, urls []string) {
		report.Entries = append(report.Entries, model.CountEntry{Bucket: bucket, Count: len(urls)})
		report.Total += len(urls)
	})
	slices.SortStableFunc(report.Entries, func(a, b model.CountEntry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return report
}
