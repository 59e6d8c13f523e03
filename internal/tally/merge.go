package tally

import "github.com/nao1215/techtally/internal/model"

// MergeResult describes one applied alias.
type MergeResult struct {
	Source string
	Target string

	// SourceSize is the number of URLs the source bucket held.
	SourceSize int

	// TargetSize is the size of the target bucket after the union.
	TargetSize int

	// Created is true when the target bucket did not exist before.
	Created bool
}

// Merge applies aliases to buckets in place, in table order, in a single pass.
// For each alias whose source bucket exists, the target becomes the
// deduplicated union of target and source URLs (target URLs first) and the
// source bucket is removed. A missing target is created at the end of the map.
// Aliases whose source is absent are skipped. Chains are not followed: an
// alias that targets a later alias's source is not re-merged.
func Merge(buckets *model.Buckets, aliases []model.Alias) []MergeResult {
	var results []MergeResult
	for _, a := range aliases {
		src, ok := buckets.Get(a.Source)
		if !ok {
			continue
		}
		dst, exists := buckets.Get(a.Target)
		union := Union(dst, src)

		buckets.Set(a.Target, union)
		buckets.Delete(a.Source)

		results = append(results, MergeResult{
			Source:     a.Source,
			Target:     a.Target,
			SourceSize: len(src),
			TargetSize: len(union),
			Created:    !exists,
		})
	}
	return results
}

// Union returns the distinct elements of a followed by those of b, in
// first-seen order.
func Union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
