package tally

import (
	"strings"

	"github.com/nao1215/techtally/internal/model"
)

// MatchesCategory reports whether text contains target, ignoring case.
func MatchesCategory(text, target string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(target))
}

// MatchKeywords returns the keywords, in table order, whose lowercased name
// followed by a newline occurs in the lowercased text.
//
// The newline anchors the match to the end of a line of the technology list,
// so "Java" does not match "JavaScript". It does not anchor the start:
// "Go" matches a "Django" line.
func MatchKeywords(text string, keywords []model.Keyword) []model.Keyword {
	lower := strings.ToLower(text)
	var matched []model.Keyword
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw.Name)+"\n") {
			matched = append(matched, kw)
		}
	}
	return matched
}

// AddToBuckets appends pageURL to the bucket of every matched keyword,
// creating buckets on first use.
func AddToBuckets(buckets *model.Buckets, pageURL string, matched []model.Keyword) {
	for _, kw := range matched {
		urls, _ := buckets.Get(kw.Name)
		buckets.Set(kw.Name, append(urls, pageURL))
	}
}
