package config

import "github.com/nao1215/techtally/internal/model"

// DefaultKeywords returns the built-in keyword table.
// Order matters: buckets are created in the order their keyword first matches.
func DefaultKeywords() []model.Keyword {
	return []model.Keyword{
		{Name: "PHP", Bucket: "backend_dev"},
		{Name: "Laravel", Bucket: "backend_dev"},
		{Name: "C#", Bucket: "backend_dev"},
		{Name: ".NET", Bucket: "backend_dev"},
		{Name: "Java", Bucket: "backend_dev"},
		{Name: "Spring", Bucket: "backend_dev"},
		{Name: "Dart", Bucket: "mobile_dev"},
		{Name: "Go", Bucket: "mobile_dev"},
		{Name: "Golang", Bucket: "mobile_dev"},
		{Name: "Kotlin", Bucket: "mobile_dev"},
		{Name: "Swift", Bucket: "mobile_dev"},
		{Name: "Flutter", Bucket: "mobile_dev"},
		{Name: "Python", Bucket: "data_science_or_backend"},
		{Name: "Django", Bucket: "data_science_or_backend"},
		{Name: "SQL", Bucket: "database"},
		{Name: "JavaScript", Bucket: "frontend_dev"},
		{Name: "TypeScript", Bucket: "frontend_dev"},
	}
}

// DefaultAliases returns the built-in alias table, folding frameworks and
// alternate spellings into their base language.
func DefaultAliases() []model.Alias {
	return []model.Alias{
		{Source: "Laravel", Target: "PHP"},
		{Source: ".NET", Target: "C#"},
		{Source: "Spring", Target: "Java"},
		{Source: "Flutter", Target: "Dart"},
		{Source: "Golang", Target: "Go"},
		{Source: "Django", Target: "Python"},
		{Source: "TypeScript", Target: "JavaScript"},
	}
}
