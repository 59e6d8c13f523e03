package model

// Keyword is one row of the categorize keyword table.
// Name is matched against the descriptive element text and becomes the bucket
// key; Bucket is the broader area the keyword belongs to.
type Keyword struct {
	// Name is the technology keyword, e.g. "Laravel".
	Name string `yaml:"name" json:"name"`

	// Bucket is the area label, e.g. "backend_dev".
	Bucket string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
}

// Alias folds the Source bucket into the Target bucket during merge.
type Alias struct {
	// Source is the bucket that disappears after the merge, e.g. "Laravel".
	Source string `yaml:"source" json:"source"`

	// Target is the bucket that receives the union, e.g. "PHP".
	Target string `yaml:"target" json:"target"`
}

// KeywordNames returns the names of keywords in table order.
func KeywordNames(keywords []Keyword) []string {
	names := make([]string, len(keywords))
	for i, kw := range keywords {
		names[i] = kw.Name
	}
	return names
}
