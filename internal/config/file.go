package config

import (
	"time"

	"github.com/nao1215/techtally/internal/model"
)

// FilesSection overrides the stage file names.
type FilesSection struct {
	URLs       string `yaml:"urls,omitempty"`
	Filtered   string `yaml:"filtered,omitempty"`
	Categories string `yaml:"categories,omitempty"`
	Merged     string `yaml:"merged,omitempty"`
	Counts     string `yaml:"counts,omitempty"`
}

// FilterSection configures the filter stage.
type FilterSection struct {
	// Target is the category substring a listing must contain.
	Target string `yaml:"target,omitempty"`

	// Selector is the CSS selector of the category element.
	Selector string `yaml:"selector,omitempty"`
}

// CategorizeSection configures the categorize stage.
type CategorizeSection struct {
	// Selector is the CSS selector of the technology element.
	Selector string `yaml:"selector,omitempty"`

	// Keywords replaces the built-in keyword table when non-empty.
	Keywords []model.Keyword `yaml:"keywords,omitempty"`
}

// MergeSection configures the merge stage.
type MergeSection struct {
	// Aliases replaces the built-in alias table when non-empty.
	Aliases []model.Alias `yaml:"aliases,omitempty"`
}

// HTTPSection configures the page fetcher.
type HTTPSection struct {
	UserAgent   string            `yaml:"userAgent,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	Delay       *time.Duration    `yaml:"delay,omitempty"`
	MaxBodySize int64             `yaml:"maxBodySize,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .techtally configuration file.
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	Files      FilesSection      `yaml:"files,omitempty"`
	Filter     FilterSection     `yaml:"filter,omitempty"`
	Categorize CategorizeSection `yaml:"categorize,omitempty"`
	Merge      MergeSection      `yaml:"merge,omitempty"`
	HTTP       HTTPSection       `yaml:"http,omitempty"`
}

// Apply copies every value set in the file onto cfg.
// Delay is a pointer so that an explicit "delay: 0s" disables the pause.
func (f *File) Apply(cfg *Config) {
	setString(&cfg.URLsFile, f.Files.URLs)
	setString(&cfg.FilteredFile, f.Files.Filtered)
	setString(&cfg.BucketsFile, f.Files.Categories)
	setString(&cfg.MergedFile, f.Files.Merged)
	setString(&cfg.CountsFile, f.Files.Counts)

	setString(&cfg.TargetCategory, f.Filter.Target)
	setString(&cfg.CategorySelector, f.Filter.Selector)
	setString(&cfg.TechSelector, f.Categorize.Selector)

	if len(f.Categorize.Keywords) > 0 {
		cfg.Keywords = append([]model.Keyword(nil), f.Categorize.Keywords...)
	}
	if len(f.Merge.Aliases) > 0 {
		cfg.Aliases = append([]model.Alias(nil), f.Merge.Aliases...)
	}

	setString(&cfg.UserAgent, f.HTTP.UserAgent)
	if f.HTTP.Timeout != 0 {
		cfg.Timeout = f.HTTP.Timeout
	}
	if f.HTTP.Delay != nil {
		cfg.RequestDelay = *f.HTTP.Delay
	}
	if f.HTTP.MaxBodySize != 0 {
		cfg.MaxBodySize = f.HTTP.MaxBodySize
	}
	if len(f.HTTP.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.HTTP.Headers))
		}
		for k, v := range f.HTTP.Headers {
			cfg.Headers[k] = v
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
