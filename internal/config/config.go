package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/techtally/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "techtally"

	// DefaultURLsFile is the JSON array of listing URLs read by the filter stage.
	DefaultURLsFile = "hrefs.json"

	// DefaultFilteredFile is the URL to category text map written by the filter stage.
	DefaultFilteredFile = "filtered_results.json"

	// DefaultBucketsFile is the keyword to URLs map written by the categorize stage.
	DefaultBucketsFile = "categorized_technologies.json"

	// DefaultMergedFile is the bucket map after aliases are folded.
	DefaultMergedFile = "categorized_technologies_merged.json"

	// DefaultCountsFile is the keyword to count map written by the count stage.
	DefaultCountsFile = "technology_counts.json"

	// DefaultTargetCategory is the category a listing must carry to pass the filter.
	DefaultTargetCategory = "Development"

	// DefaultCategorySelector locates the category tag on a listing page.
	DefaultCategorySelector = ".job-detail-des .tag-item"

	// DefaultTechSelector locates the fourth list item of the details block,
	// which lists the required technologies one per line.
	DefaultTechSelector = ".job-detail-des>li:nth-child(4)"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultRequestDelay is the pause between two consecutive requests.
	DefaultRequestDelay = 100 * time.Millisecond

	// DefaultUserAgent is a desktop browser User-Agent; listing sites tend to
	// reject unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits how much of a response body is parsed.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for techtally.
// It is populated from defaults, the configuration file and CLI flags, and is
// passed to the stages explicitly.
type Config struct {
	// URLsFile is the input of the filter stage.
	URLsFile string

	// FilteredFile is the output of the filter stage and the input of categorize.
	FilteredFile string

	// BucketsFile is the output of categorize and the input of merge.
	BucketsFile string

	// MergedFile is the output of merge and the input of count.
	MergedFile string

	// CountsFile is the output of count.
	CountsFile string

	// TargetCategory is matched case-insensitively as a substring of the
	// category element text.
	TargetCategory string

	// CategorySelector is the CSS selector of the category element.
	CategorySelector string

	// TechSelector is the CSS selector of the descriptive element scanned for keywords.
	TechSelector string

	// Keywords is the ordered keyword table used by categorize.
	Keywords []model.Keyword

	// Aliases is the ordered alias table applied by merge in a single pass.
	Aliases []model.Alias

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestDelay is the fixed pause between requests.
	RequestDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers, e.g. a session cookie.
	Headers map[string]string

	// MaxBodySize is the maximum number of body bytes parsed per page.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON lines.
	LogJSON bool

	// ConfigFilePath is the configuration file given on the command line.
	// Empty means search the current and home directories.
	ConfigFilePath string

	// JSONReport prints the count report as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the count report as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile redirects the count report to a file instead of stdout.
	ReportFile string

	// SaveHistory stores count results in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a Config with the default values.
func NewConfig() *Config {
	return &Config{
		URLsFile:         DefaultURLsFile,
		FilteredFile:     DefaultFilteredFile,
		BucketsFile:      DefaultBucketsFile,
		MergedFile:       DefaultMergedFile,
		CountsFile:       DefaultCountsFile,
		TargetCategory:   DefaultTargetCategory,
		CategorySelector: DefaultCategorySelector,
		TechSelector:     DefaultTechSelector,
		Keywords:         DefaultKeywords(),
		Aliases:          DefaultAliases(),
		Timeout:          DefaultTimeout,
		RequestDelay:     DefaultRequestDelay,
		UserAgent:        DefaultUserAgent,
		Headers:          make(map[string]string),
		MaxBodySize:      DefaultMaxBodySize,
		SaveHistory:      true,
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for techtally.
// On Linux: ~/.local/share/techtally
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for techtally.
// On Linux: ~/.config/techtally
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	for _, name := range []string{c.URLsFile, c.FilteredFile, c.BucketsFile, c.MergedFile, c.CountsFile} {
		if name == "" {
			return ErrEmptyFileName
		}
	}
	if c.TargetCategory == "" {
		return ErrEmptyTargetCategory
	}
	if c.CategorySelector == "" || c.TechSelector == "" {
		return ErrEmptySelector
	}
	for _, kw := range c.Keywords {
		if kw.Name == "" {
			return ErrInvalidKeyword
		}
	}
	for _, a := range c.Aliases {
		// A self alias would delete the bucket it merges into.
		if a.Source == "" || a.Target == "" || a.Source == a.Target {
			return ErrInvalidAlias
		}
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
