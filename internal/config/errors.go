package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrEmptyFileName is returned when one of the stage file names is empty.
	ErrEmptyFileName = errors.New("invalid file name: stage file names must not be empty")

	// ErrEmptyTargetCategory is returned when the filter target is empty.
	// An empty target would match every listing.
	ErrEmptyTargetCategory = errors.New("invalid target category: must not be empty")

	// ErrEmptySelector is returned when a CSS selector is empty.
	ErrEmptySelector = errors.New("invalid selector: must not be empty")

	// ErrInvalidKeyword is returned when a keyword table row has no name.
	ErrInvalidKeyword = errors.New("invalid keyword: name must not be empty")

	// ErrInvalidAlias is returned when an alias has an empty side or maps a
	// bucket onto itself.
	ErrInvalidAlias = errors.New("invalid alias: source and target must be non-empty and different")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
