// Package storage reads and writes the JSON files that connect the stages.
//
// Reads fail with ErrInputNotFound or ErrMalformedInput so that callers can
// abort a stage before it produces any output. Writes replace the whole file
// atomically: the document is written to a temporary file in the same
// directory and renamed over the target, so an interrupted stage never leaves
// a half-written file behind.
package storage
