// Package tally holds the pure decisions of the pipeline: whether a category
// text matches, which keywords a technology list mentions, how alias buckets
// fold into their targets, and how buckets become a sorted count report.
//
// Nothing here performs I/O; the pipeline package feeds these functions with
// fetched text and decoded files.
package tally
