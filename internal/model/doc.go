// Package model defines the data structures shared by the techtally stages.
//
// This package contains the following main types:
//   - OrderedMap: a string-keyed map that keeps JSON document order
//   - Filtered, Buckets, Counts: the three file formats exchanged by the stages
//   - Keyword, Alias: rows of the keyword table and the merge alias table
//   - CountReport: the sorted result of the count stage
//   - Run: a record of one invocation (stage results and fetch outcomes)
//
// Stage files are plain JSON objects. Their key order is part of the output
// (the filtered file follows input order, the count file is sorted by count),
// so the maps used by the stages are ordered.
package model
