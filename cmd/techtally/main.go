// Package main provides the entry point for the techtally CLI.
//
// techtally scrapes job listing pages and tallies how often each programming
// language or technology is mentioned. It runs four stages, each reading the
// previous stage's JSON file from the current directory:
//
//	techtally filter      hrefs.json -> filtered_results.json
//	techtally categorize  filtered_results.json -> categorized_technologies.json
//	techtally merge       categorized_technologies.json -> categorized_technologies_merged.json
//	techtally count       categorized_technologies_merged.json -> technology_counts.json
//
// techtally run executes all four in order.
//
// See --help for all available options.
package main

func main() {
	Execute()
}
