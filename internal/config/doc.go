// Package config holds the parameters of the techtally stages.
//
// Every parameter has a default set by NewConfig: the stage file names, the
// target category, the CSS selectors, the keyword and alias tables, and the
// HTTP settings. A YAML file (.techtally) can override any of them, and the
// CLI flags override the file. The resulting Config is passed explicitly into
// each stage; no stage reads package-level state.
//
// # Configuration file
//
//	files:
//	  urls: hrefs.json
//	  counts: technology_counts.json
//	filter:
//	  target: Development
//	categorize:
//	  keywords:
//	    - name: Rust
//	      bucket: backend_dev
//	merge:
//	  aliases:
//	    - source: Actix
//	      target: Rust
//	http:
//	  timeout: 10s
//	  delay: 100ms
package config
