// Package logtail provides utilities for reading the client's own log file.
//
// # Overview
//
// This package implements efficient tail-like reading of the deckhand log
// for display in the in-app log overlay. The file holds one zap JSON object
// per line; ParseLine recovers the structured parts so the overlay can
// style them without re-implementing a log format.
//
// # Core Functionality
//
// The package provides two main capabilities:
//
//  1. Read: Efficiently extract the last N lines from a log file
//  2. ParseLine: Decode a zap production JSON line into its parts
//
// # Reading Log Files
//
// The Read function uses a ring buffer algorithm to extract the last
// maxLines from a file, regardless of file size. This approach:
//
//   - Scans the file sequentially (one pass)
//   - Uses O(maxLines) memory, not O(file size)
//   - Returns lines in correct chronological order
//   - Handles files larger than available memory
//
// Example usage:
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//	if err != nil {
//		logger.Warn("failed to read log", zap.Error(err))
//	}
//
// # Ring Buffer Algorithm
//
// The read implementation uses a circular buffer of size maxLines:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines:
//	   - Return first 'count' entries from buffer
//	4. If total >= maxLines:
//	   - Return buffer starting from current index (oldest line)
//
// This ensures the last maxLines are always available without multiple passes.
//
// # Parsing
//
// ParseLine unmarshals one line and maps the zap production encoder keys
// (ts, level, msg) onto an Entry. Every other key becomes a Field, sorted
// by key so repeated reads render stably. Lines that are not JSON report
// ok=false and are shown raw by the overlay; the parser never guesses.
//
// Styling is deliberately not this package's job. The ui package owns the
// terminal and applies its theme to the parsed parts; logtail only says
// what the parts are.
//
// # Performance Considerations
//
// Read function:
//   - Buffer size: 64KB initial, 1MB max (configurable in scanner)
//   - Memory usage: O(maxLines × average line length)
//   - Typical usage: 400 lines × ~200 chars = ~80KB memory
//   - Time complexity: O(n) where n = total lines in file
//
// # Error Handling
//
// Read returns nil, nil for non-existent files (graceful degradation: an
// empty tail is what a fresh install looks like). Other errors (permission
// denied, I/O errors) are returned wrapped.
//
// ParseLine never returns an error - malformed lines are reported as
// unparsed rather than failing.
//
// # Design Rationale
//
// This package is intentionally simple and focused:
//   - No streaming or file watching (the overlay refreshes on a timer)
//   - No log rotation handling (reads current file only)
//   - No filtering or searching (that's the UI's job)
//   - Pure functions with no global state
package logtail
