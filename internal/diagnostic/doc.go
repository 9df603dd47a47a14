// Package diagnostic provides structured warnings, errors, and error kinds
// shared by every stage of a curation run.
//
// Key capabilities:
//   - Unmapped column warnings with ranked suggestions
//   - Per-task missing item reports
//   - Range tolerance and merge fallback notices
//   - Sentinel error kinds for caller-correctable input, library integrity,
//     value validation and missing merge strategies
package diagnostic
