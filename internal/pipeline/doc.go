// Package pipeline orchestrates one CSV-to-report conversion run.
//
// A run moves through the states Idle, Reading, Filtering, Sorting,
// Building, TrackerUpdate, and Done, or Failed from any of them. The
// pipeline reads every row of the source export, drops readings
// outside the requested window (resolving the start from the export
// tracker for incremental runs), stable-sorts by timestamp, and hands
// the result to the report builder with the resolved template.
//
// Fatal failures (missing source, unwritable output) abort the run
// with a structured error. Per-row parse problems, missing templates,
// and tracker write failures are recoverable: they accumulate as
// warnings on an otherwise successful result. An empty filtered set is
// the distinguished NoData outcome, not an error, and produces no
// output file.
package pipeline
