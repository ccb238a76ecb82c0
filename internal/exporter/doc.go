// Package exporter builds the color-coded XLSX report from parsed
// glucose readings.
//
// The builder writes a single sheet with a fixed eight-column layout:
// timestamp, glucose value, and six free-text annotation columns. The
// value column's background encodes the reading's severity band; a
// statistics block with the date range, aggregates, and band
// distribution follows the data.
//
// Formatting comes from either the built-in default style (bold gray
// header, thin borders, auto-sized columns) or a saved template's
// header styling and column widths. Template formatting takes
// precedence: no default borders or fills are added on top of it.
package exporter
