// Package normalize holds the canonical string normalizations used before
// values are written to or matched against the database. Store packages call
// these so the same value always lands in the same form regardless of which
// handler wrote it.
package normalize

import "strings"

// Email lower-cases and trims an email address. Invitation and sent lists
// are keyed by this form, so the set difference in the invitation gate is
// independent of how an address was typed.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Visibility lower-cases and trims a course visibility value.
func Visibility(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Metric lower-cases and trims an insight metric name. Metric names become
// document field paths, so a stray capital would split a counter in two.
func Metric(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-form query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
