// Package watch runs the push sequence on a schedule, gated by connectivity checks.
package watch
