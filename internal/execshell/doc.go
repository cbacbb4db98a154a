// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines abstractions used throughout autopush
// to run git and connectivity probes in a testable manner.
package execshell
