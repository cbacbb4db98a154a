// Package runlog records automation outcomes in a line-rotated journal and per-failure report files.
package runlog
