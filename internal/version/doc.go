// Package version persists and advances the semantic version attached to automated commits.
package version
