// Package changeset interprets porcelain status output and renders commit messages from it.
package changeset
