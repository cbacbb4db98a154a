// Package gitrepo wraps the git command line with typed repository operations.
package gitrepo
