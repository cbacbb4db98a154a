// Package autopush orchestrates the stage, commit, and push sequence for a single repository.
package autopush
