// Package cli assembles the autopush command hierarchy, configuration, and logging.
package cli
