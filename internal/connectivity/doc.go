// Package connectivity probes network reachability before push attempts.
package connectivity
