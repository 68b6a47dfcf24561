// Package daemon hosts the long-running recap process: it owns the
// single-instance lock, starts the workflow manager and drop watcher, and
// serves the local read-only HTTP API.
package daemon
