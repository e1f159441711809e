// Package preflight verifies external tools, directory access, and store
// reachability before the daemon starts serving.
package preflight
