// Package api exposes the sharing service over HTTP with a small JSON
// envelope, request correlation, and Prometheus instrumentation.
package api
