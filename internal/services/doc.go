// Package services holds cross-cutting service plumbing: sentinel error
// markers used for outcome classification at the API boundary, the Wrap
// helper that tags errors with stage/operation context, and context
// annotations for request correlation.
package services
