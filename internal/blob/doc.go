// Package blob defines the object storage boundary and an S3-compatible
// implementation. The core only needs opaque put plus presigned download
// URL issuance; everything else about the provider stays behind this
// interface.
package blob
