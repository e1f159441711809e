// Package share is the ingestion orchestrator: it deduplicates uploads by
// content fingerprint, allocates short public identifiers, drives the
// transcoding pipeline, and persists share records with bounded retries on
// identifier races.
package share
