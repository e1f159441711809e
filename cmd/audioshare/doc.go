// Package main hosts the audioshare CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces operator tasks: inspecting recently
// shared audio and scaffolding configuration. Heavy lifting stays in the
// internal packages; commands resolve configuration and format output.
package main
