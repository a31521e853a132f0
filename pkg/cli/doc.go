// Package cli provides shared plumbing for the prose command: output
// formatting (text and JSON), diagnostic reports, exit codes, and signal
// handling for watch mode.
package cli
