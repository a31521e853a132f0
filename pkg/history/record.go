package history

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded check of a source file.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// File is the path that was checked, as given on the command line.
	File string `json:"file"`

	// SourceHash is the hex SHA-256 of the source text that was checked,
	// so identical re-checks can be told apart from real changes.
	SourceHash string `json:"source_hash"`

	// CheckedAt is when the check started.
	CheckedAt time.Time `json:"checked_at"`

	// Valid reports whether the file checked clean of errors.
	Valid bool `json:"valid"`

	// ErrorCount and WarningCount summarize the diagnostics.
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`

	// Duration is how long the full check took.
	Duration time.Duration `json:"duration"`
}

// NewRun creates a run record with a fresh ID and the current time.
func NewRun(file string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		File:      file,
		CheckedAt: time.Now().UTC(),
	}
}

// HashSource returns the hex SHA-256 of a source text, the form stored in
// Run.SourceHash.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
