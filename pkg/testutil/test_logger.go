package testutil

import (
	"testing"

	"github.com/rs/zerolog"
)

// NewTestLogger creates a zerolog.Logger that forwards every event to t.Log at
// debug level.
func NewTestLogger(t *testing.T) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}
