package testutil

import (
	"io"

	"github.com/dtroode/signdesk-server/internal/logger"
)

// MakeNoopLogger returns Logger that discards everything.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}
