// Package storage holds naming rules shared by the blob store backends.
package storage

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dtroode/signdesk-server/internal/model"
)

const (
	fallbackName = "file"

	// maxNameBytes bounds the base name so the full storage name stays
	// under the 255 byte file name limit of common filesystems.
	maxNameBytes = 128
	maxExtBytes  = 16
)

// NewName returns a storage name of the form <unix-millis>-<random>-<safe base name>.
// The random component keeps names unique for uploads landing in the same millisecond.
func NewName(now time.Time, originalName string) string {
	return fmt.Sprintf("%d-%d-%s", now.UnixMilli(), rand.Intn(1e9), SafeFilename(originalName))
}

// SafeFilename reduces a client supplied name to a single path element of at
// most maxNameBytes bytes. Long names keep their extension.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return fallbackName
	}
	return truncateName(name)
}

func truncateName(name string) string {
	if len(name) <= maxNameBytes {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > maxExtBytes || !utf8.ValidString(ext) {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]

	n := maxNameBytes - len(ext)
	for n > 0 && !utf8.RuneStart(stem[n]) {
		n--
	}
	return stem[:n] + ext
}

// Locator returns the public locator of a stored blob.
func Locator(name string) string {
	return model.LocatorPrefix + name
}

// ValidName reports whether name can address a stored blob.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// Error wraps err as a blob store failure.
func Error(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrStorage, op, err)
}
