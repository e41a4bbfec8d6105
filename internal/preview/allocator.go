// Package preview owns ephemeral local handles: process-local references to
// staged files, usable for preview rendering until released. Handles carry
// the reserved staged:// scheme so they can never be mistaken for remote URLs.
package preview

import (
	"strings"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
)

//go:generate mockgen -destination=mocks/mock.go -package=mockpreview -source=allocator.go

// Allocator hands out and reclaims ephemeral local handles. Every allocated
// handle must be released exactly once by the component that allocated it.
type Allocator interface {
	// Allocate registers a staged file and returns a handle for it
	Allocate(file *catalog.StagedFile) (string, error)

	// Release frees a handle. Releasing an unknown handle is a logged no-op.
	Release(handle string)
}

// IsHandle reports whether s is an ephemeral local handle rather than a
// remote URL.
func IsHandle(s string) bool {
	return strings.HasPrefix(s, catalog.LocalScheme)
}
