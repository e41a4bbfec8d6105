package preview

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/uuid"
)

// InMemoryAllocator is the in-process implementation of Allocator, the
// object-URL analogue: a mutexed handle table from which previews are served.
type InMemoryAllocator struct {
	mu    sync.Mutex
	files map[string]*catalog.StagedFile

	ids uuid.Generator
	log zerolog.Logger
}

// InMemoryAllocatorConfig holds configuration for the allocator
type InMemoryAllocatorConfig struct {
	IDGenerator uuid.Generator  // Optional, defaults to google uuid
	Logger      *zerolog.Logger // Optional
}

// NewInMemoryAllocator creates a new in-memory allocator
func NewInMemoryAllocator(cfg *InMemoryAllocatorConfig) *InMemoryAllocator {
	if cfg == nil {
		cfg = &InMemoryAllocatorConfig{}
	}

	ids := cfg.IDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &InMemoryAllocator{
		files: make(map[string]*catalog.StagedFile),
		ids:   ids,
		log:   log,
	}
}

// Allocate registers the file and returns a fresh staged:// handle.
func (a *InMemoryAllocator) Allocate(file *catalog.StagedFile) (string, error) {
	if file == nil {
		return "", apperrors.InvalidArgument("file cannot be nil")
	}

	handle := catalog.LocalScheme + a.ids.New()

	a.mu.Lock()
	a.files[handle] = file
	a.mu.Unlock()

	a.log.Debug().Str("handle", handle).Str("file", file.Name).Msg("allocated preview handle")
	return handle, nil
}

// Release frees the handle. Double-release or releasing a handle this
// allocator never issued is logged and ignored.
func (a *InMemoryAllocator) Release(handle string) {
	if handle == "" {
		return
	}

	a.mu.Lock()
	_, known := a.files[handle]
	delete(a.files, handle)
	a.mu.Unlock()

	if !known {
		a.log.Warn().Str("handle", handle).Msg("released unknown preview handle")
		return
	}
	a.log.Debug().Str("handle", handle).Msg("released preview handle")
}

// Lookup dereferences a live handle for preview rendering.
func (a *InMemoryAllocator) Lookup(handle string) (*catalog.StagedFile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	file, ok := a.files[handle]
	return file, ok
}

// Live returns the number of outstanding handles.
func (a *InMemoryAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.files)
}
