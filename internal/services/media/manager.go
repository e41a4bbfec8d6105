// Package media holds the staging manager for the ordered gallery and the
// orchestrator that resolves staged files into remote references.
package media

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/preview"
	"github.com/stagecraft/draftpipe/internal/uuid"
)

// Slot names the two file positions on a gallery item.
type Slot string

const (
	// SlotPrimary is the item's main media file
	SlotPrimary Slot = "primary"
	// SlotThumbnail is the item's preview thumbnail
	SlotThumbnail Slot = "thumbnail"
)

// Manager owns the in-memory ordered gallery of an editing session. It is the
// sole owner of every preview handle it allocates: handles are released when
// superseded, when their item is removed, and on ReleaseAll.
type Manager struct {
	mu    sync.Mutex
	items []*catalog.StagedMediaItem

	ids      uuid.Generator
	previews preview.Allocator
	accepted []string
	maxBytes int64
	log      zerolog.Logger
}

// ManagerConfig holds configuration for the staging manager
type ManagerConfig struct {
	Previews           preview.Allocator // Required
	IDGenerator        uuid.Generator    // Optional, defaults to google uuid
	AcceptedImageTypes []string          // Optional, defaults to common web image types
	MaxFileBytes       int64             // Optional, 0 means unlimited
	Logger             *zerolog.Logger   // Optional
}

// NewManager creates a new staging manager
func NewManager(cfg *ManagerConfig) *Manager {
	if cfg == nil || cfg.Previews == nil {
		panic("preview allocator is required")
	}

	ids := cfg.IDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	accepted := cfg.AcceptedImageTypes
	if len(accepted) == 0 {
		accepted = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Manager{
		items:    []*catalog.StagedMediaItem{},
		ids:      ids,
		previews: cfg.Previews,
		accepted: accepted,
		maxBytes: cfg.MaxFileBytes,
		log:      log,
	}
}

// AddItem appends a blank item of the given kind and returns a copy of it.
func (m *Manager) AddItem(kind catalog.MediaKind) *catalog.StagedMediaItem {
	if kind != catalog.KindVideo {
		kind = catalog.KindImage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item := &catalog.StagedMediaItem{
		ID:        m.ids.New(),
		Kind:      kind,
		SortOrder: len(m.items) + 1,
	}
	if kind == catalog.KindVideo {
		item.Duration = catalog.DefaultVideoDuration
	}
	m.items = append(m.items, item)

	return item.Clone()
}

// RemoveItem releases the item's preview handles, drops it, and renumbers the
// remaining items densely from 1.
func (m *Manager) RemoveItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return apperrors.NotFoundf("media item %q not found", id)
	}

	m.releaseItemHandles(m.items[idx])
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	catalog.RenumberItems(m.items)

	return nil
}

// ItemUpdate carries the fields an UpdateItem call may merge. Nil fields are
// left untouched. URL and ThumbnailURL are raw strings and get reclassified.
type ItemUpdate struct {
	Kind         *catalog.MediaKind
	Caption      *string
	Duration     *string
	URL          *string
	ThumbnailURL *string
}

// UpdateItem merges the update into the item with the given id. Switching
// kind from video to image clears the duration; image to video initializes it
// to the normalized default.
func (m *Manager) UpdateItem(id string, update ItemUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return apperrors.NotFoundf("media item %q not found", id)
	}
	item := m.items[idx]

	if update.Kind != nil && *update.Kind != item.Kind {
		switch *update.Kind {
		case catalog.KindImage:
			item.Kind = catalog.KindImage
			item.Duration = ""
		case catalog.KindVideo:
			item.Kind = catalog.KindVideo
			item.Duration = catalog.DefaultVideoDuration
		default:
			return apperrors.InvalidArgumentf("unknown media kind %q", *update.Kind)
		}
	}
	if update.Caption != nil {
		item.Caption = *update.Caption
	}
	if update.Duration != nil {
		item.Duration = *update.Duration
	}
	if update.URL != nil {
		item.URL = catalog.ClassifyRef(*update.URL)
	}
	if update.ThumbnailURL != nil {
		item.ThumbnailURL = catalog.ClassifyRef(*update.ThumbnailURL)
	}

	return nil
}

// Reorder moves the fromID item to the current position of the toID item and
// renumbers densely.
func (m *Manager) Reorder(fromID, toID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.indexOf(fromID)
	if from < 0 {
		return apperrors.NotFoundf("media item %q not found", fromID)
	}
	to := m.indexOf(toID)
	if to < 0 {
		return apperrors.NotFoundf("media item %q not found", toID)
	}
	if from == to {
		return nil
	}

	item := m.items[from]
	m.items = append(m.items[:from], m.items[from+1:]...)
	m.items = slices.Insert(m.items, to, item)
	catalog.RenumberItems(m.items)

	return nil
}

// StageLocalFile validates and stages a picked file into the given slot,
// allocating a preview handle and releasing whatever handle held the slot
// before. For the primary slot of an image with no thumbnail yet, the new
// handle is mirrored into the thumbnail as a convenience default.
func (m *Manager) StageLocalFile(id string, file *catalog.StagedFile, slot Slot) error {
	if file == nil {
		return apperrors.InvalidArgument("file cannot be nil")
	}
	if err := m.checkFile(file); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return apperrors.NotFoundf("media item %q not found", id)
	}
	item := m.items[idx]

	if item.Kind == catalog.KindVideo && slot == SlotPrimary {
		return apperrors.StagingContractf(
			"item %q is a video: its primary url is an external link, stage the file into the thumbnail slot instead",
			item.Label())
	}

	handle, err := m.previews.Allocate(file)
	if err != nil {
		return apperrors.Wrap(err, "failed to allocate preview handle")
	}

	switch slot {
	case SlotPrimary:
		m.replacePrimary(item, handle, file)
	case SlotThumbnail:
		m.replaceThumbnail(item, handle, file)
	default:
		m.previews.Release(handle)
		return apperrors.InvalidArgumentf("unknown slot %q", slot)
	}

	return nil
}

func (m *Manager) replacePrimary(item *catalog.StagedMediaItem, handle string, file *catalog.StagedFile) {
	old := item.URL.Handle()
	mirrored := old != "" && item.ThumbnailURL.Handle() == old

	item.URL = catalog.LocalRef(handle)
	item.PendingFile = file

	if mirrored {
		// thumbnail was just an alias of the old primary handle; keep it in sync
		item.ThumbnailURL = catalog.LocalRef(handle)
	} else if item.ThumbnailURL.IsEmpty() && item.PendingThumbFile == nil {
		item.ThumbnailURL = catalog.LocalRef(handle)
	}

	if old != "" {
		m.previews.Release(old)
	}
}

func (m *Manager) replaceThumbnail(item *catalog.StagedMediaItem, handle string, file *catalog.StagedFile) {
	old := item.ThumbnailURL.Handle()

	item.ThumbnailURL = catalog.LocalRef(handle)
	item.PendingThumbFile = file

	// a mirrored thumbnail aliases the primary handle, which the primary
	// slot still owns
	if old != "" && old != item.URL.Handle() {
		m.previews.Release(old)
	}
}

// Items returns an ordered snapshot of the gallery.
func (m *Manager) Items() []*catalog.StagedMediaItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	return catalog.CloneItems(m.items)
}

// SetItems replaces the gallery wholesale, releasing every handle owned by
// the previous items. Used when hydrating from a stored draft or a remote
// entity.
func (m *Manager) SetItems(items []*catalog.StagedMediaItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		m.releaseItemHandles(item)
	}
	m.items = catalog.CloneItems(items)
	if m.items == nil {
		m.items = []*catalog.StagedMediaItem{}
	}
	catalog.RenumberItems(m.items)
}

// ItemHasContent reports whether the item carries its required artifact.
func (m *Manager) ItemHasContent(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return false, apperrors.NotFoundf("media item %q not found", id)
	}
	return m.items[idx].HasContent(), nil
}

// ReleaseAll frees every outstanding preview handle. Call on unmount.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		m.releaseItemHandles(item)
		if item.URL.IsLocal() {
			item.URL = catalog.EmptyRef()
		}
		if item.ThumbnailURL.IsLocal() {
			item.ThumbnailURL = catalog.EmptyRef()
		}
		item.PendingFile = nil
		item.PendingThumbFile = nil
	}
}

func (m *Manager) indexOf(id string) int {
	for idx, item := range m.items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

// releaseItemHandles frees each distinct handle owned by the item exactly
// once; a mirrored thumbnail shares the primary's handle.
func (m *Manager) releaseItemHandles(item *catalog.StagedMediaItem) {
	primary := item.URL.Handle()
	if primary != "" {
		m.previews.Release(primary)
	}
	if thumb := item.ThumbnailURL.Handle(); thumb != "" && thumb != primary {
		m.previews.Release(thumb)
	}
}

func (m *Manager) checkFile(file *catalog.StagedFile) error {
	return ValidateImageFile(file, m.accepted, m.maxBytes)
}

// ValidateImageFile checks a picked file against the accepted content types
// and size limit. Nil accepted falls back to the common web image types; a
// zero maxBytes means unlimited.
func ValidateImageFile(file *catalog.StagedFile, accepted []string, maxBytes int64) error {
	if file == nil {
		return apperrors.InvalidArgument("file cannot be nil")
	}
	if len(accepted) == 0 {
		accepted = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if !slices.Contains(accepted, file.ContentType) {
		return apperrors.InvalidArgumentf("unsupported file type %q, accepted: %v", file.ContentType, accepted)
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return apperrors.InvalidArgumentf("file %q exceeds the %d byte limit", file.Name, maxBytes)
	}
	return nil
}
