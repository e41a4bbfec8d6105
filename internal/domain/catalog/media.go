package catalog

import "fmt"

// MediaKind distinguishes gallery entry types
type MediaKind string

const (
	// KindImage is a gallery image
	KindImage MediaKind = "image"
	// KindVideo is a gallery video referenced by an external link
	KindVideo MediaKind = "video"
)

// DefaultVideoDuration is the normalized duration assigned when an item
// becomes a video; images carry an empty duration.
const DefaultVideoDuration = "00:00"

// StagedMediaItem is one ordered gallery entry. The ID is client-assigned and
// stable across reorders; it has no relation to any backend id. PendingFile
// and PendingThumbFile hold not-yet-uploaded payloads and are never persisted.
type StagedMediaItem struct {
	ID           string    `json:"id"`
	Kind         MediaKind `json:"kind"`
	URL          MediaRef  `json:"url"`
	ThumbnailURL MediaRef  `json:"thumbnail_url"`
	Caption      string    `json:"caption"`
	Duration     string    `json:"duration"`
	SortOrder    int       `json:"sort_order"`

	PendingFile      *StagedFile `json:"-"`
	PendingThumbFile *StagedFile `json:"-"`
}

// Label returns the user-facing name for this item, used in error attribution.
func (i *StagedMediaItem) Label() string {
	if i.Caption != "" {
		return i.Caption
	}
	return fmt.Sprintf("%s #%d", i.Kind, i.SortOrder)
}

// HasContent reports whether the item carries its required artifact: for an
// image that is the primary slot (url or pending file), for a video it is the
// thumbnail (the video url is just an external link and may be filled later).
func (i *StagedMediaItem) HasContent() bool {
	switch i.Kind {
	case KindVideo:
		return !i.ThumbnailURL.IsEmpty() || i.PendingThumbFile != nil
	default:
		return !i.URL.IsEmpty() || i.PendingFile != nil
	}
}

// Clone returns a copy of the item. The pending file pointers are shared, not
// copied; callers that need isolation clear them explicitly.
func (i *StagedMediaItem) Clone() *StagedMediaItem {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

// CloneItems deep-copies a gallery slice.
func CloneItems(items []*StagedMediaItem) []*StagedMediaItem {
	if items == nil {
		return nil
	}
	out := make([]*StagedMediaItem, len(items))
	for idx, item := range items {
		out[idx] = item.Clone()
	}
	return out
}

// RenumberItems assigns dense 1-based sort order following slice position.
func RenumberItems(items []*StagedMediaItem) {
	for idx, item := range items {
		item.SortOrder = idx + 1
	}
}
