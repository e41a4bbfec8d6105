package draftstore

import (
	"encoding/json"
	"time"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
)

// encodeDraft serializes a sanitized copy of the draft. Sanitization happens
// here, on the write path, so no caller can accidentally persist a raw file
// payload or a session-scoped preview handle.
func encodeDraft(d *catalog.Draft) ([]byte, error) {
	return json.Marshal(sanitizeDraft(d))
}

// sanitizeDraft strips transient file payloads and downgrades ephemeral local
// refs to empty placeholders. Handles are worthless outside the session that
// allocated them, so a persisted snapshot only ever holds remote-shaped data.
func sanitizeDraft(d *catalog.Draft) *catalog.Draft {
	clone := d.Clone()

	clone.CoverFile = nil
	if clone.Cover.IsLocal() {
		clone.Cover = catalog.EmptyRef()
	}

	for _, item := range clone.Gallery {
		item.PendingFile = nil
		item.PendingThumbFile = nil
		if item.URL.IsLocal() {
			item.URL = catalog.EmptyRef()
		}
		if item.ThumbnailURL.IsLocal() {
			item.ThumbnailURL = catalog.EmptyRef()
		}
	}
	catalog.RenumberItems(clone.Gallery)

	return clone
}

// decodeDraft rebuilds a draft from stored bytes, coercing field-by-field:
// a wrong-typed or missing field falls back to its documented default rather
// than failing the whole load. Only completely unparseable bytes error.
func decodeDraft(data []byte, newID func() string) (*catalog.Draft, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	d := catalog.NewDraft()
	d.Title = rawString(raw["title"])
	d.Slug = rawString(raw["slug"])
	d.Summary = rawString(raw["summary"])
	d.Description = rawString(raw["description"])
	d.PriceCents = rawInt(raw["price_cents"])
	d.AccentColor = rawString(raw["accent_color"])
	d.Featured = rawBool(raw["featured"])

	if status := catalog.ItemStatus(rawString(raw["status"])); catalog.ValidStatus(status) {
		d.Status = status
	}

	d.Cover = loadedRef(rawString(raw["cover"]))
	d.Gallery = decodeGallery(raw["gallery"], newID)
	d.Attachments = decodeAttachments(raw["attachments"])
	d.TagIDs = rawStringSlice(raw["tag_ids"])
	d.RelatedItemIDs = rawStringSlice(raw["related_item_ids"])
	d.UpdatedAt = rawTime(raw["updated_at"])

	catalog.RenumberItems(d.Gallery)
	return d, nil
}

func decodeGallery(data json.RawMessage, newID func() string) []*catalog.StagedMediaItem {
	var entries []json.RawMessage
	if data == nil || json.Unmarshal(data, &entries) != nil {
		return []*catalog.StagedMediaItem{}
	}

	items := make([]*catalog.StagedMediaItem, 0, len(entries))
	for _, entry := range entries {
		var raw map[string]json.RawMessage
		if json.Unmarshal(entry, &raw) != nil {
			// not an object; drop the entry, keep the rest
			continue
		}
		items = append(items, decodeItem(raw, newID))
	}
	return items
}

func decodeItem(raw map[string]json.RawMessage, newID func() string) *catalog.StagedMediaItem {
	item := &catalog.StagedMediaItem{
		ID:           rawString(raw["id"]),
		Kind:         catalog.KindImage,
		URL:          loadedRef(rawString(raw["url"])),
		ThumbnailURL: loadedRef(rawString(raw["thumbnail_url"])),
		Caption:      rawString(raw["caption"]),
		Duration:     rawString(raw["duration"]),
		SortOrder:    rawInt(raw["sort_order"]),
	}

	if item.ID == "" {
		item.ID = newID()
	}
	if catalog.MediaKind(rawString(raw["kind"])) == catalog.KindVideo {
		item.Kind = catalog.KindVideo
		if item.Duration == "" {
			item.Duration = catalog.DefaultVideoDuration
		}
	} else {
		item.Duration = ""
	}

	return item
}

func decodeAttachments(data json.RawMessage) []catalog.AttachmentDescriptor {
	var attachments []catalog.AttachmentDescriptor
	if data == nil || json.Unmarshal(data, &attachments) != nil {
		return []catalog.AttachmentDescriptor{}
	}
	if attachments == nil {
		attachments = []catalog.AttachmentDescriptor{}
	}
	return attachments
}

// loadedRef classifies a stored string, downgrading any stray local handle to
// empty: handles never survive the session that allocated them.
func loadedRef(s string) catalog.MediaRef {
	ref := catalog.ClassifyRef(s)
	if ref.IsLocal() {
		return catalog.EmptyRef()
	}
	return ref
}

func rawString(data json.RawMessage) string {
	if data == nil {
		return ""
	}
	var s string
	if json.Unmarshal(data, &s) != nil {
		return ""
	}
	return s
}

func rawInt(data json.RawMessage) int {
	if data == nil {
		return 0
	}
	var n int
	if json.Unmarshal(data, &n) == nil {
		return n
	}
	var f float64
	if json.Unmarshal(data, &f) == nil {
		return int(f)
	}
	return 0
}

func rawBool(data json.RawMessage) bool {
	if data == nil {
		return false
	}
	var b bool
	if json.Unmarshal(data, &b) != nil {
		return false
	}
	return b
}

func rawStringSlice(data json.RawMessage) []string {
	if data == nil {
		return []string{}
	}
	var loose []any
	if json.Unmarshal(data, &loose) != nil {
		return []string{}
	}
	out := make([]string, 0, len(loose))
	for _, v := range loose {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rawTime(data json.RawMessage) time.Time {
	if data == nil {
		return time.Time{}
	}
	var t time.Time
	if json.Unmarshal(data, &t) != nil {
		return time.Time{}
	}
	return t
}
