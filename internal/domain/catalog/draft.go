package catalog

import "time"

// ItemStatus is the publication state of a catalog item
type ItemStatus string

const (
	// StatusDraft is an unpublished item
	StatusDraft ItemStatus = "draft"
	// StatusPublished is a live item
	StatusPublished ItemStatus = "published"
	// StatusArchived is a retired item
	StatusArchived ItemStatus = "archived"
)

// ValidStatus reports whether s is one of the known publication states.
func ValidStatus(s ItemStatus) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// NewItemSentinel is the draft-key segment used while the entity has no
// backend id yet.
const NewItemSentinel = "new"

// DraftKey returns the store key for an entity-in-progress. An empty id means
// a not-yet-created entity.
func DraftKey(id string) string {
	if id == "" {
		id = NewItemSentinel
	}
	return "catalog:draft:" + id
}

// Draft is the full in-progress representation of a catalog item being
// authored. One Draft per entity-in-progress, owned by the editing session.
// CoverFile holds the pending cover payload and is never persisted.
type Draft struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	PriceCents  int        `json:"price_cents"`
	AccentColor string     `json:"accent_color"`
	Featured    bool       `json:"featured"`
	Status      ItemStatus `json:"status"`

	Cover     MediaRef    `json:"cover"`
	CoverFile *StagedFile `json:"-"`

	Gallery     []*StagedMediaItem     `json:"gallery"`
	Attachments []AttachmentDescriptor `json:"attachments"`

	TagIDs         []string `json:"tag_ids"`
	RelatedItemIDs []string `json:"related_item_ids"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft returns an empty draft with documented defaults.
func NewDraft() *Draft {
	return &Draft{
		Status:         StatusDraft,
		Gallery:        []*StagedMediaItem{},
		Attachments:    []AttachmentDescriptor{},
		TagIDs:         []string{},
		RelatedItemIDs: []string{},
	}
}

// Clone returns a deep copy of the draft. Pending file pointers are shared.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Gallery = CloneItems(d.Gallery)
	clone.Attachments = append([]AttachmentDescriptor(nil), d.Attachments...)
	clone.TagIDs = append([]string(nil), d.TagIDs...)
	clone.RelatedItemIDs = append([]string(nil), d.RelatedItemIDs...)
	return &clone
}

// Touch updates the last-modified timestamp.
func (d *Draft) Touch(now time.Time) {
	d.UpdatedAt = now
}
