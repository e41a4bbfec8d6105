package catalog

import (
	"time"

	apperrors "github.com/stagecraft/draftpipe/internal/errors"
)

// MediaPayload is the flattened wire shape of a gallery entry, consumed by
// the entity API collaborator.
type MediaPayload struct {
	Kind         MediaKind `json:"kind"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Caption      string    `json:"caption"`
	Duration     string    `json:"duration"`
	SortOrder    int       `json:"sort_order"`
}

// ItemPayload mirrors the Draft minus transient fields; every media reference
// is remote-shaped or empty by the time a payload is built.
type ItemPayload struct {
	Title          string                 `json:"title"`
	Slug           string                 `json:"slug"`
	Summary        string                 `json:"summary"`
	Description    string                 `json:"description"`
	PriceCents     int                    `json:"price_cents"`
	AccentColor    string                 `json:"accent_color"`
	Featured       bool                   `json:"featured"`
	Status         ItemStatus             `json:"status"`
	CoverURL       string                 `json:"cover_url"`
	Media          []MediaPayload         `json:"media"`
	Attachments    []AttachmentDescriptor `json:"attachments"`
	TagIDs         []string               `json:"tag_ids"`
	RelatedItemIDs []string               `json:"related_item_ids"`
}

// Item is a catalog entity as returned by the entity API collaborator.
type Item struct {
	ID string `json:"id"`
	ItemPayload
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BuildPayload flattens a fully-resolved draft into the submission shape.
// Any surviving local handle means resolution was skipped or incomplete.
func BuildPayload(d *Draft) (*ItemPayload, error) {
	if d == nil {
		return nil, apperrors.InvalidArgument("draft cannot be nil")
	}
	if d.Cover.IsLocal() {
		return nil, apperrors.StagingContract("cover image was not resolved before payload construction")
	}

	media := make([]MediaPayload, 0, len(d.Gallery))
	for idx, item := range d.Gallery {
		if item.URL.IsLocal() || item.ThumbnailURL.IsLocal() {
			return nil, apperrors.StagingContractf("media item %q was not resolved before payload construction", item.Label())
		}
		media = append(media, MediaPayload{
			Kind:         item.Kind,
			URL:          item.URL.URL(),
			ThumbnailURL: item.ThumbnailURL.URL(),
			Caption:      item.Caption,
			Duration:     item.Duration,
			SortOrder:    idx + 1,
		})
	}

	return &ItemPayload{
		Title:          d.Title,
		Slug:           d.Slug,
		Summary:        d.Summary,
		Description:    d.Description,
		PriceCents:     d.PriceCents,
		AccentColor:    d.AccentColor,
		Featured:       d.Featured,
		Status:         d.Status,
		CoverURL:       d.Cover.URL(),
		Media:          media,
		Attachments:    append([]AttachmentDescriptor(nil), d.Attachments...),
		TagIDs:         append([]string(nil), d.TagIDs...),
		RelatedItemIDs: append([]string(nil), d.RelatedItemIDs...),
	}, nil
}

// DraftFromItem maps a remote entity back into an editable draft, assigning
// fresh client ids to gallery entries via newID.
func DraftFromItem(item *Item, newID func() string) *Draft {
	d := NewDraft()
	if item == nil {
		return d
	}

	d.Title = item.Title
	d.Slug = item.Slug
	d.Summary = item.Summary
	d.Description = item.Description
	d.PriceCents = item.PriceCents
	d.AccentColor = item.AccentColor
	d.Featured = item.Featured
	if ValidStatus(item.Status) {
		d.Status = item.Status
	}
	d.Cover = ClassifyRef(item.CoverURL)

	for idx, m := range item.Media {
		kind := m.Kind
		if kind != KindVideo {
			kind = KindImage
		}
		d.Gallery = append(d.Gallery, &StagedMediaItem{
			ID:           newID(),
			Kind:         kind,
			URL:          ClassifyRef(m.URL),
			ThumbnailURL: ClassifyRef(m.ThumbnailURL),
			Caption:      m.Caption,
			Duration:     m.Duration,
			SortOrder:    idx + 1,
		})
	}
	d.Attachments = append(d.Attachments, item.Attachments...)
	d.TagIDs = append(d.TagIDs, item.TagIDs...)
	d.RelatedItemIDs = append(d.RelatedItemIDs, item.RelatedItemIDs...)
	d.UpdatedAt = item.UpdatedAt

	return d
}
