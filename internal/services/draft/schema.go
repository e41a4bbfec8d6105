package draft

import (
	"regexp"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	"github.com/stagecraft/draftpipe/internal/validation"
)

// Field names shared by the schema, SetField, and the UI's error rendering.
const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldSummary     = "summary"
	FieldDescription = "description"
	FieldPriceCents  = "price_cents"
	FieldAccentColor = "accent_color"
	FieldFeatured    = "featured"
	FieldStatus      = "status"
	FieldTags        = "tag_ids"
	FieldRelated     = "related_item_ids"
	FieldGallery     = "gallery"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CatalogSchema is the live-validation schema for catalog item drafts.
func CatalogSchema() validation.Schema {
	return validation.Schema{
		{Name: FieldTitle, Rules: []validation.Rule{
			validation.Required("title is required"),
			validation.MinLength(2, "title must be at least 2 characters"),
		}},
		{Name: FieldSlug, Rules: []validation.Rule{
			validation.Required("slug is required"),
			validation.Pattern(slugPattern, "slug must be lowercase words separated by dashes"),
		}},
		{Name: FieldPriceCents, Rules: []validation.Rule{
			validation.IntMin(0, "price cannot be negative"),
		}},
		{Name: FieldAccentColor, Rules: []validation.Rule{
			validation.HexColor("accent color must be a hex color like #1a2b3c"),
		}},
		{Name: FieldStatus, Rules: []validation.Rule{
			validation.Custom(func(value any, _ validation.Subject) bool {
				s, ok := value.(catalog.ItemStatus)
				return ok && catalog.ValidStatus(s)
			}, "unknown status"),
		}},
	}
}

// subjectOf projects a draft onto the flat field map the schema validates.
func subjectOf(d *catalog.Draft) validation.Subject {
	return validation.Subject{
		FieldTitle:       d.Title,
		FieldSlug:        d.Slug,
		FieldSummary:     d.Summary,
		FieldDescription: d.Description,
		FieldPriceCents:  d.PriceCents,
		FieldAccentColor: d.AccentColor,
		FieldFeatured:    d.Featured,
		FieldStatus:      d.Status,
		FieldTags:        d.TagIDs,
		FieldRelated:     d.RelatedItemIDs,
	}
}
