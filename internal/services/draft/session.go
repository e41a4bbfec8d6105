// Package draft composes validation, local persistence, staging, and upload
// resolution into the editing session surface the UI talks to.
package draft

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stagecraft/draftpipe/internal/clients/catalogapi"
	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/preview"
	"github.com/stagecraft/draftpipe/internal/repositories/draftstore"
	"github.com/stagecraft/draftpipe/internal/services/media"
	"github.com/stagecraft/draftpipe/internal/uuid"
	"github.com/stagecraft/draftpipe/internal/validation"
)

// Session is the draft controller for one entity-in-progress. It owns the
// in-memory draft and the media staging manager, revalidates on every
// mutation, and autosaves a sanitized snapshot whenever the draft is valid.
// An invalid draft never overwrites the last known-good snapshot.
//
// Mutations and submission interleave on the caller's event loop; the session
// serializes access internally but offers no cross-session coordination for
// the same key (last writer wins).
type Session struct {
	mu       sync.Mutex
	draft    *catalog.Draft
	entityID string
	key      string
	errors   *validation.Result

	media    *media.Manager
	previews preview.Allocator
	store    *draftstore.Store
	resolver *media.Resolver
	api      catalogapi.Client
	schema   validation.Schema
	accepted []string
	maxBytes int64
	ids      uuid.Generator
	clock    func() time.Time
	log      zerolog.Logger
}

// SessionConfig holds the collaborators of an editing session
type SessionConfig struct {
	EntityID string // Optional, empty for a brand new entity

	Store    *draftstore.Store  // Required
	Resolver *media.Resolver    // Required
	API      catalogapi.Client  // Required
	Previews preview.Allocator  // Required
	Media    *media.Manager     // Required
	Schema   validation.Schema  // Optional, defaults to CatalogSchema

	AcceptedImageTypes []string // Optional, defaults to common web image types
	MaxFileBytes       int64    // Optional, 0 means unlimited

	IDGen  uuid.Generator   // Optional
	Clock  func() time.Time // Optional, defaults to time.Now
	Logger *zerolog.Logger  // Optional
}

// NewSession creates an editing session. Call Hydrate before first use.
func NewSession(cfg *SessionConfig) *Session {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Store == nil || cfg.Resolver == nil || cfg.API == nil || cfg.Previews == nil || cfg.Media == nil {
		panic("store, resolver, api, previews, and media manager are required")
	}

	schema := cfg.Schema
	if schema == nil {
		schema = CatalogSchema()
	}

	ids := cfg.IDGen
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	s := &Session{
		draft:    catalog.NewDraft(),
		entityID: cfg.EntityID,
		key:      catalog.DraftKey(cfg.EntityID),
		media:    cfg.Media,
		previews: cfg.Previews,
		store:    cfg.Store,
		resolver: cfg.Resolver,
		api:      cfg.API,
		schema:   schema,
		accepted: cfg.AcceptedImageTypes,
		maxBytes: cfg.MaxFileBytes,
		ids:      ids,
		clock:    clock,
		log:      log,
	}
	s.errors = validation.Validate(subjectOf(s.draft), s.schema)
	return s
}

// Key returns the draft store key this session persists under.
func (s *Session) Key() string {
	return s.key
}

// Hydrate fills the session: a stored draft wins, otherwise an existing
// entity is fetched and mapped, otherwise the draft starts empty. A fetch
// failure for an existing entity is returned; the session stays usable.
func (s *Session) Hydrate(ctx context.Context) error {
	if stored := s.store.Load(ctx, s.key); stored != nil {
		s.SetDraft(stored)
		return nil
	}

	if s.entityID == "" {
		return nil
	}

	item, err := s.api.GetByID(ctx, s.entityID)
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeAPIFailure, "failed to fetch entity").
			WithMeta("entity_id", s.entityID)
	}
	s.SetDraft(catalog.DraftFromItem(item, s.ids.New))
	return nil
}

// LoadEntity discards the current draft and rebuilds it from the remote
// entity, ignoring any stored snapshot. Used to start over from what the
// backend has.
func (s *Session) LoadEntity(ctx context.Context, entityID string) error {
	item, err := s.api.GetByID(ctx, entityID)
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeAPIFailure, "failed to fetch entity").
			WithMeta("entity_id", entityID)
	}
	s.SetDraft(catalog.DraftFromItem(item, s.ids.New))
	return nil
}

// SetDraft replaces the whole draft (bulk hydration path). Gallery items move
// into the staging manager; previously staged handles are released.
func (s *Session) SetDraft(d *catalog.Draft) {
	if d == nil {
		d = catalog.NewDraft()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseCoverLocked()
	clone := d.Clone()
	s.media.SetItems(clone.Gallery)
	clone.Gallery = nil
	s.draft = clone
	s.revalidateLocked()
}

// SetField mutates one scalar field by name, revalidates, and autosaves when
// the draft is valid.
func (s *Session) SetField(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFieldLocked(name, value); err != nil {
		return err
	}

	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
	return nil
}

func (s *Session) applyFieldLocked(name string, value any) error {
	switch name {
	case FieldTitle:
		return setString(&s.draft.Title, name, value)
	case FieldSlug:
		return setString(&s.draft.Slug, name, value)
	case FieldSummary:
		return setString(&s.draft.Summary, name, value)
	case FieldDescription:
		return setString(&s.draft.Description, name, value)
	case FieldAccentColor:
		return setString(&s.draft.AccentColor, name, value)
	case FieldPriceCents:
		n, ok := value.(int)
		if !ok {
			return apperrors.InvalidArgumentf("field %q expects an int", name)
		}
		s.draft.PriceCents = n
	case FieldFeatured:
		b, ok := value.(bool)
		if !ok {
			return apperrors.InvalidArgumentf("field %q expects a bool", name)
		}
		s.draft.Featured = b
	case FieldStatus:
		status, ok := value.(catalog.ItemStatus)
		if !ok {
			return apperrors.InvalidArgumentf("field %q expects an item status", name)
		}
		s.draft.Status = status
	case FieldTags:
		ids, ok := value.([]string)
		if !ok {
			return apperrors.InvalidArgumentf("field %q expects a string slice", name)
		}
		s.draft.TagIDs = append([]string(nil), ids...)
	case FieldRelated:
		ids, ok := value.([]string)
		if !ok {
			return apperrors.InvalidArgumentf("field %q expects a string slice", name)
		}
		s.draft.RelatedItemIDs = append([]string(nil), ids...)
	default:
		return apperrors.InvalidArgumentf("unknown field %q", name)
	}
	return nil
}

func setString(dst *string, name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return apperrors.InvalidArgumentf("field %q expects a string", name)
	}
	*dst = s
	return nil
}

// Media exposes the staging manager for gallery mutations. Gallery changes
// do not autosave by themselves; the next field mutation or explicit
// Checkpoint picks them up.
func (s *Session) Media() *media.Manager {
	return s.media
}

// Checkpoint revalidates and autosaves if valid. Call after gallery or
// attachment mutations done outside SetField.
func (s *Session) Checkpoint(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
}

// StageCoverFile stages a picked file into the cover slot, replacing and
// releasing any previous cover handle. The cover slot owns its handle the
// same way the staging manager owns gallery handles.
func (s *Session) StageCoverFile(ctx context.Context, file *catalog.StagedFile) error {
	if err := media.ValidateImageFile(file, s.accepted, s.maxBytes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	handle, err := s.previews.Allocate(file)
	if err != nil {
		return apperrors.Wrap(err, "failed to allocate cover preview handle")
	}

	s.releaseCoverLocked()
	s.draft.Cover = catalog.LocalRef(handle)
	s.draft.CoverFile = file
	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
	return nil
}

// ClearCover empties the cover slot, releasing any staged handle.
func (s *Session) ClearCover(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseCoverLocked()
	s.draft.Cover = catalog.EmptyRef()
	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
}

// AddAttachment appends an attachment record.
func (s *Session) AddAttachment(ctx context.Context, att catalog.AttachmentDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Attachments = append(s.draft.Attachments, att)
	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
}

// UpdateAttachment replaces the attachment at index.
func (s *Session) UpdateAttachment(ctx context.Context, index int, att catalog.AttachmentDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.draft.Attachments) {
		return apperrors.InvalidArgumentf("attachment index %d out of range", index)
	}
	s.draft.Attachments[index] = att
	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
	return nil
}

// RemoveAttachment drops the attachment at index.
func (s *Session) RemoveAttachment(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.draft.Attachments) {
		return apperrors.InvalidArgumentf("attachment index %d out of range", index)
	}
	s.draft.Attachments = append(s.draft.Attachments[:index], s.draft.Attachments[index+1:]...)
	s.draft.Touch(s.clock())
	s.revalidateLocked()
	s.autosaveLocked(ctx)
	return nil
}

// Draft returns a snapshot of the current draft including the gallery.
func (s *Session) Draft() *catalog.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// FieldErrors returns the current live validation errors.
func (s *Session) FieldErrors() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.errors.Errors
}

// Valid reports whether the draft currently validates cleanly.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.errors.Valid()
}

// Close releases every preview handle owned by the session (unmount path).
// The stored snapshot, if any, stays for a later resume.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseCoverLocked()
	s.draft.CoverFile = nil
	if s.draft.Cover.IsLocal() {
		s.draft.Cover = catalog.EmptyRef()
	}
	s.media.ReleaseAll()
}

func (s *Session) snapshotLocked() *catalog.Draft {
	snap := s.draft.Clone()
	snap.Gallery = s.media.Items()
	return snap
}

func (s *Session) revalidateLocked() {
	s.errors = validation.Validate(subjectOf(s.draft), s.schema)
}

// autosaveLocked persists only a currently-valid draft, so a half-edited
// invalid state never clobbers the last good snapshot.
func (s *Session) autosaveLocked(ctx context.Context) {
	if !s.errors.Valid() {
		return
	}
	s.store.Save(ctx, s.key, s.snapshotLocked())
}

func (s *Session) releaseCoverLocked() {
	if handle := s.draft.Cover.Handle(); handle != "" {
		s.previews.Release(handle)
	}
	s.draft.CoverFile = nil
}
