package draft

//go:generate mockgen -destination=mocks/mock_service.go -package=mockdraft -source=service.go

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stagecraft/draftpipe/internal/clients/catalogapi"
	"github.com/stagecraft/draftpipe/internal/preview"
	"github.com/stagecraft/draftpipe/internal/repositories/draftstore"
	"github.com/stagecraft/draftpipe/internal/services/media"
	"github.com/stagecraft/draftpipe/internal/uploader"
	"github.com/stagecraft/draftpipe/internal/uuid"
)

// Service mints editing sessions from shared collaborators. One service per
// process; one session per entity being edited.
type Service interface {
	// OpenSession creates and hydrates an editing session for the entity
	OpenSession(ctx context.Context, input *OpenSessionInput) (*OpenSessionOutput, error)
}

// OpenSessionInput identifies the entity to edit. Empty EntityID opens a
// session for a brand new entity.
type OpenSessionInput struct {
	EntityID string
}

// OpenSessionOutput carries the hydrated session
type OpenSessionOutput struct {
	Session *Session
}

type service struct {
	store    *draftstore.Store
	resolver *media.Resolver
	api      catalogapi.Client
	previews preview.Allocator
	accepted []string
	maxBytes int64
	ids      uuid.Generator
	log      zerolog.Logger
}

// ServiceConfig holds configuration for the draft service
type ServiceConfig struct {
	Store    *draftstore.Store // Required
	Uploader uploader.Client   // Required
	API      catalogapi.Client // Required
	Previews preview.Allocator // Required

	// Parallelism > 1 opts into bounded-parallel upload resolution
	Parallelism int

	AcceptedImageTypes []string       // Optional, defaults to common web image types
	MaxFileBytes       int64          // Optional, 0 means unlimited
	IDGenerator        uuid.Generator // Optional, defaults to google uuid

	Logger *zerolog.Logger // Optional
}

// NewService creates a new draft service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Store == nil || cfg.Uploader == nil || cfg.API == nil || cfg.Previews == nil {
		panic("store, uploader, api, and previews are required")
	}

	ids := cfg.IDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &service{
		store: cfg.Store,
		resolver: media.NewResolver(&media.ResolverConfig{
			Uploader:    cfg.Uploader,
			Parallelism: cfg.Parallelism,
			Logger:      cfg.Logger,
		}),
		api:      cfg.API,
		previews: cfg.Previews,
		accepted: cfg.AcceptedImageTypes,
		maxBytes: cfg.MaxFileBytes,
		ids:      ids,
		log:      log,
	}
}

// OpenSession creates and hydrates an editing session for the entity. A
// stored draft wins over the remote entity; a remote fetch failure degrades
// to an empty draft rather than blocking the editor.
func (s *service) OpenSession(ctx context.Context, input *OpenSessionInput) (*OpenSessionOutput, error) {
	if input == nil {
		input = &OpenSessionInput{}
	}

	manager := media.NewManager(&media.ManagerConfig{
		Previews:           s.previews,
		IDGenerator:        s.ids,
		AcceptedImageTypes: s.accepted,
		MaxFileBytes:       s.maxBytes,
		Logger:             &s.log,
	})

	session := NewSession(&SessionConfig{
		EntityID:           input.EntityID,
		Store:              s.store,
		Resolver:           s.resolver,
		API:                s.api,
		Previews:           s.previews,
		Media:              manager,
		AcceptedImageTypes: s.accepted,
		MaxFileBytes:       s.maxBytes,
		IDGen:              s.ids,
		Logger:             &s.log,
	})

	if err := session.Hydrate(ctx); err != nil {
		s.log.Warn().Err(err).Str("entity_id", input.EntityID).
			Msg("hydration fetch failed, starting from an empty draft")
	}

	return &OpenSessionOutput{Session: session}, nil
}
