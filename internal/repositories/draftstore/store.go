package draftstore

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/uuid"
)

// Store persists draft snapshots under per-entity keys. Its contract is
// deliberately lossy in the caller's favor: Load never fails (worst case it
// reports no draft), Save and Clear swallow and log persistence errors, so an
// unavailable store degrades the session to memory-only instead of breaking it.
type Store struct {
	kv  KV
	ids uuid.Generator
	log zerolog.Logger
}

// StoreConfig holds configuration for the store
type StoreConfig struct {
	KV          KV              // Required
	IDGenerator uuid.Generator  // Optional, defaults to google uuid
	Logger      *zerolog.Logger // Optional
}

// NewStore creates a new draft store
func NewStore(cfg *StoreConfig) *Store {
	if cfg == nil || cfg.KV == nil {
		panic("kv is required")
	}

	ids := cfg.IDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Store{
		kv:  cfg.KV,
		ids: ids,
		log: log,
	}
}

// Load returns the stored draft for key, or nil when there is none. Missing
// entries, unreadable stores, and unparseable snapshots all report nil.
func (s *Store) Load(ctx context.Context, key string) *catalog.Draft {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logMiss(key, err)
		return nil
	}

	draft, err := decodeDraft([]byte(value), s.ids.New)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("stored draft is unparseable, discarding")
		return nil
	}
	return draft
}

// Save persists a sanitized snapshot of the draft. Transient file payloads
// and local preview handles never reach the store.
func (s *Store) Save(ctx context.Context, key string, draft *catalog.Draft) {
	if draft == nil {
		return
	}

	data, err := encodeDraft(draft)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to encode draft snapshot")
		return
	}

	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to persist draft snapshot")
	}
}

// Clear removes the persisted entry for key. Clearing an absent key is fine.
func (s *Store) Clear(ctx context.Context, key string) {
	if err := s.kv.Del(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to clear draft snapshot")
	}
}

func (s *Store) logMiss(key string, err error) {
	// absence is the common case, only real failures are worth a warning
	if apperrors.IsNotFound(err) {
		s.log.Debug().Str("key", key).Msg("no stored draft")
		return
	}
	s.log.Warn().Err(err).Str("key", key).Msg("draft store unavailable, treating as empty")
}
