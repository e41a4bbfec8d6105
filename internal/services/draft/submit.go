package draft

import (
	"context"
	"fmt"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/validation"
)

// SubmitStatus classifies the outcome of a publish or update attempt.
type SubmitStatus string

const (
	// SubmitSuccess means the entity was created or updated
	SubmitSuccess SubmitStatus = "success"
	// SubmitInvalid means validation blocked submission, nothing was uploaded
	SubmitInvalid SubmitStatus = "validation_failed"
	// SubmitFailed means staging, upload, or the API call failed mid-flight
	SubmitFailed SubmitStatus = "api_failed"
)

// SubmitResult is everything the UI needs to render a submission outcome:
// either the stored entity, the per-field errors to highlight, or a coded
// failure to toast.
type SubmitResult struct {
	Status      SubmitStatus
	Item        *catalog.Item
	FieldErrors map[string][]string
	ErrorCode   apperrors.Code
	Message     string
}

// Publish validates, resolves every staged file, and creates the entity.
func (s *Session) Publish(ctx context.Context) *SubmitResult {
	return s.submit(ctx, func(ctx context.Context, payload *catalog.ItemPayload) (*catalog.Item, error) {
		return s.api.Create(ctx, payload)
	})
}

// Update validates, resolves every staged file, and replaces the entity with
// the given id.
func (s *Session) Update(ctx context.Context, id string) *SubmitResult {
	if id == "" {
		return &SubmitResult{
			Status:    SubmitFailed,
			ErrorCode: apperrors.CodeInvalidArgument,
			Message:   "entity id is required for an update",
		}
	}
	return s.submit(ctx, func(ctx context.Context, payload *catalog.ItemPayload) (*catalog.Item, error) {
		return s.api.Update(ctx, id, payload)
	})
}

// submit is the shared publish/update path. Validation runs first so nothing
// is uploaded for a draft the API would reject anyway; resolution failures
// surface as coded failures and leave the draft untouched for a retry.
func (s *Session) submit(ctx context.Context, call func(context.Context, *catalog.ItemPayload) (*catalog.Item, error)) *SubmitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()

	result := validation.Validate(subjectOf(snap), s.schema)
	addGalleryErrors(result, snap.Gallery)
	if !result.Valid() {
		s.errors = result
		return &SubmitResult{Status: SubmitInvalid, FieldErrors: result.Errors}
	}

	cover, err := s.resolver.ResolveCover(ctx, snap.Cover, snap.CoverFile)
	if err != nil {
		return s.submitFailure(err, "cover upload failed")
	}
	snap.Cover = cover
	snap.CoverFile = nil

	resolved, err := s.resolver.Resolve(ctx, snap.Gallery)
	if err != nil {
		return s.submitFailure(err, "media upload failed")
	}
	snap.Gallery = resolved

	payload, err := catalog.BuildPayload(snap)
	if err != nil {
		return s.submitFailure(err, "payload construction failed")
	}

	item, err := call(ctx, payload)
	if err != nil {
		s.log.Error().Err(err).Msg("entity submission failed")
		return &SubmitResult{
			Status:    SubmitFailed,
			ErrorCode: apperrors.CodeAPIFailure,
			Message:   err.Error(),
		}
	}

	// Submission stuck: the draft is no longer in progress. Resolved remote
	// references replace the staged ones so a continued edit starts clean.
	s.store.Clear(ctx, s.key)
	s.releaseCoverLocked()
	s.draft.Cover = cover
	s.media.SetItems(resolved)
	s.revalidateLocked()

	s.log.Info().Str("item_id", item.ID).Msg("entity submitted")
	return &SubmitResult{Status: SubmitSuccess, Item: item}
}

func (s *Session) submitFailure(err error, context string) *SubmitResult {
	s.log.Error().Err(err).Msg(context)
	return &SubmitResult{
		Status:    SubmitFailed,
		ErrorCode: apperrors.GetCode(err),
		Message:   err.Error(),
	}
}

// addGalleryErrors applies the submission-only media rules: a video entry
// needs its external link before the draft can be sent.
func addGalleryErrors(result *validation.Result, gallery []*catalog.StagedMediaItem) {
	for _, item := range gallery {
		if item.Kind == catalog.KindVideo && item.URL.IsEmpty() {
			result.Errors[FieldGallery] = append(result.Errors[FieldGallery],
				fmt.Sprintf("%s is missing its video link", item.Label()))
		}
	}
}
