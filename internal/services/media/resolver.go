package media

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/uploader"
)

// Resolver turns every staged local file in a gallery into a remote
// reference. Resolution is sequential and fail-fast by default: one upload at
// a time, in gallery order, so a failure is attributable to exactly one item
// and the output order mirrors the input with no reconciliation. Prior
// successes live only in the discarded result, never in storage.
type Resolver struct {
	uploads     uploader.Client
	parallelism int
	log         zerolog.Logger
}

// ResolverConfig holds configuration for the resolver
type ResolverConfig struct {
	Uploader uploader.Client // Required

	// Parallelism > 1 opts into bounded-parallel uploads. Results are still
	// placed by input index, never by completion order.
	Parallelism int

	Logger *zerolog.Logger // Optional
}

// NewResolver creates a new upload resolver
func NewResolver(cfg *ResolverConfig) *Resolver {
	if cfg == nil || cfg.Uploader == nil {
		panic("uploader is required")
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Resolver{
		uploads:     cfg.Uploader,
		parallelism: cfg.Parallelism,
		log:         log,
	}
}

// Resolve returns a new gallery in which every item is fully remote and free
// of transient fields, with fresh dense sort order. Any failure aborts the
// whole pass; the input is never mutated.
func (r *Resolver) Resolve(ctx context.Context, items []*catalog.StagedMediaItem) ([]*catalog.StagedMediaItem, error) {
	if r.parallelism > 1 {
		return r.resolveParallel(ctx, items)
	}

	out := make([]*catalog.StagedMediaItem, 0, len(items))
	for _, item := range items {
		resolved, err := r.resolveItem(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}

	catalog.RenumberItems(out)
	return out, nil
}

// resolveParallel uploads with bounded concurrency but writes each result at
// its input index, preserving gallery order exactly.
func (r *Resolver) resolveParallel(ctx context.Context, items []*catalog.StagedMediaItem) ([]*catalog.StagedMediaItem, error) {
	out := make([]*catalog.StagedMediaItem, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for idx, item := range items {
		idx, item := idx, item
		g.Go(func() error {
			resolved, err := r.resolveItem(gctx, item)
			if err != nil {
				return err
			}
			out[idx] = resolved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog.RenumberItems(out)
	return out, nil
}

func (r *Resolver) resolveItem(ctx context.Context, item *catalog.StagedMediaItem) (*catalog.StagedMediaItem, error) {
	resolved := item.Clone()

	switch resolved.Kind {
	case catalog.KindVideo:
		if err := r.resolveVideo(ctx, resolved); err != nil {
			return nil, err
		}
	default:
		if err := r.resolveImage(ctx, resolved); err != nil {
			return nil, err
		}
	}

	resolved.PendingFile = nil
	resolved.PendingThumbFile = nil
	return resolved, nil
}

// resolveVideo uploads a staged thumbnail. The primary url of a video is an
// externally-supplied link and must never be a local handle here; that is a
// staging bug upstream, not a recoverable upload.
func (r *Resolver) resolveVideo(ctx context.Context, item *catalog.StagedMediaItem) error {
	if item.URL.IsLocal() {
		return apperrors.StagingContractf("video %q has a local preview handle as its primary url", item.Label()).
			WithMeta("item_label", item.Label())
	}

	if item.ThumbnailURL.IsLocal() {
		if item.PendingThumbFile == nil {
			return handleWithoutFile(item)
		}
		result, err := r.upload(ctx, item, item.PendingThumbFile)
		if err != nil {
			return err
		}
		item.ThumbnailURL = catalog.RemoteRef(result.URL)
	}

	return nil
}

func (r *Resolver) resolveImage(ctx context.Context, item *catalog.StagedMediaItem) error {
	if item.URL.IsLocal() {
		if item.PendingFile == nil {
			return handleWithoutFile(item)
		}

		// a thumbnail holding the same handle is only the mirrored default
		mirrored := item.ThumbnailURL.Handle() != "" && item.ThumbnailURL.Handle() == item.URL.Handle()

		result, err := r.upload(ctx, item, item.PendingFile)
		if err != nil {
			return err
		}

		item.URL = catalog.RemoteRef(result.URL)
		if mirrored {
			if result.ThumbnailURL != "" {
				item.ThumbnailURL = catalog.RemoteRef(result.ThumbnailURL)
			} else {
				item.ThumbnailURL = catalog.RemoteRef(result.URL)
			}
		}
	}

	// a separately staged thumbnail can still be local while the primary is
	// already remote
	if item.ThumbnailURL.IsLocal() {
		if item.PendingThumbFile == nil {
			return handleWithoutFile(item)
		}
		result, err := r.upload(ctx, item, item.PendingThumbFile)
		if err != nil {
			return err
		}
		item.ThumbnailURL = catalog.RemoteRef(result.URL)
	}

	return nil
}

func (r *Resolver) upload(ctx context.Context, item *catalog.StagedMediaItem, file *catalog.StagedFile) (*uploader.Result, error) {
	result, err := r.uploads.Upload(ctx, file)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUploadFailed,
			"upload failed for "+item.Label()).
			WithMeta("item_label", item.Label()).
			WithMeta("file", file.Name)
	}
	r.log.Debug().Str("item", item.Label()).Str("url", result.URL).Msg("resolved staged file")
	return result, nil
}

// ResolveCover resolves the cover slot: a local handle with a backing file is
// uploaded, a remote or empty ref passes through.
func (r *Resolver) ResolveCover(ctx context.Context, cover catalog.MediaRef, file *catalog.StagedFile) (catalog.MediaRef, error) {
	if !cover.IsLocal() {
		return cover, nil
	}
	if file == nil {
		return catalog.MediaRef{}, apperrors.StagingContract("cover image has a preview handle with no backing file")
	}

	result, err := r.uploads.Upload(ctx, file)
	if err != nil {
		return catalog.MediaRef{}, apperrors.WrapWithCode(err, apperrors.CodeUploadFailed,
			"upload failed for cover image").
			WithMeta("item_label", "cover image").
			WithMeta("file", file.Name)
	}

	return catalog.RemoteRef(result.URL), nil
}

func handleWithoutFile(item *catalog.StagedMediaItem) *apperrors.Error {
	return apperrors.StagingContractf("item %q has a preview handle with no backing file", item.Label()).
		WithMeta("item_label", item.Label())
}
