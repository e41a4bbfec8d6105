// Package uploader defines the external upload collaborator: it turns a
// staged file into a durable remote reference.
package uploader

import (
	"context"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
)

//go:generate mockgen -destination=mocks/mock.go -package=mockuploader -source=uploader.go

// Result is the remote descriptor returned for an uploaded file. The backend
// may also produce a derived thumbnail; when it does not, ThumbnailURL is
// empty and callers decide what to mirror.
type Result struct {
	URL          string
	ThumbnailURL string
}

// Client uploads one file per call.
type Client interface {
	Upload(ctx context.Context, file *catalog.StagedFile) (*Result, error)
}
