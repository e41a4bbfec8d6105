// Package catalogapi defines the entity API collaborator for catalog items.
// The transport behind it is out of scope here; the pipeline only needs the
// create/update/fetch surface.
package catalogapi

import (
	"context"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
)

//go:generate mockgen -destination=mocks/mock.go -package=mockcatalogapi -source=client.go

// Client is the remote catalog API.
type Client interface {
	// Create submits a new item and returns the stored entity
	Create(ctx context.Context, payload *catalog.ItemPayload) (*catalog.Item, error)

	// Update replaces an existing item
	Update(ctx context.Context, id string, payload *catalog.ItemPayload) (*catalog.Item, error)

	// GetByID fetches an existing item
	GetByID(ctx context.Context, id string) (*catalog.Item, error)
}
