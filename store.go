package sankey

import (
	"context"
	"errors"
)

var (
	ErrInvalidPosition = errors.New("sankey: invalid node position")
	ErrInvalidValue    = errors.New("sankey: invalid link value")
	ErrCycleRejected   = errors.New("sankey: circular links are not allowed")
	ErrLinkNotFound    = errors.New("sankey: link not found")
	ErrInvalidEndpoint = errors.New("sankey: link endpoint must be source or target")
	ErrNameRequired    = errors.New("sankey: diagram name is required")
	ErrDiagramNotFound = errors.New("sankey: diagram not found")
)

// Store defines the contract for persisting and retrieving diagrams.
// Owner IDs are opaque; a store scopes every diagram to the owner that saved it.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// SaveDiagram inserts the diagram, or replaces the owner's diagram with the
	// same name.
	SaveDiagram(ctx context.Context, ownerID string, d *Diagram) (*SavedDiagram, error)
	// GetDiagram returns ErrDiagramNotFound when the owner has no such diagram.
	GetDiagram(ctx context.Context, ownerID, id string) (*SavedDiagram, error)
	// ListDiagrams returns the owner's diagrams, newest first.
	ListDiagrams(ctx context.Context, ownerID string) ([]SavedDiagram, error)
	DeleteDiagram(ctx context.Context, ownerID, id string) error
}
