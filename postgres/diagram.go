package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/sankey"
)

const diagramColumns = `id, owner_id, name, nodes, links, created_at, updated_at`

// SaveDiagram validates d and stores it for ownerID.
// A diagram with the same name and owner is replaced in place and keeps its
// ID and created_at; otherwise a new row with a fresh UUID is inserted.
func (s *PGStore) SaveDiagram(ctx context.Context, ownerID string, d *sankey.Diagram) (*sankey.SavedDiagram, error) {
	if ownerID == "" {
		return nil, errors.New("sankey: owner id is required")
	}
	if err := sankey.ValidateForSave(d); err != nil {
		return nil, err
	}

	saved := &sankey.SavedDiagram{OwnerID: ownerID, Diagram: d.Clone()}
	nodes, links, err := encodeDiagram(&saved.Diagram)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO sankey_diagrams (id, owner_id, name, nodes, links)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, name) DO UPDATE
		SET nodes = EXCLUDED.nodes, links = EXCLUDED.links, updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		uuid.NewString(), ownerID, d.Name, nodes, links,
	).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("sankey: save diagram: %w", err)
	}

	return saved, nil
}

// GetDiagram fetches one of the owner's diagrams by ID.
// The stored record is run through sankey.Validate before it is returned.
func (s *PGStore) GetDiagram(ctx context.Context, ownerID, id string) (*sankey.SavedDiagram, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+diagramColumns+` FROM sankey_diagrams WHERE id = $1 AND owner_id = $2`, id, ownerID)

	saved, err := scanDiagram(row)
	if err != nil {
		if isNoRows(err) {
			return nil, sankey.ErrDiagramNotFound
		}
		return nil, fmt.Errorf("sankey: get diagram: %w", err)
	}

	if err := checkStored(saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// ListDiagrams returns the owner's diagrams, newest first.
// Returns an empty slice (not nil) if none found. Every row is checked with
// sankey.Validate; one corrupt row fails the whole listing.
func (s *PGStore) ListDiagrams(ctx context.Context, ownerID string) ([]sankey.SavedDiagram, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+diagramColumns+` FROM sankey_diagrams WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sankey: list diagrams: %w", err)
	}
	defer rows.Close()

	diagrams := []sankey.SavedDiagram{}
	for rows.Next() {
		saved, err := scanDiagram(rows)
		if err != nil {
			return nil, fmt.Errorf("sankey: scan diagram: %w", err)
		}
		if err := checkStored(saved); err != nil {
			return nil, err
		}
		diagrams = append(diagrams, *saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sankey: rows diagrams: %w", err)
	}

	return diagrams, nil
}

// DeleteDiagram deletes one of the owner's diagrams.
// No error if the diagram doesn't exist.
func (s *PGStore) DeleteDiagram(ctx context.Context, ownerID, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sankey_diagrams WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("sankey: delete diagram: %w", err)
	}
	return nil
}

func scanDiagram(row pgx.Row) (*sankey.SavedDiagram, error) {
	var (
		saved        sankey.SavedDiagram
		nodes, links []byte
	)
	if err := row.Scan(&saved.ID, &saved.OwnerID, &saved.Name, &nodes, &links, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeDiagram(nodes, links, &saved.Diagram); err != nil {
		return nil, err
	}
	return &saved, nil
}

// checkStored runs a loaded record through sankey.Validate.
func checkStored(saved *sankey.SavedDiagram) error {
	if err := sankey.Validate(&saved.Diagram); err != nil {
		return fmt.Errorf("sankey: stored diagram %s: %w", saved.ID, err)
	}
	return nil
}

// encodeDiagram renders the JSONB payloads for the nodes and links columns.
// Nil slices are stored as empty arrays.
func encodeDiagram(d *sankey.Diagram) (nodes, links []byte, err error) {
	ns, ls := d.Nodes, d.Links
	if ns == nil {
		ns = []string{}
	}
	if ls == nil {
		ls = []sankey.Link{}
	}
	if nodes, err = json.Marshal(ns); err != nil {
		return nil, nil, fmt.Errorf("sankey: encode nodes: %w", err)
	}
	if links, err = json.Marshal(ls); err != nil {
		return nil, nil, fmt.Errorf("sankey: encode links: %w", err)
	}
	return nodes, links, nil
}

func decodeDiagram(nodes, links []byte, d *sankey.Diagram) error {
	if err := json.Unmarshal(nodes, &d.Nodes); err != nil {
		return fmt.Errorf("sankey: decode nodes: %w", err)
	}
	if err := json.Unmarshal(links, &d.Links); err != nil {
		return fmt.Errorf("sankey: decode links: %w", err)
	}
	return nil
}
