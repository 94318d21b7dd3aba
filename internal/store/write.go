package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/pushdown/internal/graph"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// newID returns a time-ordered UUIDv7 for elements written without an id.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// WriteVertex inserts or replaces a vertex and returns its id.
// A vertex without an id is assigned a UUIDv7.
func (s *Store) WriteVertex(ctx context.Context, v *graph.Vertex) (string, error) {
	return writeVertex(ctx, s.db, v)
}

// WriteEdge inserts or replaces an edge and returns its id. Both endpoints
// must already be stored.
func (s *Store) WriteEdge(ctx context.Context, e *graph.Edge) (string, error) {
	return writeEdge(ctx, s.db, e)
}

// Load writes a batch of vertices then edges in one transaction. Ids
// assigned to id-less elements are written back into them.
func (s *Store) Load(ctx context.Context, vertices []*graph.Vertex, edges []*graph.Edge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("load: begin: %w", err)
	}
	defer tx.Rollback()

	for _, v := range vertices {
		id, err := writeVertex(ctx, tx, v)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		v.VertexID = id
	}
	for _, e := range edges {
		id, err := writeEdge(ctx, tx, e)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		e.EdgeID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("load: commit: %w", err)
	}
	return nil
}

func writeVertex(ctx context.Context, db execer, v *graph.Vertex) (string, error) {
	if v == nil {
		return "", fmt.Errorf("write vertex: nil vertex")
	}
	if v.VertexLabel == "" {
		return "", fmt.Errorf("write vertex %q: empty label", v.VertexID)
	}

	id := v.VertexID
	if id == "" {
		var err error
		if id, err = newID(); err != nil {
			return "", fmt.Errorf("write vertex: %w", err)
		}
	}

	props, err := marshalProperties(v.Props)
	if err != nil {
		return "", fmt.Errorf("write vertex %q: %w", id, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO vertices (id, label, properties)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET label = excluded.label, properties = excluded.properties
	`, id, v.VertexLabel, props)
	if err != nil {
		return "", fmt.Errorf("write vertex %q: %w", id, err)
	}

	return id, nil
}

func writeEdge(ctx context.Context, db execer, e *graph.Edge) (string, error) {
	if e == nil {
		return "", fmt.Errorf("write edge: nil edge")
	}
	if e.EdgeLabel == "" {
		return "", fmt.Errorf("write edge %q: empty label", e.EdgeID)
	}
	if e.OutV == "" || e.InV == "" {
		return "", fmt.Errorf("write edge %q: both endpoints are required", e.EdgeID)
	}

	id := e.EdgeID
	if id == "" {
		var err error
		if id, err = newID(); err != nil {
			return "", fmt.Errorf("write edge: %w", err)
		}
	}

	props, err := marshalProperties(e.Props)
	if err != nil {
		return "", fmt.Errorf("write edge %q: %w", id, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO edges (id, label, out_id, in_id, properties)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			out_id = excluded.out_id,
			in_id = excluded.in_id,
			properties = excluded.properties
	`, id, e.EdgeLabel, e.OutV, e.InV, props)
	if err != nil {
		return "", fmt.Errorf("write edge %q: %w", id, err)
	}

	return id, nil
}
