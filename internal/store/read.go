package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/queryir"
)

// Query executes a backend query and returns the matching elements in
// backend order. Vertex queries yield *graph.Vertex, edge queries
// *graph.Edge.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Query(ctx context.Context, q *queryir.BackendQuery) ([]graph.Element, error) {
	for _, w := range queryir.Validate(q).Warnings {
		slog.Warn("backend query warning", "warning", w)
	}

	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	slog.Debug("executing backend query", "sql", query, "params", len(params))

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.ResultType, err)
	}
	defer rows.Close()

	scan := scanVertex
	if q.ResultType == graph.ElementEdge {
		scan = scanEdge
	}

	elements := []graph.Element{}
	for rows.Next() {
		el, err := scan(rows)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", q.ResultType, err)
	}

	return elements, nil
}

// ReadVertex retrieves a single vertex by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadVertex(ctx context.Context, id string) (*graph.Vertex, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, properties
		FROM vertices
		WHERE id = ?
	`, id)

	v, err := scanVertex(row)
	if err != nil {
		return nil, err
	}
	return v.(*graph.Vertex), nil
}

// ReadEdge retrieves a single edge by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEdge(ctx context.Context, id string) (*graph.Edge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, out_id, in_id, properties
		FROM edges
		WHERE id = ?
	`, id)

	e, err := scanEdge(row)
	if err != nil {
		return nil, err
	}
	return e.(*graph.Edge), nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVertex(row scanner) (graph.Element, error) {
	var v graph.Vertex
	var props string
	if err := row.Scan(&v.VertexID, &v.VertexLabel, &props); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan vertex: %w", err)
	}

	obj, err := unmarshalProperties(props)
	if err != nil {
		return nil, fmt.Errorf("vertex %q: %w", v.VertexID, err)
	}
	v.Props = obj
	return &v, nil
}

func scanEdge(row scanner) (graph.Element, error) {
	var e graph.Edge
	var props string
	if err := row.Scan(&e.EdgeID, &e.EdgeLabel, &e.OutV, &e.InV, &props); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan edge: %w", err)
	}

	obj, err := unmarshalProperties(props)
	if err != nil {
		return nil, fmt.Errorf("edge %q: %w", e.EdgeID, err)
	}
	e.Props = obj
	return &e, nil
}
