package testutil

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/queryir"
)

// SloppyBackend is an in-memory backend that ignores every condition,
// order and range of the queries it receives. It honours only the result
// type and, when set, the id list.
//
// It stands in for the least exact backend possible for conditions and
// range: results correct on top of it are correct because of the residual
// filters and the retained range step. Pushed order is consumed by the
// anchor and not re-applied, so ordered pipelines need an ordering backend.
//
// Thread-safety: all methods are safe for concurrent use.
type SloppyBackend struct {
	mu       sync.Mutex
	vertices []*graph.Vertex
	edges    []*graph.Edge
	queries  []*queryir.BackendQuery
}

// NewSloppyBackend creates a backend over the given elements.
func NewSloppyBackend(vertices []*graph.Vertex, edges []*graph.Edge) *SloppyBackend {
	return &SloppyBackend{vertices: vertices, edges: edges}
}

// Query returns every element of the requested type, restricted to
// q.IDs when non-empty.
func (b *SloppyBackend) Query(_ context.Context, q *queryir.BackendQuery) ([]graph.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q.Clone())

	var out []graph.Element
	switch q.ResultType {
	case graph.ElementVertex:
		for _, v := range b.vertices {
			if wanted(q.IDs, v.VertexID) {
				out = append(out, v)
			}
		}
	case graph.ElementEdge:
		for _, e := range b.edges {
			if wanted(q.IDs, e.EdgeID) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// ReadVertex returns the vertex with the given id or sql.ErrNoRows.
func (b *SloppyBackend) ReadVertex(_ context.Context, id string) (*graph.Vertex, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, v := range b.vertices {
		if v.VertexID == id {
			return v, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Queries returns copies of the queries received so far.
func (b *SloppyBackend) Queries() []*queryir.BackendQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*queryir.BackendQuery, len(b.queries))
	copy(out, b.queries)
	return out
}

func wanted(ids []string, id string) bool {
	return len(ids) == 0 || slices.Contains(ids, id)
}
