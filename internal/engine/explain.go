package engine

import (
	"fmt"

	"github.com/roach88/pushdown/internal/querysql"
	"github.com/roach88/pushdown/internal/traversal"
)

// Explain returns Describe plus, per anchor, the SQL the reference store
// runs for it, and the plan fingerprint.
//
// Edge anchors run once per incoming vertex with an added OWNER_VERTEX
// condition; their SQL is shown without it and flagged per_vertex.
func (p *Plan) Explain(c *querysql.SQLCompiler) (map[string]any, error) {
	fp, err := p.Fingerprint()
	if err != nil {
		return nil, err
	}

	d := p.Describe()
	anchors := d["anchors"].([]any)
	for i, a := range p.Anchors {
		sql, params, err := c.Compile(a.Query)
		if err != nil {
			return nil, fmt.Errorf("anchor %d: %w", a.Index, err)
		}
		if params == nil {
			params = []any{}
		}
		_, perVertex := p.Pipeline[a.Index].(traversal.VertexStep)

		entry := anchors[i].(map[string]any)
		entry["sql"] = sql
		entry["params"] = params
		entry["per_vertex"] = perVertex
	}
	d["fingerprint"] = fp
	return d, nil
}
