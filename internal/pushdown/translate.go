package pushdown

import (
	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/queryir"
	"github.com/roach88/pushdown/internal/traversal"
)

// Translator converts (key, predicate) pairs into backend conditions.
type Translator struct {
	resolver *Resolver
}

// NewTranslator creates a Translator. A nil resolver resolves only the
// reserved markers and the built-in keys.
func NewTranslator(r *Resolver) *Translator {
	if r == nil {
		r = NewResolver()
	}
	return &Translator{resolver: r}
}

// Resolver returns the resolver used for key lookup.
func (t *Translator) Resolver() *Resolver { return t.resolver }

// Translate converts one predicate on key into a Condition.
//
// Rules, in priority order:
//  1. ~key / ~value accept only eq and become ContainsKey / ContainsValue
//  2. Compare becomes Relation
//  3. SetMembership becomes SetRelation
//  4. And of exactly two Compare children becomes And(Relation, Relation)
//  5. Or always fails
//  6. anything else fails
func (t *Translator) Translate(key string, p traversal.Predicate) (queryir.Condition, error) {
	if isMapMarker(key) {
		return t.containment(key, p)
	}

	switch pred := p.(type) {
	case traversal.Compare:
		rel, err := t.relation(key, pred)
		if err != nil {
			return nil, err
		}
		return rel, nil
	case traversal.SetMembership:
		return t.setRelation(key, pred)
	case traversal.And:
		return t.and(key, pred)
	case traversal.Or:
		return nil, unsupported(key, p, "disjunction has no backend representation")
	default:
		return nil, unsupported(key, p, "unrecognized predicate shape")
	}
}

// TranslateFilter is Translate for a HasFilter.
func (t *Translator) TranslateFilter(h traversal.HasFilter) (queryir.Condition, error) {
	return t.Translate(h.Key, h.Predicate)
}

// FillQuery translates every filter into q. On error q may hold the
// conditions translated so far; callers discard it.
func (t *Translator) FillQuery(filters []traversal.HasFilter, q *queryir.BackendQuery) error {
	for _, h := range filters {
		c, err := t.TranslateFilter(h)
		if err != nil {
			return err
		}
		q.Query(c)
	}
	return nil
}

func (t *Translator) containment(key string, p traversal.Predicate) (queryir.Condition, error) {
	c, ok := p.(traversal.Compare)
	if !ok || c.Op != traversal.OpEq {
		return nil, unsupported(key, p, "map key/value queries support eq only")
	}
	k := t.resolver.Resolve(key)
	if key == graph.AccessorKey {
		return queryir.ContainsKey{Key: k, Value: c.Value}, nil
	}
	return queryir.ContainsValue{Key: k, Value: c.Value}, nil
}

var relationOps = map[traversal.CompareOp]queryir.RelationOp{
	traversal.OpEq:  queryir.EQ,
	traversal.OpNeq: queryir.NEQ,
	traversal.OpGt:  queryir.GT,
	traversal.OpGte: queryir.GTE,
	traversal.OpLt:  queryir.LT,
	traversal.OpLte: queryir.LTE,
}

func (t *Translator) relation(key string, c traversal.Compare) (queryir.Relation, error) {
	op, ok := relationOps[c.Op]
	if !ok {
		return queryir.Relation{}, unsupported(key, c, "unknown comparison operator")
	}
	return queryir.Relation{Key: t.resolver.Resolve(key), Op: op, Value: c.Value}, nil
}

func (t *Translator) setRelation(key string, s traversal.SetMembership) (queryir.Condition, error) {
	var op queryir.SetRelationOp
	switch s.Op {
	case traversal.OpWithin:
		op = queryir.IN
	case traversal.OpWithout:
		op = queryir.NOTIN
	default:
		return nil, unsupported(key, s, "unknown membership operator")
	}
	values := make([]ir.IRValue, len(s.Values))
	copy(values, s.Values)
	return queryir.SetRelation{Key: t.resolver.Resolve(key), Op: op, Values: values}, nil
}

// and supports the inside()/between() shape only.
func (t *Translator) and(key string, a traversal.And) (queryir.Condition, error) {
	if len(a.Predicates) != 2 {
		return nil, unsupported(key, a, "conjunction must have exactly two comparisons")
	}
	var rels [2]queryir.Relation
	for i, child := range a.Predicates {
		c, ok := child.(traversal.Compare)
		if !ok {
			return nil, unsupported(key, a, "three or more levels of logical conditions")
		}
		rel, err := t.relation(key, c)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}
	return queryir.NewAnd(rels[0], rels[1]), nil
}
