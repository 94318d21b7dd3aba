package querysql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/queryir"
)

// Table names of the reference store.
const (
	VertexTable = "vertices"
	EdgeTable   = "edges"
)

// Column lists, in the order Scan expects them.
const (
	vertexColumns = "id, label, properties"
	edgeColumns   = "id, label, out_id, in_id, properties"
)

// SQLCompiler compiles a BackendQuery to parameterized SQL for SQLite.
//
// Every statement ends with ORDER BY ... id ASC COLLATE BINARY so results
// are deterministic. All values are parameters, never interpolated.
//
// Property comparisons are guarded by json_type, so a row matches exactly
// when the in-memory predicate would keep it: TEXT never compares against
// an INTEGER operand and a missing property never matches. Ordering puts
// missing properties last and ranks mixed kinds the way the engine does.
//
// OWNER_VERTEX is the one inexact key: it matches either endpoint. Queries
// holding it are fetched without LIMIT, since rows the caller drops could
// otherwise crowd matching rows out of the window.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a BackendQuery to (sql, params).
func (c *SQLCompiler) Compile(q *queryir.BackendQuery) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	var table, columns string
	switch q.ResultType {
	case graph.ElementVertex:
		table, columns = VertexTable, vertexColumns
	case graph.ElementEdge:
		table, columns = EdgeTable, edgeColumns
	default:
		return "", nil, fmt.Errorf("unsupported result type: %q", q.ResultType)
	}

	var where []string
	var params []any

	if len(q.IDs) > 0 {
		marks := placeholders(len(q.IDs))
		where = append(where, "id IN ("+marks+")")
		for _, id := range q.IDs {
			params = append(params, id)
		}
	}

	for i, cond := range q.Conditions {
		sql, condParams, err := c.compileCondition(q.ResultType, cond)
		if err != nil {
			return "", nil, fmt.Errorf("compile condition %d: %w", i, err)
		}
		where = append(where, sql)
		params = append(params, condParams...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", columns, table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	orderSQL, orderParams, err := c.compileOrder(q.ResultType, q.Orders)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderSQL)
	params = append(params, orderParams...)

	if limit, ok := rowLimit(q.Range); ok && exact(q.Conditions) {
		b.WriteString(" LIMIT ?")
		params = append(params, limit)
	}

	return b.String(), params, nil
}

// rowLimit returns how many leading rows to fetch. The window's offset is
// not skipped here: the range step left in the pipeline skips it, so the
// backend returns the first offset+limit rows.
func rowLimit(r *queryir.Range) (int64, bool) {
	if r == nil || r.Limit < 0 {
		return 0, false
	}
	return r.End(), true
}

// exact reports whether every condition matches exactly the rows the
// in-memory filters keep.
func exact(conds []queryir.Condition) bool {
	for _, cond := range conds {
		switch cd := cond.(type) {
		case queryir.Relation:
			if cd.Key.Is(queryir.KeyOwnerVertex) {
				return false
			}
		case queryir.SetRelation:
			if cd.Key.Is(queryir.KeyOwnerVertex) {
				return false
			}
		case queryir.And:
			if !exact([]queryir.Condition{cd.Left, cd.Right}) {
				return false
			}
		}
	}
	return true
}

// kindRank orders JSON kinds: null, booleans, integers, text, arrays,
// objects. Anything else (a missing property) ranks last.
const kindRank = `CASE %s WHEN 'null' THEN 0 WHEN 'true' THEN 1 WHEN 'false' THEN 1 ` +
	`WHEN 'integer' THEN 2 WHEN 'text' THEN 3 WHEN 'array' THEN 4 WHEN 'object' THEN 5 ELSE 6 END`

// compileOrder renders the requested keys followed by the tiebreaker.
//
// A property key sorts in three parts: missing values last in either
// direction, then kind rank, then the scalar value within a kind. Arrays
// and objects tie on value and fall through to the next key.
func (c *SQLCompiler) compileOrder(rt graph.ElementType, orders []queryir.OrderKey) (string, []any, error) {
	var parts []string
	var params []any
	for _, o := range orders {
		dir := "ASC"
		switch o.Direction {
		case queryir.ASC:
		case queryir.DESC:
			dir = "DESC"
		default:
			return "", nil, fmt.Errorf("compile order %s: unknown direction %q", o.Key, o.Direction)
		}

		if path, ok, err := propertyPath(o.Key); err != nil {
			return "", nil, fmt.Errorf("compile order %s: %w", o.Key, err)
		} else if ok {
			slot := propertySlot(path)
			parts = append(parts,
				slot.typeExpr+" IS NULL ASC",
				fmt.Sprintf(kindRank, slot.typeExpr)+" "+dir,
				fmt.Sprintf("CASE WHEN %s IN ('true', 'false', 'integer', 'text') THEN %s END %s", slot.typeExpr, slot.valueExpr, dir),
			)
			params = append(params, path, path, path, path)
			continue
		}

		cols, err := columnsFor(rt, o.Key)
		if err != nil {
			return "", nil, fmt.Errorf("compile order %s: %w", o.Key, err)
		}
		if len(cols) != 1 {
			return "", nil, fmt.Errorf("compile order %s: key has no single column", o.Key)
		}
		parts = append(parts, cols[0]+" "+dir)
	}
	parts = append(parts, stableOrderKey())
	return strings.Join(parts, ", "), params, nil
}

// stableOrderKey is the tiebreaker appended to every ORDER BY.
func stableOrderKey() string {
	return "id ASC COLLATE BINARY"
}

func (c *SQLCompiler) compileCondition(rt graph.ElementType, cond queryir.Condition) (string, []any, error) {
	switch cd := cond.(type) {
	case queryir.Relation:
		return c.compileRelation(rt, cd)
	case queryir.SetRelation:
		return c.compileSetRelation(rt, cd)
	case queryir.ContainsKey:
		return compileContains(cd.Key, "key", cd.Value)
	case queryir.ContainsValue:
		return compileContains(cd.Key, "value", cd.Value)
	case queryir.And:
		left, lp, err := c.compileCondition(rt, cd.Left)
		if err != nil {
			return "", nil, err
		}
		right, rp, err := c.compileCondition(rt, cd.Right)
		if err != nil {
			return "", nil, err
		}
		return "(" + left + " AND " + right + ")", append(lp, rp...), nil
	case nil:
		return "", nil, fmt.Errorf("nil condition")
	default:
		return "", nil, fmt.Errorf("unsupported condition type: %T", cond)
	}
}

var relationSQL = map[queryir.RelationOp]string{
	queryir.EQ:  "=",
	queryir.NEQ: "<>",
	queryir.GT:  ">",
	queryir.GTE: ">=",
	queryir.LT:  "<",
	queryir.LTE: "<=",
}

// compileRelation renders a comparison. Keys spanning several columns
// (OWNER_VERTEX) match when any column does.
func (c *SQLCompiler) compileRelation(rt graph.ElementType, r queryir.Relation) (string, []any, error) {
	if _, ok := relationSQL[r.Op]; !ok {
		return "", nil, fmt.Errorf("unsupported relation operator: %q", r.Op)
	}
	if _, err := irValueToParam(r.Value); err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	path, ok, err := propertyPath(r.Key)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return propertySlot(path).compare(r.Op, r.Value)
	}

	cols, err := columnsFor(rt, r.Key)
	if err != nil {
		return "", nil, err
	}
	parts := make([]string, len(cols))
	var params []any
	for i, col := range cols {
		sql, colParams := compareColumn(col, r.Op, r.Value)
		parts[i] = sql
		params = append(params, colParams...)
	}
	return anyOf(parts), params, nil
}

// compareColumn compares a text column. Only a string operand can equal or
// order against it; any other operand is unequal to every row.
func compareColumn(col string, op queryir.RelationOp, v ir.IRValue) (string, []any) {
	s, ok := v.(ir.IRString)
	if !ok {
		if op == queryir.NEQ {
			return "1 = 1", nil
		}
		return "0 = 1", nil
	}
	return fmt.Sprintf("%s %s ?", col, relationSQL[op]), []any{string(s)}
}

func (c *SQLCompiler) compileSetRelation(rt graph.ElementType, s queryir.SetRelation) (string, []any, error) {
	if s.Op != queryir.IN && s.Op != queryir.NOTIN {
		return "", nil, fmt.Errorf("unsupported set operator: %q", s.Op)
	}
	for i, v := range s.Values {
		if _, err := irValueToParam(v); err != nil {
			return "", nil, fmt.Errorf("convert value %d: %w", i, err)
		}
	}

	path, ok, err := propertyPath(s.Key)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return propertySlot(path).member(s.Op, s.Values)
	}

	cols, err := columnsFor(rt, s.Key)
	if err != nil {
		return "", nil, err
	}
	var values []any
	for _, v := range s.Values {
		if str, ok := v.(ir.IRString); ok {
			values = append(values, string(str))
		}
	}

	parts := make([]string, len(cols))
	var params []any
	for i, col := range cols {
		switch {
		case len(values) == 0 && s.Op == queryir.IN:
			parts[i] = "0 = 1"
		case len(values) == 0:
			parts[i] = "1 = 1"
		case s.Op == queryir.IN:
			parts[i] = fmt.Sprintf("%s IN (%s)", col, placeholders(len(values)))
			params = append(params, values...)
		default:
			parts[i] = fmt.Sprintf("%s NOT IN (%s)", col, placeholders(len(values)))
			params = append(params, values...)
		}
	}
	return anyOf(parts), params, nil
}

func compileContains(key queryir.PropertyKey, field string, v ir.IRValue) (string, []any, error) {
	if !key.Is(queryir.KeyProperties) {
		return "", nil, fmt.Errorf("containment on %s: only PROPERTIES is a map", key)
	}
	if _, err := irValueToParam(v); err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	if field == "key" {
		name, ok := v.(ir.IRString)
		if !ok {
			return "0 = 1", nil, nil
		}
		return "EXISTS (SELECT 1 FROM json_each(properties) WHERE json_each.key = ?)", []any{string(name)}, nil
	}

	match, params, err := jsonSlot{typeExpr: "json_each.type", valueExpr: "json_each.value"}.compare(queryir.EQ, v)
	if err != nil {
		return "", nil, err
	}
	return "EXISTS (SELECT 1 FROM json_each(properties) WHERE " + match + ")", params, nil
}

// jsonSlot is a JSON value as SQLite sees it: an expression naming its
// json_type and one extracting its SQL value. Each use of either
// expression binds params once.
type jsonSlot struct {
	typeExpr  string
	valueExpr string
	params    []any
}

func propertySlot(path string) jsonSlot {
	return jsonSlot{
		typeExpr:  "json_type(properties, ?)",
		valueExpr: "json_extract(properties, ?)",
		params:    []any{path},
	}
}

// compare matches values of the operand's kind only. Booleans and null
// are matched on their json_type, which names true and false apart.
func (s jsonSlot) compare(op queryir.RelationOp, v ir.IRValue) (string, []any, error) {
	if op == queryir.NEQ {
		eq, eqParams, err := s.compare(queryir.EQ, v)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("(%s IS NOT NULL AND NOT %s)", s.typeExpr, eq), append(slices.Clone(s.params), eqParams...), nil
	}
	sqlOp, ok := relationSQL[op]
	if !ok {
		return "", nil, fmt.Errorf("unsupported relation operator: %q", op)
	}

	var kinds string
	switch val := v.(type) {
	case ir.IRNull:
		if op != queryir.EQ {
			return "0 = 1", nil, nil
		}
		return fmt.Sprintf("(%s = 'null')", s.typeExpr), slices.Clone(s.params), nil
	case ir.IRBool:
		if op == queryir.EQ {
			name := "false"
			if val {
				name = "true"
			}
			return fmt.Sprintf("(%s = '%s')", s.typeExpr, name), slices.Clone(s.params), nil
		}
		kinds = "IN ('true', 'false')"
	case ir.IRInt:
		kinds = "= 'integer'"
	case ir.IRString:
		kinds = "= 'text'"
	default:
		return "", nil, fmt.Errorf("unsupported IRValue type for comparison: %T", v)
	}

	param, err := irValueToParam(v)
	if err != nil {
		return "", nil, err
	}
	params := slices.Concat(s.params, s.params, []any{param})
	return fmt.Sprintf("(%s %s AND %s %s ?)", s.typeExpr, kinds, s.valueExpr, sqlOp), params, nil
}

// member renders IN / NOT IN as a disjunction of exact equalities. A
// missing property matches neither. Every part compare returns is
// parenthesized.
func (s jsonSlot) member(op queryir.SetRelationOp, values []ir.IRValue) (string, []any, error) {
	var parts []string
	var params []any
	for _, v := range values {
		eq, eqParams, err := s.compare(queryir.EQ, v)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, eq)
		params = append(params, eqParams...)
	}

	if op == queryir.IN {
		if len(parts) == 0 {
			return "0 = 1", nil, nil
		}
		return anyOf(parts), params, nil
	}
	present := s.typeExpr + " IS NOT NULL"
	if len(parts) == 0 {
		return present, slices.Clone(s.params), nil
	}
	return fmt.Sprintf("(%s AND NOT %s)", present, anyOf(parts)), append(slices.Clone(s.params), params...), nil
}

// columnsFor maps a well-known key to the text columns that hold it for
// the given element type.
func columnsFor(rt graph.ElementType, key queryir.PropertyKey) ([]string, error) {
	switch key.Code {
	case queryir.KeyCodeID:
		return []string{"id"}, nil
	case queryir.KeyCodeLabel:
		return []string{"label"}, nil
	case queryir.KeyCodeProperties:
		return nil, fmt.Errorf("key %s supports containment only", key)
	case queryir.KeyCodeOwnerVertex:
		if rt != graph.ElementEdge {
			return nil, fmt.Errorf("key %s applies to edges only", key)
		}
		return []string{"out_id", "in_id"}, nil
	case queryir.KeyCodeOtherVertex:
		if rt != graph.ElementEdge {
			return nil, fmt.Errorf("key %s applies to edges only", key)
		}
		return []string{"in_id"}, nil
	}
	return nil, fmt.Errorf("key %s is not a column", key)
}

// propertyPath returns the JSON path of a key stored in the properties
// document, and false for keys held in columns.
func propertyPath(key queryir.PropertyKey) (string, bool, error) {
	switch key.Code {
	case queryir.KeyCodeID, queryir.KeyCodeLabel, queryir.KeyCodeProperties,
		queryir.KeyCodeOwnerVertex, queryir.KeyCodeOtherVertex:
		return "", false, nil
	}
	path, err := JSONPath(key.Name)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// JSONPath returns the SQLite JSON path addressing a top-level property.
func JSONPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty property name")
	}
	if strings.ContainsRune(name, '"') {
		return "", fmt.Errorf("property name %q cannot be addressed by a JSON path", name)
	}
	return `$."` + name + `"`, nil
}

func anyOf(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Supports string, int, bool. Arrays and objects are not directly supported
// as SQL parameters.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
