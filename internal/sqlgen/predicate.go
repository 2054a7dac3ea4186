// Package sqlgen compiles a parsed query.Node into parameterized SQL
// using squirrel.SelectBuilder.
package sqlgen

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/query"
)

const (
	TableTestcases = "testcases"
	TableSessions  = "sessions"
	TableLabels    = "labels"
)

// binaryExpr ANDs or ORs two already-compiled conditions, wrapping them in
// parens so repeated folding preserves the strict left-associative
// emission order of the source string.
type binaryExpr struct {
	left, right sq.Sqlizer
	op          string
}

func (b binaryExpr) ToSql() (string, []any, error) {
	lsql, largs, err := b.left.ToSql()
	if err != nil {
		return "", nil, err
	}
	rsql, rargs, err := b.right.ToSql()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("(%s %s %s)", lsql, b.op, rsql), append(largs, rargs...), nil
}

// CompilePredicate translates a query.Node (excluding QueryWithGroupBy,
// which the caller unwraps first) into a WHERE condition. EmptyQuery
// compiles to nil, meaning "no filter".
func CompilePredicate(node query.Node) (sq.Sqlizer, error) {
	switch n := node.(type) {
	case query.EmptyQuery:
		return nil, nil
	case query.SessionQuery:
		return eqCond(TableTestcases+".session_id", n.SessionID, n.Op), nil
	case query.IDQuery:
		return eqCond(TableTestcases+".id", n.ID, n.Op), nil
	case query.NameQuery:
		return eqCond(TableTestcases+".name", n.Name, n.Op), nil
	case query.ClassnameQuery:
		return eqCond(TableTestcases+".classname", n.Classname, n.Op), nil
	case query.TestsuiteQuery:
		return eqCond(TableTestcases+".testsuite", n.Testsuite, n.Op), nil
	case query.FileQuery:
		return eqCond(TableTestcases+".file", n.File, n.Op), nil
	case query.StatusQuery:
		return compileStatus(n)
	case query.TagQuery:
		return compileTagPresence(n), nil
	case query.TagValueQuery:
		return compileTagValue(n), nil
	case query.CompoundQuery:
		return compileCompound(n)
	default:
		panic(fmt.Sprintf("sqlgen: unhandled query node kind %T", node))
	}
}

func eqCond(column string, value any, op query.Operator) sq.Sqlizer {
	if op == query.OpNEQ {
		return sq.NotEq{column: value}
	}
	return sq.Eq{column: value}
}

// compileStatus maps the empty status value, permitted by the parser, to
// a vacuous condition rather than an invalid enum lookup: no stored row
// has an empty status, so EQ "" never matches and NEQ "" always matches.
func compileStatus(n query.StatusQuery) (sq.Sqlizer, error) {
	if n.Status == "" {
		if n.Op == query.OpNEQ {
			return sq.Expr("1 = 1"), nil
		}
		return sq.Expr("1 = 0"), nil
	}
	status, ok := domain.ParseTestcaseStatus(n.Status)
	if !ok {
		return nil, fmt.Errorf("sqlgen: invalid status %q", n.Status)
	}
	return eqCond(TableTestcases+".status", int(status), n.Op), nil
}

func compileTagPresence(n query.TagQuery) sq.Sqlizer {
	sub := fmt.Sprintf("SELECT session_id FROM %s WHERE key = ?", TableLabels)
	if n.Op == query.OpNEQ {
		return sq.Expr(TableTestcases+".session_id NOT IN ("+sub+")", n.Tag)
	}
	return sq.Expr(TableTestcases+".session_id IN ("+sub+")", n.Tag)
}

func compileTagValue(n query.TagValueQuery) sq.Sqlizer {
	sub := fmt.Sprintf("SELECT session_id FROM %s WHERE key = ? AND value = ?", TableLabels)
	if n.Op == query.OpNEQ {
		return sq.Expr(TableTestcases+".session_id NOT IN ("+sub+")", n.Tag, n.Value)
	}
	return sq.Expr(TableTestcases+".session_id IN ("+sub+")", n.Tag, n.Value)
}

func compileCompound(n query.CompoundQuery) (sq.Sqlizer, error) {
	if len(n.Queries) == 0 {
		return nil, fmt.Errorf("sqlgen: compound query with no atoms")
	}
	acc, err := CompilePredicate(n.Queries[0])
	if err != nil {
		return nil, err
	}
	for i, op := range n.Operators {
		next, err := CompilePredicate(n.Queries[i+1])
		if err != nil {
			return nil, err
		}
		opStr := "AND"
		if op == query.LogicalOr {
			opStr = "OR"
		}
		acc = binaryExpr{left: acc, right: next, op: opStr}
	}
	return acc, nil
}
