package sqlgen

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/brightlane/qaharbor/internal/query"
)

// joinClause is a raw JOIN fragment (without the leading "JOIN" keyword,
// matching squirrel's SelectBuilder.Join signature) plus its positional
// arguments.
type joinClause struct {
	sql  string
	args []any
}

// groupAlias returns the output column alias for the group-by token at
// index i: group_0, group_1, ... Label join aliases are derived from the
// same index (label_0, label_1, ...) so two compilations of the same
// query agree.
func groupAlias(i int) string { return fmt.Sprintf("group_%d", i) }
func labelAlias(i int) string { return fmt.Sprintf("label_%d", i) }

// buildGroupProjection returns, for each token in clause (in order), the
// SELECT expression that projects its column and the JOIN needed to reach
// it.
func buildGroupProjection(clause query.GroupByClause) (selectExprs []string, joins []joinClause, err error) {
	if len(clause.Tokens) == 0 {
		return nil, nil, fmt.Errorf("sqlgen: group by clause must have at least one token")
	}
	for i, tok := range clause.Tokens {
		alias := groupAlias(i)
		switch tok.Kind {
		case query.GroupBySessionID:
			joins = append(joins, joinClause{sql: TableSessions + " ON " + TableTestcases + ".session_id = " + TableSessions + ".id"})
			// Cast to text so every group column, regardless of its
			// underlying SQL type, round-trips through the string/null
			// group-key codec (query.GroupKey) uniformly.
			selectExprs = append(selectExprs, TableSessions+".id::text AS "+alias)
		case query.GroupByTag:
			la := labelAlias(i)
			joins = append(joins, joinClause{
				sql:  fmt.Sprintf("%s AS %s ON %s.session_id = %s.session_id AND %s.key = ?", TableLabels, la, TableTestcases, la, la),
				args: []any{tok.Value},
			})
			selectExprs = append(selectExprs, la+".value AS "+alias)
		default:
			return nil, nil, fmt.Errorf("sqlgen: unhandled group by token kind %v", tok.Kind)
		}
	}
	return selectExprs, joins, nil
}

// groupColumnNames returns the output aliases (group_0, group_1, ...) in
// token order, used for GROUP BY / ORDER BY and for reading result rows.
func groupColumnNames(clause query.GroupByClause) []string {
	names := make([]string, len(clause.Tokens))
	for i := range clause.Tokens {
		names[i] = groupAlias(i)
	}
	return names
}

func applyJoins(b sq.SelectBuilder, joins []joinClause) sq.SelectBuilder {
	for _, j := range joins {
		if len(j.args) == 0 {
			b = b.Join(j.sql)
		} else {
			b = b.Join(j.sql, j.args...)
		}
	}
	return b
}

// CompileGrouping builds the paginated, aggregated grouping query for
// QueryWithGroupBy: an inner CTE grouping Testcase rows by the requested
// columns with MIN(status) roll-up, wrapped by a window-function query
// producing total_count and aggregated_status in one round trip.
func CompileGrouping(gq query.QueryWithGroupBy, userID uuid.UUID, start, end *time.Time, offset, limit uint64) (string, []any, error) {
	selectExprs, joins, err := buildGroupProjection(gq.GroupBy)
	if err != nil {
		return "", nil, err
	}
	cols := groupColumnNames(gq.GroupBy)

	predicate, err := CompilePredicate(gq.MainQuery)
	if err != nil {
		return "", nil, err
	}

	b := sq.Select(append(append([]string{}, selectExprs...), "MIN("+TableTestcases+".status) AS group_status")...).
		From(TableTestcases)
	b = applyJoins(b, joins)
	b = b.Where(sq.Eq{TableTestcases + ".user_id": userID})
	if predicate != nil {
		b = b.Where(predicate)
	}
	b = applyDateWindow(b, start, end)
	b = b.GroupBy(cols...).OrderBy(cols...)

	innerSQL, innerArgs, err := b.ToSql()
	if err != nil {
		return "", nil, err
	}

	outer := fmt.Sprintf(
		"WITH cte AS (%s) SELECT cte.*, COUNT(1) OVER () AS total_count, MIN(cte.group_status) OVER () AS aggregated_status FROM cte LIMIT ? OFFSET ?",
		innerSQL,
	)
	args := append(innerArgs, limit, offset)

	finalSQL, err := sq.Dollar.ReplacePlaceholders(outer)
	if err != nil {
		return "", nil, err
	}
	return finalSQL, args, nil
}

func applyDateWindow(b sq.SelectBuilder, start, end *time.Time) sq.SelectBuilder {
	if start != nil {
		b = b.Where(sq.GtOrEq{TableTestcases + ".created_at": *start})
	}
	if end != nil {
		b = b.Where(sq.Lt{TableTestcases + ".created_at": *end})
	}
	return b
}

// ApplyGroupFilter reapplies the joins a grouping query's group_by clause
// would introduce, plus equality filters for the drill-down values: for a
// tag column, a nil value selects rows where the label alias's value is
// NULL, not "= NULL".
func ApplyGroupFilter(b sq.SelectBuilder, clause query.GroupByClause, gk query.GroupKey) (sq.SelectBuilder, error) {
	if len(clause.Tokens) != len(gk.Values) {
		return b, fmt.Errorf("sqlgen: group key has %d values, grouping clause has %d tokens", len(gk.Values), len(clause.Tokens))
	}

	for i, tok := range clause.Tokens {
		val := gk.Values[i]
		switch tok.Kind {
		case query.GroupBySessionID:
			b = b.Join(TableSessions + " ON " + TableTestcases + ".session_id = " + TableSessions + ".id")
			if val == nil {
				b = b.Where(TableSessions + ".id::text IS NULL")
			} else {
				b = b.Where(sq.Eq{TableSessions + ".id::text": *val})
			}
		case query.GroupByTag:
			la := labelAlias(i)
			b = b.Join(fmt.Sprintf("%s AS %s ON %s.session_id = %s.session_id AND %s.key = ?", TableLabels, la, TableTestcases, la, la), tok.Value)
			if val == nil {
				b = b.Where(la + ".value IS NULL")
			} else {
				b = b.Where(sq.Eq{la + ".value": *val})
			}
		default:
			return b, fmt.Errorf("sqlgen: unhandled group by token kind %v", tok.Kind)
		}
	}
	return b, nil
}
