package sqlgen

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/brightlane/qaharbor/internal/query"
)

// CompileTestcaseListing builds the paginated testcase listing query for a
// non-grouping predicate: the same CTE + window-function pattern as
// CompileGrouping, but over raw filtered rows ordered by created_at DESC.
func CompileTestcaseListing(predicate query.Node, userID uuid.UUID, start, end *time.Time, offset, limit uint64) (string, []any, error) {
	return compileTestcaseListing(predicate, nil, query.GroupKey{}, userID, start, end, offset, limit)
}

// CompileTestcaseListingDrilldown builds the same listing, additionally
// reapplying the joins and equality filters a grouping query's group_by
// clause would introduce, so the result is exactly the testcases that
// produced the group identified by groupKey.
func CompileTestcaseListingDrilldown(predicate query.Node, groupBy query.GroupByClause, groupKey query.GroupKey, userID uuid.UUID, start, end *time.Time, offset, limit uint64) (string, []any, error) {
	clause := groupBy
	return compileTestcaseListing(predicate, &clause, groupKey, userID, start, end, offset, limit)
}

func compileTestcaseListing(predicate query.Node, groupBy *query.GroupByClause, groupKey query.GroupKey, userID uuid.UUID, start, end *time.Time, offset, limit uint64) (string, []any, error) {
	cond, err := CompilePredicate(predicate)
	if err != nil {
		return "", nil, err
	}

	b := sq.Select(TableTestcases + ".*").From(TableTestcases)
	if groupBy != nil {
		b, err = ApplyGroupFilter(b, *groupBy, groupKey)
		if err != nil {
			return "", nil, err
		}
	}
	b = b.Where(sq.Eq{TableTestcases + ".user_id": userID})
	if cond != nil {
		b = b.Where(cond)
	}
	b = applyDateWindow(b, start, end)
	b = b.OrderBy(TableTestcases + ".created_at DESC")

	innerSQL, innerArgs, err := b.ToSql()
	if err != nil {
		return "", nil, err
	}

	outer := fmt.Sprintf(
		"WITH cte AS (%s) SELECT cte.*, COUNT(1) OVER () AS total_count, MIN(cte.status) OVER () AS aggregated_status FROM cte LIMIT ? OFFSET ?",
		innerSQL,
	)
	args := append(innerArgs, limit, offset)

	finalSQL, err := sq.Dollar.ReplacePlaceholders(outer)
	if err != nil {
		return "", nil, err
	}
	return finalSQL, args, nil
}

// CompileTestcaseGet builds a single-row lookup scoped to its owner.
func CompileTestcaseGet(id, userID uuid.UUID) (string, []any, error) {
	sqlStr, args, err := sq.Select(TableTestcases + ".*").
		From(TableTestcases).
		Where(sq.Eq{TableTestcases + ".id": id, TableTestcases + ".user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	return sqlStr, args, err
}
