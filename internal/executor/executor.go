// Package executor runs compiled queries against the connection pool,
// attaching user scoping, date windowing and pagination, and computes the
// aggregated status roll-up.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/query"
	"github.com/brightlane/qaharbor/internal/sqlgen"
)

// DateWindow is the optional [Start, End) created_at interval.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

// Pagination is an offset/limit page request; cursors are a non-goal.
type Pagination struct {
	Offset uint64
	Limit  uint64
}

// Executor runs compiled testcase and group queries.
type Executor struct {
	pool *pgxpool.Pool
}

// New builds an Executor over a connection pool.
func New(pool *pgxpool.Pool) *Executor {
	return &Executor{pool: pool}
}

// TestcaseListParams describes one /testcases request.
type TestcaseListParams struct {
	UserID     uuid.UUID
	Query      query.Node
	Window     DateWindow
	Pagination Pagination
	// GroupParam is the raw, still-encoded "group" query parameter, nil if
	// absent from the request.
	GroupParam *string
}

// TestcaseListResult is the /testcases response envelope.
type TestcaseListResult struct {
	Items            []domain.Testcase
	Total            int64
	Offset           uint64
	Limit            uint64
	AggregatedStatus *domain.TestcaseStatus
}

// ListTestcases executes the non-grouping or drill-down testcase listing,
// depending on whether Query is a QueryWithGroupBy and whether GroupParam
// was supplied.
func (e *Executor) ListTestcases(ctx context.Context, p TestcaseListParams) (TestcaseListResult, error) {
	groupBy, isGrouping := extractGroupBy(p.Query)
	hasGroupParam := p.GroupParam != nil && strings.TrimSpace(*p.GroupParam) != ""

	switch {
	case isGrouping && !hasGroupParam:
		return TestcaseListResult{}, apierr.Validation("group parameter is required when using a grouping query")
	case !isGrouping && hasGroupParam:
		return TestcaseListResult{}, apierr.Validation("group parameter can only be used with grouping queries")
	}

	var (
		sqlStr string
		args   []any
		err    error
	)

	if isGrouping {
		gk, decodeErr := query.DecodeGroupKey(*p.GroupParam)
		if decodeErr != nil {
			return TestcaseListResult{}, apierr.WrapValidation(decodeErr, "invalid group identifier")
		}
		if validateErr := query.ValidateGroupKeyAgainstQuery(groupBy, gk); validateErr != nil {
			return TestcaseListResult{}, apierr.WrapValidation(validateErr, "invalid group identifier")
		}
		mainQuery := p.Query.(query.QueryWithGroupBy).MainQuery
		sqlStr, args, err = sqlgen.CompileTestcaseListingDrilldown(
			mainQuery, groupBy, gk, p.UserID, p.Window.Start, p.Window.End, p.Pagination.Offset, p.Pagination.Limit,
		)
	} else {
		sqlStr, args, err = sqlgen.CompileTestcaseListing(
			p.Query, p.UserID, p.Window.Start, p.Window.End, p.Pagination.Offset, p.Pagination.Limit,
		)
	}
	if err != nil {
		return TestcaseListResult{}, err
	}

	rows, err := e.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return TestcaseListResult{}, fmt.Errorf("executor: list testcases: %w", err)
	}
	defer rows.Close()

	result := TestcaseListResult{Offset: p.Pagination.Offset, Limit: p.Pagination.Limit}
	for rows.Next() {
		var tc domain.Testcase
		var aggregated *int32
		if scanErr := rows.Scan(
			&tc.ID, &tc.Status, &tc.Name, &tc.Classname, &tc.File, &tc.Testsuite,
			&tc.Output, &tc.Baggage, &tc.SessionID, &tc.UserID, &tc.CreatedAt, &tc.UpdatedAt,
			&result.Total, &aggregated,
		); scanErr != nil {
			return TestcaseListResult{}, fmt.Errorf("executor: scan testcase row: %w", scanErr)
		}
		if aggregated != nil {
			status := domain.TestcaseStatus(*aggregated)
			result.AggregatedStatus = &status
		}
		result.Items = append(result.Items, tc)
	}
	if err := rows.Err(); err != nil {
		return TestcaseListResult{}, fmt.Errorf("executor: list testcases: %w", err)
	}
	return result, nil
}

// GetTestcase looks up a single testcase scoped to its owner.
func (e *Executor) GetTestcase(ctx context.Context, id, userID uuid.UUID) (domain.Testcase, error) {
	sqlStr, args, err := sqlgen.CompileTestcaseGet(id, userID)
	if err != nil {
		return domain.Testcase{}, err
	}

	var tc domain.Testcase
	row := e.pool.QueryRow(ctx, sqlStr, args...)
	if err := row.Scan(
		&tc.ID, &tc.Status, &tc.Name, &tc.Classname, &tc.File, &tc.Testsuite,
		&tc.Output, &tc.Baggage, &tc.SessionID, &tc.UserID, &tc.CreatedAt, &tc.UpdatedAt,
	); err != nil {
		return domain.Testcase{}, fmt.Errorf("executor: get testcase: %w", err)
	}
	return tc, nil
}

// GroupListParams describes one /groups request.
type GroupListParams struct {
	UserID     uuid.UUID
	Query      query.Node
	Window     DateWindow
	Pagination Pagination
}

// GroupRow is one row of a grouped listing: the drill-down columns, in
// group-by token order, and the group's worst testcase status.
type GroupRow struct {
	Columns []*string
	Status  domain.TestcaseStatus
}

// GroupListResult is the /groups response envelope.
type GroupListResult struct {
	Items            []GroupRow
	Total            int64
	Offset           uint64
	Limit            uint64
	Header           []string
	AggregatedStatus *domain.TestcaseStatus
}

// ListGroups executes a grouping query. If Query is not a QueryWithGroupBy,
// it returns the empty envelope rather than erroring.
func (e *Executor) ListGroups(ctx context.Context, p GroupListParams) (GroupListResult, error) {
	gq, ok := p.Query.(query.QueryWithGroupBy)
	if !ok {
		return GroupListResult{Items: []GroupRow{}, Offset: p.Pagination.Offset, Limit: p.Pagination.Limit}, nil
	}

	sqlStr, args, err := sqlgen.CompileGrouping(
		gq, p.UserID, p.Window.Start, p.Window.End, p.Pagination.Offset, p.Pagination.Limit,
	)
	if err != nil {
		return GroupListResult{}, err
	}

	rows, err := e.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return GroupListResult{}, fmt.Errorf("executor: list groups: %w", err)
	}
	defer rows.Close()

	ncols := len(gq.GroupBy.Tokens)
	result := GroupListResult{
		Offset: p.Pagination.Offset,
		Limit:  p.Pagination.Limit,
		Header: query.ExpectedGroupKeys(gq.GroupBy),
		Items:  []GroupRow{},
	}

	for rows.Next() {
		vals, valErr := rows.Values()
		if valErr != nil {
			return GroupListResult{}, fmt.Errorf("executor: read group row: %w", valErr)
		}
		if len(vals) != ncols+3 {
			return GroupListResult{}, fmt.Errorf("executor: unexpected group row shape: got %d columns, want %d", len(vals), ncols+3)
		}

		columns := make([]*string, ncols)
		for i := 0; i < ncols; i++ {
			columns[i] = toStringPtr(vals[i])
		}
		result.Items = append(result.Items, GroupRow{
			Columns: columns,
			Status:  toStatus(vals[ncols]),
		})
		result.Total = toInt64(vals[ncols+1])
		if status, ok := toStatusPtr(vals[ncols+2]); ok {
			result.AggregatedStatus = status
		}
	}
	if err := rows.Err(); err != nil {
		return GroupListResult{}, fmt.Errorf("executor: list groups: %w", err)
	}
	return result, nil
}

func extractGroupBy(node query.Node) (query.GroupByClause, bool) {
	if gq, ok := node.(query.QueryWithGroupBy); ok {
		return gq.GroupBy, true
	}
	return query.GroupByClause{}, false
}

func toStringPtr(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	case []byte:
		s := string(t)
		return &s
	default:
		s := fmt.Sprint(t)
		return &s
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	default:
		return 0
	}
}

func toStatus(v any) domain.TestcaseStatus {
	switch t := v.(type) {
	case int16:
		return domain.TestcaseStatus(t)
	case int32:
		return domain.TestcaseStatus(t)
	case int64:
		return domain.TestcaseStatus(t)
	case int:
		return domain.TestcaseStatus(t)
	default:
		return domain.StatusError
	}
}

func toStatusPtr(v any) (*domain.TestcaseStatus, bool) {
	if v == nil {
		return nil, false
	}
	status := toStatus(v)
	return &status, true
}
