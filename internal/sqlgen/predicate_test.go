package sqlgen_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/query"
	"github.com/brightlane/qaharbor/internal/sqlgen"
)

func compile(t *testing.T, node query.Node) (string, []any) {
	t.Helper()
	cond, err := sqlgen.CompilePredicate(node)
	require.NoError(t, err)
	if cond == nil {
		return "", nil
	}
	sqlStr, args, err := cond.ToSql()
	require.NoError(t, err)
	return sqlStr, args
}

func TestCompilePredicate_EmptyQueryIsNilCondition(t *testing.T) {
	cond, err := sqlgen.CompilePredicate(query.EmptyQuery{})
	require.NoError(t, err)
	assert.Nil(t, cond)
}

func TestCompilePredicate_SessionQuery(t *testing.T) {
	id := uuid.New()
	sqlStr, args := compile(t, query.SessionQuery{SessionID: id, Op: query.OpEQ})
	assert.Contains(t, sqlStr, "testcases.session_id")
	assert.Equal(t, []any{id}, args)
}

func TestCompilePredicate_SessionQueryNotEquals(t *testing.T) {
	id := uuid.New()
	sqlStr, _ := compile(t, query.SessionQuery{SessionID: id, Op: query.OpNEQ})
	assert.Contains(t, sqlStr, "<>")
}

func TestCompilePredicate_TagPresence(t *testing.T) {
	sqlStr, args := compile(t, query.TagQuery{Tag: "flaky", Op: query.OpEQ})
	assert.Contains(t, sqlStr, "IN (SELECT session_id FROM labels WHERE key = ?)")
	assert.Equal(t, []any{"flaky"}, args)
}

func TestCompilePredicate_TagAbsence(t *testing.T) {
	sqlStr, _ := compile(t, query.TagQuery{Tag: "flaky", Op: query.OpNEQ})
	assert.Contains(t, sqlStr, "NOT IN")
}

func TestCompilePredicate_TagValue(t *testing.T) {
	sqlStr, args := compile(t, query.TagValueQuery{Tag: "env", Value: "prod", Op: query.OpEQ})
	assert.Contains(t, sqlStr, "key = ? AND value = ?")
	assert.Equal(t, []any{"env", "prod"}, args)
}

func TestCompilePredicate_StatusValid(t *testing.T) {
	sqlStr, args := compile(t, query.StatusQuery{Status: "fail", Op: query.OpEQ})
	assert.Contains(t, sqlStr, "testcases.status")
	assert.Equal(t, []any{1}, args)
}

func TestCompilePredicate_StatusEmptyEQIsVacuouslyFalse(t *testing.T) {
	sqlStr, _ := compile(t, query.StatusQuery{Status: "", Op: query.OpEQ})
	assert.Equal(t, "1 = 0", sqlStr)
}

func TestCompilePredicate_StatusEmptyNEQIsVacuouslyTrue(t *testing.T) {
	sqlStr, _ := compile(t, query.StatusQuery{Status: "", Op: query.OpNEQ})
	assert.Equal(t, "1 = 1", sqlStr)
}

func TestCompilePredicate_StatusInvalidIsError(t *testing.T) {
	_, err := sqlgen.CompilePredicate(query.StatusQuery{Status: "bogus", Op: query.OpEQ})
	assert.Error(t, err)
}

func TestCompilePredicate_CompoundFoldsLeftToRightInEmissionOrder(t *testing.T) {
	node := query.CompoundQuery{
		Queries: []query.Node{
			query.NameQuery{Name: "a", Op: query.OpEQ},
			query.ClassnameQuery{Classname: "b", Op: query.OpEQ},
			query.FileQuery{File: "c", Op: query.OpEQ},
		},
		Operators: []query.LogicalOperator{query.LogicalAnd, query.LogicalOr},
	}
	sqlStr, args := compile(t, node)
	// strict left-associative: (((name) AND (classname)) OR (file))
	assert.Regexp(t, `^\(\(.*AND.*\) OR .*\)$`, sqlStr)
	assert.Equal(t, []any{"a", "b", "c"}, args)
}

func TestCompilePredicate_PanicsOnUnknownNodeKind(t *testing.T) {
	type rogueNode struct{ query.Node }
	assert.Panics(t, func() {
		_, _ = sqlgen.CompilePredicate(rogueNode{})
	})
}
