package query_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/query"
)

func mustParse(t *testing.T, input string) query.Node {
	t.Helper()
	node, err := query.NewQueryParser().Parse(input)
	require.NoError(t, err, "input: %s", input)
	return node
}

func TestParse_EmptyAndWhitespace(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		node := mustParse(t, input)
		assert.Equal(t, query.EmptyQuery{}, node)
	}
}

func TestParse_SingleAtomCollapsesToNodeNotCompound(t *testing.T) {
	id := uuid.New()
	node := mustParse(t, `session_id = "`+id.String()+`"`)
	sq, ok := node.(query.SessionQuery)
	require.True(t, ok, "expected SessionQuery, got %T", node)
	assert.Equal(t, id, sq.SessionID)
	assert.Equal(t, query.OpEQ, sq.Op)
}

func TestParse_SessionIDRejectsInvalidUUID(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`session_id = "not-a-uuid"`)
	assert.Error(t, err)
}

func TestParse_SessionIDRejectsEmptyValue(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`session_id = ""`)
	assert.Error(t, err)
}

func TestParse_NameRejectsEmptyValue(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`name = ""`)
	assert.Error(t, err)
}

func TestParse_ClassnameAllowsEmptyValue(t *testing.T) {
	node := mustParse(t, `classname = ""`)
	cq, ok := node.(query.ClassnameQuery)
	require.True(t, ok)
	assert.Equal(t, "", cq.Classname)
}

func TestParse_StatusValidatesEnum(t *testing.T) {
	for _, s := range []string{"pass", "fail", "error", "skip"} {
		node := mustParse(t, `status = "`+s+`"`)
		sq, ok := node.(query.StatusQuery)
		require.True(t, ok)
		assert.Equal(t, s, sq.Status)
	}

	_, err := query.NewQueryParser().Parse(`status = "bogus"`)
	assert.Error(t, err)
}

func TestParse_StatusAllowsEmptyValue(t *testing.T) {
	node := mustParse(t, `status = ""`)
	sq, ok := node.(query.StatusQuery)
	require.True(t, ok)
	assert.Equal(t, "", sq.Status)
}

func TestParse_TagPresence(t *testing.T) {
	node := mustParse(t, `#"flaky"`)
	tq, ok := node.(query.TagQuery)
	require.True(t, ok)
	assert.Equal(t, "flaky", tq.Tag)
	assert.Equal(t, query.OpEQ, tq.Op)
}

func TestParse_TagAbsence(t *testing.T) {
	node := mustParse(t, `!#"flaky"`)
	tq, ok := node.(query.TagQuery)
	require.True(t, ok)
	assert.Equal(t, "flaky", tq.Tag)
	assert.Equal(t, query.OpNEQ, tq.Op)
}

func TestParse_TagValue(t *testing.T) {
	node := mustParse(t, `#"env"="prod"`)
	tvq, ok := node.(query.TagValueQuery)
	require.True(t, ok)
	assert.Equal(t, "env", tvq.Tag)
	assert.Equal(t, "prod", tvq.Value)
	assert.Equal(t, query.OpEQ, tvq.Op)
}

func TestParse_TagValueNotEquals(t *testing.T) {
	node := mustParse(t, `#"env"!="prod"`)
	tvq, ok := node.(query.TagValueQuery)
	require.True(t, ok)
	assert.Equal(t, query.OpNEQ, tvq.Op)
}

func TestParse_TagRejectsEmptyKey(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`#""`)
	assert.Error(t, err)
}

func TestParse_CompoundFoldsLeftToRightInEmissionOrder(t *testing.T) {
	node := mustParse(t, `name = "a" and classname = "b" or file = "c"`)
	cq, ok := node.(query.CompoundQuery)
	require.True(t, ok)
	require.Len(t, cq.Queries, 3)
	require.Len(t, cq.Operators, 2)
	assert.Equal(t, query.LogicalAnd, cq.Operators[0])
	assert.Equal(t, query.LogicalOr, cq.Operators[1])

	_, isName := cq.Queries[0].(query.NameQuery)
	_, isClassname := cq.Queries[1].(query.ClassnameQuery)
	_, isFile := cq.Queries[2].(query.FileQuery)
	assert.True(t, isName)
	assert.True(t, isClassname)
	assert.True(t, isFile)
}

func TestParse_LogicalOperatorsAreCaseInsensitive(t *testing.T) {
	node := mustParse(t, `name = "a" AND classname = "b" Or file = "c"`)
	cq, ok := node.(query.CompoundQuery)
	require.True(t, ok)
	assert.Equal(t, []query.LogicalOperator{query.LogicalAnd, query.LogicalOr}, cq.Operators)
}

func TestParse_KeywordsAreCaseInsensitive(t *testing.T) {
	node := mustParse(t, `NAME = "a"`)
	_, ok := node.(query.NameQuery)
	assert.True(t, ok)
}

func TestParse_WhitespaceAroundOperatorsIsOptional(t *testing.T) {
	node := mustParse(t, `name="a"`)
	nq, ok := node.(query.NameQuery)
	require.True(t, ok)
	assert.Equal(t, "a", nq.Name)
}

func TestParse_GroupBySessionID(t *testing.T) {
	node := mustParse(t, `group_by(session_id)`)
	qg, ok := node.(query.QueryWithGroupBy)
	require.True(t, ok)
	assert.Equal(t, query.EmptyQuery{}, qg.MainQuery)
	require.Len(t, qg.GroupBy.Tokens, 1)
	assert.Equal(t, query.GroupBySessionID, qg.GroupBy.Tokens[0].Kind)
}

func TestParse_GroupByWithFilterAndMultipleTokens(t *testing.T) {
	node := mustParse(t, `status = "fail" group_by(session_id, #"env")`)
	qg, ok := node.(query.QueryWithGroupBy)
	require.True(t, ok)
	_, isStatus := qg.MainQuery.(query.StatusQuery)
	assert.True(t, isStatus)
	require.Len(t, qg.GroupBy.Tokens, 2)
	assert.Equal(t, query.GroupBySessionID, qg.GroupBy.Tokens[0].Kind)
	assert.Equal(t, query.GroupByTag, qg.GroupBy.Tokens[1].Kind)
	assert.Equal(t, "env", qg.GroupBy.Tokens[1].Value)
}

func TestParse_GroupByRejectsDuplicateTokens(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`group_by(#"env", #"env")`)
	assert.Error(t, err)
}

func TestParse_GroupByRejectsEmptyTagValue(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`group_by(#"")`)
	assert.Error(t, err)
}

func TestParse_UnknownKeywordIsError(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`bogus = "x"`)
	assert.Error(t, err)
}

func TestParse_TrailingGarbageIsError(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`name = "a" )`)
	assert.Error(t, err)
}

func TestParse_ErrorIsQueryParseError(t *testing.T) {
	_, err := query.NewQueryParser().Parse(`bogus = "x"`)
	require.Error(t, err)
	var parseErr *query.QueryParseError
	assert.ErrorAs(t, err, &parseErr)
}
