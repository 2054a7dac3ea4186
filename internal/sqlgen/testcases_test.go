package sqlgen_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/query"
	"github.com/brightlane/qaharbor/internal/sqlgen"
)

func TestCompileTestcaseListing_PlainOrdersByCreatedAtDesc(t *testing.T) {
	userID := uuid.New()
	sqlStr, args, err := sqlgen.CompileTestcaseListing(query.EmptyQuery{}, userID, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "ORDER BY testcases.created_at DESC")
	assert.Contains(t, sqlStr, "WITH cte AS (")
	assert.Contains(t, sqlStr, "COUNT(1) OVER ()")
	assert.Contains(t, sqlStr, "MIN(cte.status) OVER () AS aggregated_status")
	assert.Contains(t, args, userID)
}

func TestCompileTestcaseListing_AppliesUserScoping(t *testing.T) {
	userID := uuid.New()
	_, args, err := sqlgen.CompileTestcaseListing(query.NameQuery{Name: "x", Op: query.OpEQ}, userID, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Contains(t, args, userID)
	assert.Contains(t, args, "x")
}

func TestCompileTestcaseGet_ScopesToOwner(t *testing.T) {
	id, userID := uuid.New(), uuid.New()
	sqlStr, args, err := sqlgen.CompileTestcaseGet(id, userID)
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "testcases.id")
	assert.Contains(t, sqlStr, "testcases.user_id")
	assert.ElementsMatch(t, []any{id, userID}, args)
}
