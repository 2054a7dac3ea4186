package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/query"
)

func TestExtractGroupBy_GroupingQuery(t *testing.T) {
	gq := query.QueryWithGroupBy{
		MainQuery: query.EmptyQuery{},
		GroupBy:   query.GroupByClause{Tokens: []query.GroupByToken{{Kind: query.GroupBySessionID}}},
	}

	clause, ok := extractGroupBy(gq)

	assert.True(t, ok)
	assert.Equal(t, []query.GroupByToken{{Kind: query.GroupBySessionID}}, clause.Tokens)
}

func TestExtractGroupBy_NonGroupingQuery(t *testing.T) {
	_, ok := extractGroupBy(query.EmptyQuery{})
	assert.False(t, ok)
}

func TestToStringPtr(t *testing.T) {
	assert.Nil(t, toStringPtr(nil))
	assert.Equal(t, "hi", *toStringPtr("hi"))
	assert.Equal(t, "hi", *toStringPtr([]byte("hi")))
	assert.Equal(t, "42", *toStringPtr(42))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(5), toInt64(int64(5)))
	assert.Equal(t, int64(5), toInt64(int32(5)))
	assert.Equal(t, int64(5), toInt64(5))
	assert.Equal(t, int64(0), toInt64("not a number"))
}

func TestToStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPass, toStatus(int32(domain.StatusPass)))
	assert.Equal(t, domain.StatusFail, toStatus(int64(domain.StatusFail)))
	assert.Equal(t, domain.StatusSkip, toStatus(int(domain.StatusSkip)))
	assert.Equal(t, domain.StatusError, toStatus("bogus"))
}

func TestToStatusPtr(t *testing.T) {
	status, ok := toStatusPtr(int32(domain.StatusPass))
	assert.True(t, ok)
	assert.Equal(t, domain.StatusPass, *status)

	_, ok = toStatusPtr(nil)
	assert.False(t, ok)
}
