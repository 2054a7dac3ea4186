package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/query"
)

func strptr(s string) *string { return &s }

func TestGroupKey_EncodeDecodeRoundTrips(t *testing.T) {
	keys := []string{"session_id", `#"env"`}
	values := []*string{strptr("11111111-1111-1111-1111-111111111111"), strptr("prod")}

	encoded, err := query.EncodeGroupKey(keys, values)
	require.NoError(t, err)

	decoded, err := query.DecodeGroupKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, keys, decoded.Keys)
	require.Len(t, decoded.Values, 2)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", *decoded.Values[0])
	assert.Equal(t, "prod", *decoded.Values[1])
}

func TestGroupKey_DecodeAllowsNullValue(t *testing.T) {
	encoded, err := query.EncodeGroupKey([]string{`#"env"`}, []*string{nil})
	require.NoError(t, err)

	decoded, err := query.DecodeGroupKey(encoded)
	require.NoError(t, err)
	require.Len(t, decoded.Values, 1)
	assert.Nil(t, decoded.Values[0])
}

func TestGroupKey_EncodeRejectsMismatchedLengths(t *testing.T) {
	_, err := query.EncodeGroupKey([]string{"a", "b"}, []*string{strptr("x")})
	assert.Error(t, err)
}

func TestGroupKey_DecodeRejectsMalformedJSON(t *testing.T) {
	_, err := query.DecodeGroupKey("not%20json")
	assert.Error(t, err)
}

func TestGroupKey_DecodeRejectsWrongTupleArity(t *testing.T) {
	_, err := query.DecodeGroupKey(`%5B%5B%22a%22%5D%5D`) // [["a"]]
	assert.Error(t, err)
}

func TestExpectedGroupKeys_MatchesTokenOrder(t *testing.T) {
	clause := query.GroupByClause{Tokens: []query.GroupByToken{
		{Kind: query.GroupBySessionID},
		{Kind: query.GroupByTag, Value: "env"},
	}}
	assert.Equal(t, []string{"session_id", `#"env"`}, query.ExpectedGroupKeys(clause))
}

func TestValidateGroupKeyAgainstQuery_AcceptsExactMatch(t *testing.T) {
	clause := query.GroupByClause{Tokens: []query.GroupByToken{{Kind: query.GroupBySessionID}}}
	gk := query.GroupKey{Keys: []string{"session_id"}, Values: []*string{strptr("x")}}
	assert.NoError(t, query.ValidateGroupKeyAgainstQuery(clause, gk))
}

func TestValidateGroupKeyAgainstQuery_RejectsMismatch(t *testing.T) {
	clause := query.GroupByClause{Tokens: []query.GroupByToken{{Kind: query.GroupByTag, Value: "env"}}}
	gk := query.GroupKey{Keys: []string{"session_id"}, Values: []*string{strptr("x")}}
	assert.Error(t, query.ValidateGroupKeyAgainstQuery(clause, gk))
}

func TestValidateGroupKeyAgainstQuery_RejectsWrongLength(t *testing.T) {
	clause := query.GroupByClause{Tokens: []query.GroupByToken{
		{Kind: query.GroupBySessionID},
		{Kind: query.GroupByTag, Value: "env"},
	}}
	gk := query.GroupKey{Keys: []string{"session_id"}, Values: []*string{strptr("x")}}
	assert.Error(t, query.ValidateGroupKeyAgainstQuery(clause, gk))
}
