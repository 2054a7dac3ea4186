package query

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// GroupKey identifies one row of a grouped listing: a drill-down filter
// selecting exactly the testcases that produced that group. Values may be
// nil, meaning "the session carries a label with this key and no value".
type GroupKey struct {
	Keys   []string
	Values []*string
}

// EncodeGroupKey builds the wire form of a group identifier: a JSON
// 2-tuple of [keys, values], URL-escaped so it travels safely as a query
// parameter.
func EncodeGroupKey(keys []string, values []*string) (string, error) {
	if len(keys) != len(values) {
		return "", fmt.Errorf("group keys and values must have the same length")
	}
	raw, err := json.Marshal([2]any{keys, values})
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(raw)), nil
}

// DecodeGroupKey parses a group identifier previously produced by
// EncodeGroupKey (or by a client echoing one returned from a grouped
// listing response).
func DecodeGroupKey(encoded string) (GroupKey, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return GroupKey{}, fmt.Errorf("invalid group identifier encoding: %w", err)
	}

	var tuple []json.RawMessage
	if err := json.Unmarshal([]byte(decoded), &tuple); err != nil {
		return GroupKey{}, fmt.Errorf("invalid group identifier: %w", err)
	}
	if len(tuple) != 2 {
		return GroupKey{}, fmt.Errorf("group identifier must be a tuple/array with exactly 2 elements")
	}

	var keys []string
	if err := json.Unmarshal(tuple[0], &keys); err != nil {
		return GroupKey{}, fmt.Errorf("group keys must be an array of strings: %w", err)
	}
	var values []*string
	if err := json.Unmarshal(tuple[1], &values); err != nil {
		return GroupKey{}, fmt.Errorf("group values must be an array of strings or null: %w", err)
	}

	if len(keys) != len(values) {
		return GroupKey{}, fmt.Errorf("group keys and values must have the same length")
	}

	return GroupKey{Keys: keys, Values: values}, nil
}

// ExpectedGroupKeys returns the key labels a group-by clause produces, in
// order: "session_id" for a session_id token, `#"tag"` for a tag token.
// Drill-down group identifiers must name exactly these keys, in this
// order, for the listing endpoint to accept them.
func ExpectedGroupKeys(clause GroupByClause) []string {
	keys := make([]string, len(clause.Tokens))
	for i, tok := range clause.Tokens {
		switch tok.Kind {
		case GroupBySessionID:
			keys[i] = "session_id"
		case GroupByTag:
			keys[i] = fmt.Sprintf("#%q", tok.Value)
		}
	}
	return keys
}

// ValidateGroupKeyAgainstQuery checks that a decoded group identifier
// names exactly the keys the grouping query's group_by clause produces,
// in the same order.
func ValidateGroupKeyAgainstQuery(clause GroupByClause, gk GroupKey) error {
	expected := ExpectedGroupKeys(clause)
	if len(expected) != len(gk.Keys) {
		return fmt.Errorf("group keys %v do not match the grouping query keys %v", gk.Keys, expected)
	}
	for i := range expected {
		if expected[i] != gk.Keys[i] {
			return fmt.Errorf("group keys %v do not match the grouping query keys %v", gk.Keys, expected)
		}
	}
	return nil
}
