// Package query implements the testcase filter/group-by DSL: a lexer, a
// hand-written recursive-descent parser, and the typed AST the compiler
// (package sqlgen) consumes.
package query

import "github.com/google/uuid"

// Operator is the comparison carried by every simple predicate.
type Operator int

const (
	OpEQ Operator = iota
	OpNEQ
)

// LogicalOperator joins atoms inside a CompoundQuery. AND and OR carry
// equal precedence; there is no grouping syntax in the DSL.
type LogicalOperator int

const (
	LogicalAnd LogicalOperator = iota
	LogicalOr
)

// Node is implemented by every AST node kind. It is a closed set: the
// compiler's type switch has a default branch that panics, so adding a
// kind here without updating the compiler fails loudly instead of being
// silently ignored.
type Node interface {
	queryNode()
}

// EmptyQuery is produced by the empty or whitespace-only input string.
type EmptyQuery struct{}

func (EmptyQuery) queryNode() {}

// SessionQuery filters by exact session id.
type SessionQuery struct {
	SessionID uuid.UUID
	Op        Operator
}

func (SessionQuery) queryNode() {}

// IDQuery filters by testcase id.
type IDQuery struct {
	ID uuid.UUID
	Op Operator
}

func (IDQuery) queryNode() {}

// NameQuery filters by testcase name. The value must be non-empty.
type NameQuery struct {
	Name string
	Op   Operator
}

func (NameQuery) queryNode() {}

// ClassnameQuery filters by testcase classname; empty values are allowed.
type ClassnameQuery struct {
	Classname string
	Op        Operator
}

func (ClassnameQuery) queryNode() {}

// TestsuiteQuery filters by testsuite; empty values are allowed.
type TestsuiteQuery struct {
	Testsuite string
	Op        Operator
}

func (TestsuiteQuery) queryNode() {}

// FileQuery filters by file; empty values are allowed.
type FileQuery struct {
	File string
	Op   Operator
}

func (FileQuery) queryNode() {}

// StatusQuery filters by testcase status. Status is one of
// "pass"/"fail"/"error"/"skip", or empty.
type StatusQuery struct {
	Status string
	Op     Operator
}

func (StatusQuery) queryNode() {}

// TagQuery checks for the presence (EQ) or absence (NEQ) of a session-level
// tag, regardless of its value. Absence is session-scoped, not
// testcase-scoped.
type TagQuery struct {
	Tag string
	Op  Operator
}

func (TagQuery) queryNode() {}

// TagValueQuery filters by a session-level tag key/value pair.
type TagValueQuery struct {
	Tag   string
	Value string
	Op    Operator
}

func (TagValueQuery) queryNode() {}

// CompoundQuery folds strictly left-to-right: len(Operators) ==
// len(Queries)-1, and AND/OR are never nested by precedence, only by
// emission order.
type CompoundQuery struct {
	Queries   []Node
	Operators []LogicalOperator
}

func (CompoundQuery) queryNode() {}

// GroupByTokenKind distinguishes the two kinds of group-by column.
type GroupByTokenKind int

const (
	GroupBySessionID GroupByTokenKind = iota
	GroupByTag
)

// GroupByToken is one column of a group-by clause.
type GroupByToken struct {
	Kind  GroupByTokenKind
	Value string // tag name; empty for GroupBySessionID
}

// GroupByClause is an ordered, duplicate-free list of group-by tokens.
type GroupByClause struct {
	Tokens []GroupByToken
}

// QueryWithGroupBy pairs a main filter query with a group-by clause.
type QueryWithGroupBy struct {
	MainQuery Node
	GroupBy   GroupByClause
}

func (QueryWithGroupBy) queryNode() {}
