package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QueryParseError is the single error type the parser returns; it never
// attempts recovery.
type QueryParseError struct {
	Input string
	cause error
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("failed to parse query %q: %v", e.Input, e.cause)
}

func (e *QueryParseError) Unwrap() error { return e.cause }

var validStatuses = map[string]bool{
	"pass": true, "fail": true, "error": true, "skip": true,
}

// QueryParser parses DSL strings into Node trees. It holds no mutable
// state between calls, so a single instance may be shared and called
// concurrently.
type QueryParser struct{}

// NewQueryParser builds a parser. It is stateless.
func NewQueryParser() *QueryParser {
	return &QueryParser{}
}

// Parse parses the DSL string queryStr into a Node. Whitespace-only input
// (including "") always yields EmptyQuery.
func (qp *QueryParser) Parse(queryStr string) (Node, error) {
	trimmed := strings.TrimSpace(queryStr)
	if trimmed == "" {
		return EmptyQuery{}, nil
	}

	p := &parser{lex: newLexer(trimmed)}
	if err := p.advance(); err != nil {
		return nil, &QueryParseError{Input: queryStr, cause: err}
	}

	node, err := p.parseQuery()
	if err != nil {
		return nil, &QueryParseError{Input: queryStr, cause: err}
	}
	return node, nil
}

type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) parseQuery() (Node, error) {
	main, err := p.parseMainQuery()
	if err != nil {
		return nil, err
	}

	groupBy, hasGroupBy, err := p.parseOptionalGroupBy()
	if err != nil {
		return nil, err
	}

	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("unexpected trailing input at position %d", p.cur.pos)
	}

	if hasGroupBy {
		return QueryWithGroupBy{MainQuery: main, GroupBy: groupBy}, nil
	}
	return main, nil
}

func (p *parser) parseMainQuery() (Node, error) {
	if p.cur.kind == tokEOF {
		return EmptyQuery{}, nil
	}
	if p.cur.kind == tokIdent && keywordEquals(p.cur.text, "group_by") {
		return EmptyQuery{}, nil
	}
	return p.parseCompoundQuery()
}

func (p *parser) parseCompoundQuery() (Node, error) {
	first, err := p.parseAtomicQuery()
	if err != nil {
		return nil, err
	}

	queries := []Node{first}
	var operators []LogicalOperator

	for {
		op, ok := p.tryParseLogicalOp()
		if !ok {
			break
		}
		next, err := p.parseAtomicQuery()
		if err != nil {
			return nil, err
		}
		queries = append(queries, next)
		operators = append(operators, op)
	}

	if len(queries) == 1 {
		return queries[0], nil
	}
	return CompoundQuery{Queries: queries, Operators: operators}, nil
}

func (p *parser) tryParseLogicalOp() (LogicalOperator, bool) {
	if p.cur.kind != tokIdent {
		return 0, false
	}
	switch {
	case keywordEquals(p.cur.text, "and"):
		_ = p.advance()
		return LogicalAnd, true
	case keywordEquals(p.cur.text, "or"):
		_ = p.advance()
		return LogicalOr, true
	default:
		return 0, false
	}
}

func (p *parser) parseAtomicQuery() (Node, error) {
	switch p.cur.kind {
	case tokIdent:
		switch {
		case keywordEquals(p.cur.text, "session_id"):
			return p.parseSessionQuery()
		case keywordEquals(p.cur.text, "id"):
			return p.parseIDQuery()
		case keywordEquals(p.cur.text, "name"):
			return p.parseNameQuery()
		case keywordEquals(p.cur.text, "classname"):
			return p.parseClassnameQuery()
		case keywordEquals(p.cur.text, "testsuite"):
			return p.parseTestsuiteQuery()
		case keywordEquals(p.cur.text, "file"):
			return p.parseFileQuery()
		case keywordEquals(p.cur.text, "status"):
			return p.parseStatusQuery()
		default:
			return nil, fmt.Errorf("unknown keyword %q at position %d", p.cur.text, p.cur.pos)
		}
	case tokHash:
		return p.parseTagQuery()
	case tokBang:
		return p.parseNegatedTagQuery()
	default:
		return nil, fmt.Errorf("unexpected token at position %d", p.cur.pos)
	}
}

func (p *parser) parseCmp() (Operator, error) {
	switch p.cur.kind {
	case tokEQ:
		_ = p.advance()
		return OpEQ, nil
	case tokNEQ:
		_ = p.advance()
		return OpNEQ, nil
	default:
		return 0, fmt.Errorf("expected '=' or '!=' at position %d", p.cur.pos)
	}
}

func (p *parser) expectString() (string, error) {
	if p.cur.kind != tokString {
		return "", fmt.Errorf("expected quoted string at position %d", p.cur.pos)
	}
	text := p.cur.text
	if err := p.advance(); err != nil {
		return "", err
	}
	return text, nil
}

func (p *parser) parseSessionQuery() (Node, error) {
	_ = p.advance() // "session_id"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	raw, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("session_id cannot be empty")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format for session_id: %s", raw)
	}
	return SessionQuery{SessionID: id, Op: op}, nil
}

func (p *parser) parseIDQuery() (Node, error) {
	_ = p.advance() // "id"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	raw, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format for id: %s", raw)
	}
	return IDQuery{ID: id, Op: op}, nil
}

func (p *parser) parseNameQuery() (Node, error) {
	_ = p.advance() // "name"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	value, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, fmt.Errorf("name must be non-empty")
	}
	return NameQuery{Name: value, Op: op}, nil
}

func (p *parser) parseClassnameQuery() (Node, error) {
	_ = p.advance() // "classname"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	value, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return ClassnameQuery{Classname: value, Op: op}, nil
}

func (p *parser) parseTestsuiteQuery() (Node, error) {
	_ = p.advance() // "testsuite"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	value, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return TestsuiteQuery{Testsuite: value, Op: op}, nil
}

func (p *parser) parseFileQuery() (Node, error) {
	_ = p.advance() // "file"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	value, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return FileQuery{File: value, Op: op}, nil
}

func (p *parser) parseStatusQuery() (Node, error) {
	_ = p.advance() // "status"
	op, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	value, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if value != "" && !validStatuses[value] {
		return nil, fmt.Errorf("invalid status %q. Must be one of: pass, fail, error, skip", value)
	}
	return StatusQuery{Status: value, Op: op}, nil
}

func (p *parser) parseTagQuery() (Node, error) {
	_ = p.advance() // "#"
	tag, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, fmt.Errorf("tag must be non-empty")
	}

	if p.cur.kind == tokEQ || p.cur.kind == tokNEQ {
		op, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		value, err := p.expectString()
		if err != nil {
			return nil, err
		}
		return TagValueQuery{Tag: tag, Value: value, Op: op}, nil
	}

	return TagQuery{Tag: tag, Op: OpEQ}, nil
}

func (p *parser) parseNegatedTagQuery() (Node, error) {
	_ = p.advance() // "!"
	if p.cur.kind != tokHash {
		return nil, fmt.Errorf("expected '#' after '!' at position %d", p.cur.pos)
	}
	_ = p.advance() // "#"
	tag, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, fmt.Errorf("tag must be non-empty")
	}
	return TagQuery{Tag: tag, Op: OpNEQ}, nil
}

func (p *parser) parseOptionalGroupBy() (GroupByClause, bool, error) {
	if p.cur.kind != tokIdent || !keywordEquals(p.cur.text, "group_by") {
		return GroupByClause{}, false, nil
	}
	_ = p.advance() // "group_by"

	if p.cur.kind != tokLParen {
		return GroupByClause{}, false, fmt.Errorf("expected '(' after group_by at position %d", p.cur.pos)
	}
	_ = p.advance()

	var tokens []GroupByToken
	for {
		tok, err := p.parseGroupByToken()
		if err != nil {
			return GroupByClause{}, false, err
		}
		tokens = append(tokens, tok)

		if p.cur.kind == tokComma {
			_ = p.advance()
			continue
		}
		break
	}

	if p.cur.kind != tokRParen {
		return GroupByClause{}, false, fmt.Errorf("expected ')' at position %d", p.cur.pos)
	}
	_ = p.advance()

	if len(tokens) == 0 {
		return GroupByClause{}, false, fmt.Errorf("group by clause must have at least one token")
	}

	seen := make(map[GroupByToken]bool, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			return GroupByClause{}, false, fmt.Errorf("duplicate group_by token: %+v", t)
		}
		seen[t] = true
	}

	return GroupByClause{Tokens: tokens}, true, nil
}

func (p *parser) parseGroupByToken() (GroupByToken, error) {
	if p.cur.kind == tokIdent && keywordEquals(p.cur.text, "session_id") {
		_ = p.advance()
		return GroupByToken{Kind: GroupBySessionID}, nil
	}
	if p.cur.kind == tokHash {
		_ = p.advance()
		tag, err := p.expectString()
		if err != nil {
			return GroupByToken{}, err
		}
		if tag == "" {
			return GroupByToken{}, fmt.Errorf("TAG tokens must have a non-empty value")
		}
		return GroupByToken{Kind: GroupByTag, Value: tag}, nil
	}
	return GroupByToken{}, fmt.Errorf("expected group by token at position %d", p.cur.pos)
}
