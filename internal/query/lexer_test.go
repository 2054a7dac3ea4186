package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, input string) []token {
	t.Helper()
	l := newLexer(input)
	var tokens []token
	for {
		tok, err := l.next()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			return tokens
		}
	}
}

func TestLexer_Symbols(t *testing.T) {
	tokens := lexAll(t, `= != # ! ( ) ,`)
	kinds := make([]tokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.kind
	}
	assert.Equal(t, []tokenKind{tokEQ, tokNEQ, tokHash, tokBang, tokLParen, tokRParen, tokComma, tokEOF}, kinds)
}

func TestLexer_QuotedString(t *testing.T) {
	tokens := lexAll(t, `"hello world"`)
	require.Len(t, tokens, 2)
	assert.Equal(t, tokString, tokens[0].kind)
	assert.Equal(t, "hello world", tokens[0].text)
}

func TestLexer_UnterminatedStringIsError(t *testing.T) {
	l := newLexer(`"unterminated`)
	_, err := l.next()
	assert.Error(t, err)
}

func TestLexer_Identifier(t *testing.T) {
	tokens := lexAll(t, `session_id`)
	require.Len(t, tokens, 2)
	assert.Equal(t, tokIdent, tokens[0].kind)
	assert.Equal(t, "session_id", tokens[0].text)
}

func TestLexer_WhitespaceIsSkipped(t *testing.T) {
	tokens := lexAll(t, "  \t\n name  ")
	require.Len(t, tokens, 2)
	assert.Equal(t, tokIdent, tokens[0].kind)
}

func TestLexer_UnexpectedCharacterIsError(t *testing.T) {
	l := newLexer(`$`)
	_, err := l.next()
	assert.Error(t, err)
}

func TestKeywordEquals_CaseInsensitive(t *testing.T) {
	assert.True(t, keywordEquals("AND", "and"))
	assert.True(t, keywordEquals("And", "and"))
	assert.False(t, keywordEquals("andy", "and"))
}
