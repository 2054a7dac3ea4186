package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightlane/qaharbor/internal/query"
)

func TestTestcaseList_MissingAuth(t *testing.T) {
	h := &TestcaseHandler{parser: query.NewQueryParser()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/testcases", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTestcaseGet_MissingAuth(t *testing.T) {
	h := &TestcaseHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/testcases/abc", nil)
	rr := httptest.NewRecorder()

	h.Get(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
