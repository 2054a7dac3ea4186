package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelList_MissingAuth(t *testing.T) {
	h := &LabelHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/labels", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLabelList_MissingSessionID(t *testing.T) {
	h := &LabelHandler{}
	ctx := authedContext()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/labels", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLabelList_InvalidSessionID(t *testing.T) {
	h := &LabelHandler{}
	ctx := authedContext()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/labels?session_id=not-a-uuid", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
