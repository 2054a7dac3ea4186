package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/executor"
	"github.com/brightlane/qaharbor/internal/query"
)

type TestcaseHandler struct {
	exec   *executor.Executor
	parser *query.QueryParser
}

func NewTestcaseHandler(exec *executor.Executor, parser *query.QueryParser) *TestcaseHandler {
	return &TestcaseHandler{exec: exec, parser: parser}
}

type testcaseResponse struct {
	ID        string          `json:"id"`
	Status    int             `json:"status"`
	Name      string          `json:"name"`
	Classname *string         `json:"classname,omitempty"`
	File      *string         `json:"file,omitempty"`
	Testsuite *string         `json:"testsuite,omitempty"`
	Output    *string         `json:"output,omitempty"`
	Baggage   json.RawMessage `json:"baggage,omitempty"`
	SessionID string          `json:"sessionId"`
	CreatedAt string          `json:"createdAt"`
}

func toTestcaseResponse(tc domain.Testcase) testcaseResponse {
	return testcaseResponse{
		ID:        tc.ID.String(),
		Status:    int(tc.Status),
		Name:      tc.Name,
		Classname: tc.Classname,
		File:      tc.File,
		Testsuite: tc.Testsuite,
		Output:    tc.Output,
		Baggage:   json.RawMessage(tc.Baggage),
		SessionID: tc.SessionID.String(),
		CreatedAt: tc.CreatedAt.Format(timeLayout),
	}
}

type testcaseListResponse struct {
	Items            []testcaseResponse    `json:"items"`
	Total            int64                 `json:"total"`
	Offset           uint64                `json:"offset"`
	Limit            uint64                `json:"limit"`
	AggregatedStatus *domain.TestcaseStatus `json:"aggregatedStatus"`
}

// List runs the query DSL against the caller's testcases, with optional
// date windowing, pagination, and group drill-down.
func (h *TestcaseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	node, err := h.parser.Parse(r.URL.Query().Get("queryStr"))
	if err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid queryStr"))
		return
	}

	start, end, err := parseDateWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, limit := paginationParams(r)

	var groupParam *string
	if raw := r.URL.Query().Get("group"); raw != "" {
		groupParam = &raw
	}

	result, err := h.exec.ListTestcases(r.Context(), executor.TestcaseListParams{
		UserID:     userID,
		Query:      node,
		Window:     executor.DateWindow{Start: start, End: end},
		Pagination: executor.Pagination{Offset: offset, Limit: limit},
		GroupParam: groupParam,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]testcaseResponse, 0, len(result.Items))
	for _, tc := range result.Items {
		items = append(items, toTestcaseResponse(tc))
	}
	helpers.RespondJSON(w, http.StatusOK, testcaseListResponse{
		Items:            items,
		Total:            result.Total,
		Offset:           result.Offset,
		Limit:            result.Limit,
		AggregatedStatus: result.AggregatedStatus,
	})
}

// Get returns one testcase owned by the caller.
func (h *TestcaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	tc, err := h.exec.GetTestcase(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, apierr.NotFound("testcase not found"))
			return
		}
		writeError(w, err)
		return
	}
	helpers.RespondJSON(w, http.StatusOK, toTestcaseResponse(tc))
}
