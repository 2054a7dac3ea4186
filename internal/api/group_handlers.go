package api

import (
	"net/http"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/executor"
	"github.com/brightlane/qaharbor/internal/query"
)

type GroupHandler struct {
	exec   *executor.Executor
	parser *query.QueryParser
}

func NewGroupHandler(exec *executor.Executor, parser *query.QueryParser) *GroupHandler {
	return &GroupHandler{exec: exec, parser: parser}
}

type validateQueryResponse struct {
	IsGrouping bool `json:"isGrouping"`
}

// ValidateQuery lets a client check whether a queryStr carries a
// group_by clause before committing to the /groups listing shape.
func (h *GroupHandler) ValidateQuery(w http.ResponseWriter, r *http.Request) {
	node, err := h.parser.Parse(r.URL.Query().Get("queryStr"))
	if err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid queryStr"))
		return
	}
	_, isGrouping := node.(query.QueryWithGroupBy)
	helpers.RespondJSON(w, http.StatusOK, validateQueryResponse{IsGrouping: isGrouping})
}

type groupRowResponse struct {
	Columns []*string `json:"columns"`
	Status  int       `json:"status"`
}

type groupListResponse struct {
	Items            []groupRowResponse     `json:"items"`
	Total            int64                  `json:"total"`
	Offset           uint64                 `json:"offset"`
	Limit            uint64                 `json:"limit"`
	Header           []string               `json:"header"`
	AggregatedStatus *domain.TestcaseStatus `json:"aggregatedStatus"`
}

// List runs a group_by query, returning one row per distinct group key
// with its worst testcase status.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.exec.ListGroups(r.Context(), executor.GroupListParams{
		UserID:     userID,
		Query:      node,
		Window:     executor.DateWindow{Start: start, End: end},
		Pagination: executor.Pagination{Offset: offset, Limit: limit},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]groupRowResponse, 0, len(result.Items))
	for _, row := range result.Items {
		items = append(items, groupRowResponse{Columns: row.Columns, Status: int(row.Status)})
	}
	helpers.RespondJSON(w, http.StatusOK, groupListResponse{
		Items:            items,
		Total:            result.Total,
		Offset:           result.Offset,
		Limit:            result.Limit,
		Header:           result.Header,
		AggregatedStatus: result.AggregatedStatus,
	})
}
