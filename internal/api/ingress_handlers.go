package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/storage"
)

type IngressHandler struct {
	sessions  *storage.SessionRepository
	labels    *storage.LabelRepository
	testcases *storage.TestcaseRepository
}

func NewIngressHandler(sessions *storage.SessionRepository, labels *storage.LabelRepository, testcases *storage.TestcaseRepository) *IngressHandler {
	return &IngressHandler{sessions: sessions, labels: labels, testcases: testcases}
}

type ingressLabelRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value,omitempty"`
}

type createSessionRequest struct {
	ID          *string               `json:"id,omitempty"`
	Description *string               `json:"description,omitempty"`
	Baggage     json.RawMessage       `json:"baggage,omitempty"`
	Labels      []ingressLabelRequest `json:"labels,omitempty"`
}

// CreateSession ingests one session and its labels. The two are written
// as separate statements; see storage.LabelRepository's doc comment for
// why that relaxation is accepted.
func (h *IngressHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	var req createSessionRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid request body"))
		return
	}

	sessionID := uuid.New()
	if req.ID != nil {
		parsed, err := uuid.Parse(*req.ID)
		if err != nil {
			writeError(w, apierr.WrapValidation(err, "invalid session id"))
			return
		}
		sessionID = parsed
	}

	session := domain.Session{
		ID:          sessionID,
		Description: req.Description,
		Baggage:     []byte(req.Baggage),
		UserID:      userID,
	}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		writeError(w, err)
		return
	}

	if len(req.Labels) > 0 {
		labels := make([]domain.Label, 0, len(req.Labels))
		for _, l := range req.Labels {
			if l.Key == "" {
				writeError(w, apierr.Validation("label key must not be empty"))
				return
			}
			labels = append(labels, domain.Label{Key: l.Key, Value: l.Value, SessionID: sessionID, UserID: userID})
		}
		if err := h.labels.CreateMany(r.Context(), labels); err != nil {
			writeError(w, err)
			return
		}
	}

	helpers.RespondJSON(w, http.StatusCreated, map[string]string{"id": sessionID.String()})
}

type ingressTestcaseRequest struct {
	SessionID         string          `json:"sessionId"`
	TestcaseName      string          `json:"testcaseName"`
	Status            string          `json:"status"`
	TestcaseClassname *string         `json:"testcaseClassname,omitempty"`
	TestcaseFile      *string         `json:"testcaseFile,omitempty"`
	Testsuite         *string         `json:"testsuite,omitempty"`
	Output            *string         `json:"output,omitempty"`
	Baggage           json.RawMessage `json:"baggage,omitempty"`
}

type createTestcasesRequest struct {
	Testcases []ingressTestcaseRequest `json:"testcases"`
}

// CreateTestcases ingests an entire batch of test results in one insert.
func (h *IngressHandler) CreateTestcases(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	var req createTestcasesRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid request body"))
		return
	}
	if len(req.Testcases) == 0 {
		writeError(w, apierr.Validation("testcases must not be empty"))
		return
	}

	knownSessions := make(map[uuid.UUID]bool)
	testcases := make([]domain.Testcase, 0, len(req.Testcases))
	for _, tc := range req.Testcases {
		sessionID, err := uuid.Parse(tc.SessionID)
		if err != nil {
			writeError(w, apierr.WrapValidation(err, "invalid sessionId"))
			return
		}
		if tc.TestcaseName == "" {
			writeError(w, apierr.Validation("testcaseName must not be empty"))
			return
		}
		status, ok := domain.ParseTestcaseStatus(tc.Status)
		if !ok {
			writeError(w, apierr.Validation("invalid status %q", tc.Status))
			return
		}

		if !knownSessions[sessionID] {
			if _, err := h.sessions.GetByID(r.Context(), sessionID, userID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					writeError(w, apierr.Validation("unknown session id"))
					return
				}
				writeError(w, err)
				return
			}
			knownSessions[sessionID] = true
		}

		testcases = append(testcases, domain.Testcase{
			ID:        uuid.New(),
			Status:    status,
			Name:      tc.TestcaseName,
			Classname: tc.TestcaseClassname,
			File:      tc.TestcaseFile,
			Testsuite: tc.Testsuite,
			Output:    tc.Output,
			Baggage:   []byte(tc.Baggage),
			SessionID: sessionID,
			UserID:    userID,
		})
	}

	if err := h.testcases.InsertMany(r.Context(), testcases); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
