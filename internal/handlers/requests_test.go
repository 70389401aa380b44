package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/netops-go-backend/internal/models"
	"github.com/opsdeck/netops-go-backend/internal/ops"
	"github.com/opsdeck/netops-go-backend/internal/store"
)

// fakeStore is an in-memory RequestStore with the same validation behaviour
// as the MongoDB implementation.
type fakeStore struct {
	requests []models.ChangeRequest
	seq      int
}

func (f *fakeStore) Create(_ context.Context, p store.CreateParams) (*models.ChangeRequest, error) {
	f.seq++
	now := time.Now().UTC().Truncate(time.Second)
	priority := p.Priority
	if priority == "" {
		priority = "High"
	}
	req := models.ChangeRequest{
		OpID:      fmt.Sprintf("OP-%04d-%04d", now.Year(), f.seq),
		Feature:   p.Feature,
		Parameter: p.Parameter,
		Value:     p.Value,
		Zone:      p.Zone,
		Sites:     p.Sites,
		Priority:  priority,
		Status:    string(ops.StatusPending),
		CreatedAt: now,
		UpdatedAt: now,
		History: []models.HistoryEntry{{
			At:         now,
			Department: string(ops.DeptEngineering),
			ToStatus:   string(ops.StatusPending),
			Comment:    "Création de la demande.",
		}},
	}
	f.requests = append(f.requests, req)
	return &req, nil
}

func (f *fakeStore) List(_ context.Context, status, q string) ([]models.ChangeRequest, error) {
	out := []models.ChangeRequest{}
	for _, r := range f.requests {
		if status != "" && status != "ALL" && r.Status != status {
			continue
		}
		if q != "" && !strings.Contains(r.OpID+r.Feature+r.Parameter+r.Zone, q) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, opID string) (*models.ChangeRequest, error) {
	for i := range f.requests {
		if f.requests[i].OpID == opID {
			req := f.requests[i]
			return &req, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateStatus(ctx context.Context, opID string, p store.StatusUpdateParams) (*models.ChangeRequest, error) {
	var req *models.ChangeRequest
	for i := range f.requests {
		if f.requests[i].OpID == opID {
			req = &f.requests[i]
		}
	}
	if req == nil {
		return nil, store.ErrNotFound
	}
	from, _ := ops.ParseStatus(req.Status)
	to, err := ops.ParseStatus(p.ToStatus)
	if err != nil {
		return nil, &store.ValidationError{Message: "invalid status"}
	}
	if _, err := ops.ParseDepartment(p.Department); err != nil {
		return nil, &store.ValidationError{Message: "invalid department"}
	}
	if !ops.CanTransition(from, to) {
		return nil, &store.ValidationError{Message: fmt.Sprintf("transition not allowed: %s -> %s", from, to)}
	}
	if strings.TrimSpace(p.Comment) == "" {
		return nil, &store.ValidationError{Message: "comment is required"}
	}
	now := time.Now().UTC().Truncate(time.Second)
	fromStr := string(from)
	req.Status = string(to)
	req.UpdatedAt = now
	if p.PlannedDate != nil && *p.PlannedDate != "" {
		req.PlannedDate = p.PlannedDate
	}
	req.History = append(req.History, models.HistoryEntry{
		At: now, Department: p.Department, FromStatus: &fromStr, ToStatus: string(to), Comment: p.Comment,
	})
	out := *req
	return &out, nil
}

func (f *fakeStore) ListPlanning(_ context.Context) ([]models.ChangeRequest, error) {
	out := []models.ChangeRequest{}
	for _, r := range f.requests {
		if r.Status == string(ops.StatusPlanned) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].PlannedDate, out[j].PlannedDate
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return out, nil
}

func (f *fakeStore) Latest(_ context.Context, limit int) ([]models.ChangeRequest, error) {
	if len(f.requests) > limit {
		return f.requests[:limit], nil
	}
	return f.requests, nil
}

type fakeAnswerer struct{}

func (fakeAnswerer) Answer(_ context.Context, question string) (string, []string) {
	return "Statut de OP-2026-0001: PENDING (priority: High, feature: " + question + ").", []string{"OP-2026-0001"}
}

func newTestRouter(fs *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(fs, fakeAnswerer{}).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"feature":   "VoLTE",
		"parameter": "qci",
		"value":     "1",
		"zone":      "Nord",
		"sites":     []string{"LIL001", "LIL002"},
	}
}

func TestCreateRequest(t *testing.T) {
	r := newTestRouter(&fakeStore{})

	w := doJSON(t, r, http.MethodPost, "/requests", createBody())
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ChangeRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "PENDING", got.Status)
	assert.Regexp(t, `^OP-\d{4}-\d{4}$`, got.OpID)
	assert.Equal(t, "High", got.Priority)
	assert.Equal(t, []string{"LIL001", "LIL002"}, got.Sites)
}

func TestCreateRequestMissingFields(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	w := doJSON(t, r, http.MethodPost, "/requests", map[string]interface{}{"feature": "VoLTE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRequestNotFound(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	w := doJSON(t, r, http.MethodGet, "/requests/OP-2026-0404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/requests/OP-2026-0404/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRequestWithHistory(t *testing.T) {
	fs := &fakeStore{}
	r := newTestRouter(fs)
	doJSON(t, r, http.MethodPost, "/requests", createBody())

	opID := fs.requests[0].OpID
	w := doJSON(t, r, http.MethodGet, "/requests/"+opID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.RequestDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, opID, got.Request.OpID)
	require.Len(t, got.History, 1)
	assert.Nil(t, got.History[0].FromStatus)
	assert.Equal(t, "PENDING", got.History[0].ToStatus)
}

func TestUpdateStatusWorkflow(t *testing.T) {
	fs := &fakeStore{}
	r := newTestRouter(fs)
	doJSON(t, r, http.MethodPost, "/requests", createBody())
	opID := fs.requests[0].OpID

	t.Run("pending to planned", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", map[string]interface{}{
			"department":   "PILOTAGE",
			"to_status":    "PLANNED",
			"comment":      "Créneau validé",
			"planned_date": "2026-09-15",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var got models.ChangeRequest
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "PLANNED", got.Status)
		require.NotNil(t, got.PlannedDate)
		assert.Equal(t, "2026-09-15", *got.PlannedDate)
	})

	t.Run("invalid transition", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", map[string]interface{}{
			"department": "PILOTAGE",
			"to_status":  "PENDING",
			"comment":    "retour arrière",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "transition not allowed")
	})

	t.Run("whitespace comment", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", map[string]interface{}{
			"department": "OPERATIONS",
			"to_status":  "EXECUTED",
			"comment":    "   ",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid department", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", map[string]interface{}{
			"department": "SALES",
			"to_status":  "EXECUTED",
			"comment":    "fait",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing request", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/requests/OP-2026-0404/status", map[string]interface{}{
			"department": "OPERATIONS",
			"to_status":  "EXECUTED",
			"comment":    "fait",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("executed is terminal", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", map[string]interface{}{
			"department": "OPERATIONS",
			"to_status":  "EXECUTED",
			"comment":    "Déployé sur les deux sites",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", map[string]interface{}{
			"department": "OPERATIONS",
			"to_status":  "PLANNED",
			"comment":    "replanifier",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHistoryTraceMatchesStatus(t *testing.T) {
	fs := &fakeStore{}
	r := newTestRouter(fs)
	doJSON(t, r, http.MethodPost, "/requests", createBody())
	opID := fs.requests[0].OpID

	steps := []map[string]interface{}{
		{"department": "PILOTAGE", "to_status": "PLANNED", "comment": "planifié"},
		{"department": "OPERATIONS", "to_status": "FAILED", "comment": "rollback site LIL002"},
		{"department": "PILOTAGE", "to_status": "PLANNED", "comment": "replanifié"},
		{"department": "OPERATIONS", "to_status": "EXECUTED", "comment": "ok"},
	}
	for _, s := range steps {
		w := doJSON(t, r, http.MethodPost, "/requests/"+opID+"/status", s)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/requests/"+opID+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history []models.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 5)

	trace := []string{}
	for _, h := range history {
		trace = append(trace, h.ToStatus)
	}
	assert.Equal(t, []string{"PENDING", "PLANNED", "FAILED", "PLANNED", "EXECUTED"}, trace)
	assert.Equal(t, fs.requests[0].Status, history[len(history)-1].ToStatus)
}

func TestListRequestsFilters(t *testing.T) {
	fs := &fakeStore{}
	r := newTestRouter(fs)
	doJSON(t, r, http.MethodPost, "/requests", createBody())
	doJSON(t, r, http.MethodPost, "/requests", createBody())
	doJSON(t, r, http.MethodPost, "/requests/"+fs.requests[0].OpID+"/status", map[string]interface{}{
		"department": "PILOTAGE", "to_status": "PLANNED", "comment": "planifié",
	})

	w := doJSON(t, r, http.MethodGet, "/requests?status=PLANNED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.ChangeRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "PLANNED", got[0].Status)

	w = doJSON(t, r, http.MethodGet, "/requests", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestPlanningEndpoint(t *testing.T) {
	fs := &fakeStore{}
	r := newTestRouter(fs)
	doJSON(t, r, http.MethodPost, "/requests", createBody())
	doJSON(t, r, http.MethodPost, "/requests/"+fs.requests[0].OpID+"/status", map[string]interface{}{
		"department": "PILOTAGE", "to_status": "PLANNED", "comment": "planifié", "planned_date": "2026-09-20",
	})

	w := doJSON(t, r, http.MethodGet, "/planning", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.ChangeRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "PLANNED", got[0].Status)
}

func TestAssistantEndpoint(t *testing.T) {
	r := newTestRouter(&fakeStore{})

	w := doJSON(t, r, http.MethodPost, "/assistant", map[string]interface{}{"question": "VoLTE"})
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Answer     string   `json:"answer"`
		References []string `json:"references"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Answer, "OP-2026-0001")
	assert.Equal(t, []string{"OP-2026-0001"}, got.References)

	w = doJSON(t, r, http.MethodPost, "/assistant", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}
