package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portico-hosting/portico/models"
)

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("", "")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c, err := New(ts.URL+"/", "secret-token")
	require.NoError(t, err)

	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestListNodes(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"status":     r.URL.Query().Get("status"),
			"datacenter": r.URL.Query().Get("datacenter"),
			"limit":      r.URL.Query().Get("limit"),
		}
		json.NewEncoder(w).Encode(NodePage{
			Count: 1,
			Total: 7,
			Nodes: []*NodeView{
				{Node: &models.Node{ID: "node:a", Name: "atlas"}, State: "online"},
			},
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	page, err := c.ListNodes(context.Background(), &NodeQuery{
		State:      "online",
		Datacenter: "fra1",
		Limit:      25,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/nodes", gotPath)
	assert.Equal(t, "online", gotQuery["status"])
	assert.Equal(t, "fra1", gotQuery["datacenter"])
	assert.Equal(t, "25", gotQuery["limit"])
	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Nodes, 1)
	assert.Equal(t, "atlas", page.Nodes[0].Node.Name)
	assert.Equal(t, "online", page.Nodes[0].State)
}

func TestDeleteNodeBlocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "BLOCKED",
			"message": "node hosts workloads",
			"context": map[string]int{"workloads": 3},
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	err = c.DeleteNode(context.Background(), "node:a")
	require.Error(t, err)

	var blocked *BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, 3, blocked.Workloads)
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "node not found",
			"details": "no node with ID node:missing",
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	_, err = c.GetNode(context.Background(), "node:missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "node not found", apiErr.Message)
}

func TestCreateAllocationRange(t *testing.T) {
	var gotBody allocationRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 2,
			"allocations": []*models.Allocation{
				{ID: "allocation:1", BindAddress: "0.0.0.0", Port: 25565},
				{ID: "allocation:2", BindAddress: "0.0.0.0", Port: 25566},
			},
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	created, err := c.CreateAllocationRange(context.Background(), "node:a", "0.0.0.0", 25565, 25570, "", "")
	require.NoError(t, err)

	assert.Equal(t, 25565, gotBody.RangeStart)
	assert.Equal(t, 25570, gotBody.RangeEnd)
	assert.Zero(t, gotBody.Port)
	require.Len(t, created, 2)
	assert.Equal(t, 25565, created[0].Port)
}

func TestPool(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(PoolPage{
			Page:           2,
			Limit:          50,
			Total:          120,
			Unassigned:     []*models.Allocation{{ID: "allocation:51", Port: 25615}},
			ShowUnassigned: true,
			TotalPages:     3,
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	pool, err := c.Pool(context.Background(), "node:a", 2, 50)
	require.NoError(t, err)

	assert.Equal(t, 120, pool.Total)
	assert.Equal(t, 3, pool.TotalPages)
	assert.True(t, pool.ShowUnassigned)
	require.Len(t, pool.Unassigned, 1)
}

func TestApplyPlanInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(PlanParseResult{
			Errors: []string{"node 1: name is required"},
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	_, err = c.ApplyPlan(context.Background(), []byte("name: broken"))
	require.Error(t, err)

	var invalid *PlanInvalidError
	require.True(t, errors.As(err, &invalid))
	require.NotNil(t, invalid.Findings)
	assert.Contains(t, invalid.Findings.Errors[0], "name is required")
}

func TestValidateInvalidDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{Field: "port", Message: "must be between 1 and 65535"},
			},
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "")
	require.NoError(t, err)

	result, err := c.Validate(context.Background(), "allocation", map[string]interface{}{"port": 0})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "port", result.Errors[0].Field)
}

func TestSyncWorkloadRequiresID(t *testing.T) {
	c, err := New("http://localhost:8095", "")
	require.NoError(t, err)

	_, err = c.SyncWorkload(context.Background(), &models.Workload{Name: "unnamed"})
	assert.Error(t, err)
}
