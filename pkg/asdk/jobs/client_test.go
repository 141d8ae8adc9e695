package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

func testClient(t *testing.T, handler http.Handler, editors ...RequestEditor) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return NewClient(base, srv.Client(), editors...), srv
}

func TestClientSubmit(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "job-1",
			"status": "pending",
		})
	}))

	job, err := c.Submit(context.Background(), SubmitRequest{
		Image:         "ubuntu",
		Command:       "sleep 1h",
		Resources:     Resources{CPU: 7, MemoryMB: 16384, SHM: true},
		IsPreemptible: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, StatusPending, job.Status)

	assert.Equal(t, "POST /jobs", gotPath)
	assert.Equal(t, true, gotBody["is_preemptible"])

	container := gotBody["container"].(map[string]any)
	assert.Equal(t, "ubuntu", container["image"])
	assert.Equal(t, "sleep 1h", container["command"])
	// unset optional fields never appear on the wire
	for _, absent := range []string{"http", "ssh", "env", "volumes"} {
		assert.NotContains(t, container, absent)
	}
	for _, absent := range []string{"name", "description"} {
		assert.NotContains(t, gotBody, absent)
	}
}

func TestClientSubmitFull(t *testing.T) {
	var gotBody map[string]any
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-2", "status": "pending"})
	}))

	_, err := c.Submit(context.Background(), SubmitRequest{
		Image:     "ubuntu",
		Resources: Resources{CPU: 0.1, MemoryMB: 16, SHM: false},
		HTTP:      &HTTPPort{Port: 8181, RequiresAuth: true},
		Volumes: []Volume{
			{Storage: "storage://bob/dir", ContainerPath: "/mnt/dir", ReadOnly: true},
		},
		Env:         map[string]string{"FOO": "bar"},
		Name:        "train",
		Description: "nightly",
	})
	require.NoError(t, err)

	assert.Equal(t, "train", gotBody["name"])
	assert.Equal(t, "nightly", gotBody["description"])
	container := gotBody["container"].(map[string]any)
	httpPort := container["http"].(map[string]any)
	assert.Equal(t, float64(8181), httpPort["port"])
	assert.Equal(t, true, httpPort["requires_auth"])
	volumes := container["volumes"].([]any)
	require.Len(t, volumes, 1)
	assert.Equal(t, "storage://bob/dir", volumes[0].(map[string]any)["src_storage_uri"])
}

func TestClientSubmitValidationError(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad resources"}`, http.StatusBadRequest)
	}))

	_, err := c.Submit(context.Background(), SubmitRequest{Image: "ubuntu"})
	require.Error(t, err)
	assert.True(t, aerr.IsCode(err, aerr.CodeValidation))
	assert.Contains(t, err.Error(), "bad resources")
}

func TestClientList(t *testing.T) {
	var gotQuery url.Values
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jobs": []map[string]any{
				{"id": "job-1", "status": "running"},
				{"id": "job-2", "status": "pending"},
			},
		})
	}))

	jobs, err := c.List(context.Background(), ListOptions{
		Statuses: []JobStatus{StatusRunning, StatusPending},
		Name:     "train",
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "job-2", jobs[1].ID)

	assert.Equal(t, []string{"running", "pending"}, gotQuery["status"], "each status is a repeated parameter")
	assert.Equal(t, "train", gotQuery.Get("name"))
}

func TestClientListNoFilter(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode(map[string]any{"jobs": []any{}})
	}))

	jobs, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestClientStatus(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/job-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "job-1",
			"status": "succeeded",
			"history": map[string]any{
				"status":      "succeeded",
				"created_at":  "2026-08-25T10:00:00+00:00",
				"finished_at": "2026-08-25T11:00:00+00:00",
			},
		})
	}))

	job, err := c.Status(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, job.Status)
	assert.Equal(t, "2026-08-25T11:00:00+00:00", job.History.FinishedAt)
}

func TestClientStatusNotFound(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))

	_, err := c.Status(context.Background(), "job-nope")
	require.Error(t, err)
	assert.True(t, aerr.IsCode(err, aerr.CodeNotFound))
}

func TestClientKill(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.Kill(context.Background(), "job-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/jobs/job-1", gotPath)
}

func TestClientKillNotFound(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))

	err := c.Kill(context.Background(), "job-nope")
	assert.True(t, aerr.IsCode(err, aerr.CodeNotFound))
}

func TestClientUnauthorized(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))

	_, err := c.List(context.Background(), ListOptions{})
	assert.True(t, aerr.IsCode(err, aerr.CodeUnauthorized))
}

func TestClientRunsRequestEditors(t *testing.T) {
	var gotAuth string
	editor := func(ctx context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer test-token")
		return nil
	}
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"jobs": []any{}})
	}), editor)

	_, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}
