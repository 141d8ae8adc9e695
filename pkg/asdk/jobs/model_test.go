package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMegabytesUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want Megabytes
	}{
		{`1024`, 1024},
		{`"1024"`, 1024},
		{`"16384.0"`, 16384},
		{`null`, 0},
		{`""`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var m Megabytes
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.want, m)
		})
	}

	var m Megabytes
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &m))
}

func TestJobPayloadToDescriptor(t *testing.T) {
	raw := `{
		"id": "job-efb7d723",
		"name": "train",
		"owner": "bob",
		"status": "running",
		"description": "nightly run",
		"container": {
			"image": "ubuntu",
			"command": "sleep 1h",
			"resources": {"cpu": 7, "memory_mb": "16384", "shm": true, "gpu": 1, "gpu_model": "nvidia-tesla-p4"},
			"http": {"port": 8181}
		},
		"history": {"status": "running", "created_at": "2026-08-25T10:00:00+00:00"},
		"is_preemptible": true,
		"http_url": "http://job-efb7d723.jobs.example.com",
		"http_url_named": "http://train--bob.jobs.example.com",
		"ssh_server": "ssh://nobody@ssh-auth.example.com:22"
	}`

	var p jobPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	d := p.toDescriptor()

	assert.Equal(t, "job-efb7d723", d.ID)
	assert.Equal(t, "bob", d.Owner)
	assert.Equal(t, StatusRunning, d.Status)
	assert.Equal(t, "ubuntu", d.Container.Image)
	assert.Equal(t, Megabytes(16384), d.Container.Resources.MemoryMB)
	assert.Equal(t, "nvidia-tesla-p4", d.Container.Resources.GPUModel)
	require.NotNil(t, d.Container.HTTP)
	assert.Equal(t, 8181, d.Container.HTTP.Port)
	assert.True(t, d.IsPreemptible)
	assert.Equal(t, "http://train--bob.jobs.example.com", d.HTTPURL, "named jobs prefer the stable named address")
	assert.Equal(t, "ssh://nobody@ssh-auth.example.com:22", d.SSHServer)
}

func TestJobPayloadToDescriptorUnnamed(t *testing.T) {
	p := jobPayload{
		ID:           "job-1",
		HTTPURL:      "http://job-1.jobs.example.com",
		HTTPURLNamed: "http://--bob.jobs.example.com",
	}
	d := p.toDescriptor()
	assert.Equal(t, "http://job-1.jobs.example.com", d.HTTPURL, "unnamed jobs keep the id-based address")
}

func TestJobPayloadToDescriptorDefaultsStatus(t *testing.T) {
	d := jobPayload{ID: "job-1"}.toDescriptor()
	assert.Equal(t, StatusUnknown, d.Status)
	assert.Equal(t, StatusUnknown, d.History.Status)
}

func TestContainerSparseEncoding(t *testing.T) {
	data, err := json.Marshal(Container{
		Image:     "ubuntu",
		Resources: Resources{CPU: 0.1, MemoryMB: 16, SHM: false},
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Contains(t, m, "image")
	assert.Contains(t, m, "resources")
	for _, absent := range []string{"command", "http", "ssh", "env", "volumes"} {
		assert.NotContains(t, m, absent)
	}

	res := m["resources"].(map[string]any)
	assert.Contains(t, res, "shm", "shm is always explicit")
	assert.NotContains(t, res, "gpu")
	assert.NotContains(t, res, "gpu_model")
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusSucceeded.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.False(t, StatusUnknown.IsTerminal())
}
