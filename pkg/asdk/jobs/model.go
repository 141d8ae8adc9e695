package jobs

import (
	"encoding/json"
	"strconv"
	"strings"
)

// JobStatus is the lifecycle state reported by the platform.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
	StatusUnknown   JobStatus = "unknown"
)

// Statuses lists every concrete job state, for CLI flag validation.
func Statuses() []JobStatus {
	return []JobStatus{StatusPending, StatusRunning, StatusSucceeded, StatusFailed}
}

// IsTerminal reports whether the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Megabytes tolerates the API occasionally quoting memory_mb as a string.
type Megabytes int

func (m Megabytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(m))
}

func (m *Megabytes) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = Megabytes(int(f))
	return nil
}

// Resources describes the container resource request.
type Resources struct {
	CPU      float64   `json:"cpu"`
	MemoryMB Megabytes `json:"memory_mb"`
	SHM      bool      `json:"shm"`
	GPU      int       `json:"gpu,omitempty"`
	GPUModel string    `json:"gpu_model,omitempty"`
}

// HTTPPort exposes an HTTP port on the container.
type HTTPPort struct {
	Port         int  `json:"port"`
	RequiresAuth bool `json:"requires_auth,omitempty"`
}

// SSHPort exposes an SSH port on the container. Tunneling itself is a side
// channel outside this client.
type SSHPort struct {
	Port int `json:"port"`
}

// Volume mounts platform storage into the container.
type Volume struct {
	Storage       string `json:"src_storage_uri"`
	ContainerPath string `json:"dst_path"`
	ReadOnly      bool   `json:"read_only"`
}

// Container is the runtime spec submitted with a job. Optional fields left
// zero never appear on the wire.
type Container struct {
	Image     string            `json:"image"`
	Command   string            `json:"command,omitempty"`
	HTTP      *HTTPPort         `json:"http,omitempty"`
	SSH       *SSHPort          `json:"ssh,omitempty"`
	Resources Resources         `json:"resources"`
	Env       map[string]string `json:"env,omitempty"`
	Volumes   []Volume          `json:"volumes,omitempty"`
}

// StatusHistory captures the latest transition of a job.
type StatusHistory struct {
	Status      JobStatus `json:"status,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
	StartedAt   string    `json:"started_at,omitempty"`
	FinishedAt  string    `json:"finished_at,omitempty"`
}

// JobDescriptor is the decoded, immutable view of one job.
type JobDescriptor struct {
	ID            string
	Name          string
	Owner         string
	Status        JobStatus
	Description   string
	Container     Container
	History       StatusHistory
	IsPreemptible bool

	// HTTPURL is empty unless the container exposes an HTTP port. Named
	// jobs get the stable name-and-owner address when the server offers
	// one.
	HTTPURL   string
	SSHServer string
}

// jobPayload is the wire shape of a job in status/list/submit responses.
type jobPayload struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Owner         string        `json:"owner"`
	Status        JobStatus     `json:"status"`
	Description   string        `json:"description"`
	Container     Container     `json:"container"`
	History       StatusHistory `json:"history"`
	IsPreemptible bool          `json:"is_preemptible"`
	HTTPURL       string        `json:"http_url"`
	HTTPURLNamed  string        `json:"http_url_named"`
	SSHServer     string        `json:"ssh_server"`
}

func (p jobPayload) toDescriptor() JobDescriptor {
	httpURL := p.HTTPURL
	if p.Name != "" && p.HTTPURLNamed != "" {
		httpURL = p.HTTPURLNamed
	}
	status := p.Status
	if status == "" {
		status = StatusUnknown
	}
	history := p.History
	if history.Status == "" {
		history.Status = StatusUnknown
	}
	return JobDescriptor{
		ID:            p.ID,
		Name:          p.Name,
		Owner:         p.Owner,
		Status:        status,
		Description:   p.Description,
		Container:     p.Container,
		History:       history,
		IsPreemptible: p.IsPreemptible,
		HTTPURL:       httpURL,
		SSHServer:     p.SSHServer,
	}
}

// Telemetry is one resource-usage sample pushed on a job's top stream.
// Samples are ephemeral and never persisted.
type Telemetry struct {
	CPU          float64 `json:"cpu"`
	Memory       float64 `json:"memory"`
	Timestamp    float64 `json:"timestamp"`
	GPUDutyCycle float64 `json:"gpu_duty_cycle,omitempty"`
	GPUMemory    float64 `json:"gpu_memory,omitempty"`
}
