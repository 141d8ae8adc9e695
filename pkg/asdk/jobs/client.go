package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

// RequestEditor mutates outgoing requests before they are sent, typically to
// attach credentials. The SDK installs one that renegotiates the bearer
// token as needed.
type RequestEditor func(ctx context.Context, req *http.Request) error

// Client shapes requests against the jobs API and decodes responses into
// descriptors. It never retries on its own; callers wanting a retry
// re-invoke the whole call.
type Client struct {
	base    *url.URL
	hc      *http.Client
	editors []RequestEditor
}

// NewClient builds a jobs client rooted at base. A nil hc selects
// http.DefaultClient.
func NewClient(base *url.URL, hc *http.Client, editors ...RequestEditor) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: base, hc: hc, editors: editors}
}

func (c *Client) newRequest(ctx context.Context, method string, elem []string, query url.Values, body []byte) (*http.Request, error) {
	u := c.base.JoinPath(elem...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// errFromResponse maps platform failure statuses onto the client taxonomy,
// keeping the server's error body in the message.
func errFromResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(raw))
	if detail == "" {
		detail = resp.Status
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return aerr.Errorf(aerr.CodeNotFound, "%s", detail)
	case resp.StatusCode == http.StatusUnauthorized:
		return aerr.Errorf(aerr.CodeUnauthorized, "%s", detail)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return aerr.Errorf(aerr.CodeValidation, "%s", detail)
	default:
		return aerr.Errorf(aerr.CodeUnknown, "unexpected status: %s", detail)
	}
}

// SubmitRequest describes a job to start. Optional fields left zero are
// omitted from the wire body entirely, never sent as nulls.
type SubmitRequest struct {
	Image         string
	Command       string
	Resources     Resources
	HTTP          *HTTPPort
	SSH           *SSHPort
	Volumes       []Volume
	Env           map[string]string
	IsPreemptible bool
	Name          string
	Description   string
}

type submitPayload struct {
	Container     Container `json:"container"`
	IsPreemptible bool      `json:"is_preemptible"`
	Name          string    `json:"name,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// Submit starts a new job and returns its descriptor.
func (c *Client) Submit(ctx context.Context, sub SubmitRequest) (*JobDescriptor, error) {
	body, err := json.Marshal(submitPayload{
		Container: Container{
			Image:     sub.Image,
			Command:   sub.Command,
			HTTP:      sub.HTTP,
			SSH:       sub.SSH,
			Resources: sub.Resources,
			Env:       sub.Env,
			Volumes:   sub.Volumes,
		},
		IsPreemptible: sub.IsPreemptible,
		Name:          sub.Name,
		Description:   sub.Description,
	})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, []string{"jobs"}, nil, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errFromResponse(resp)
	}
	return decodeJob(resp.Body)
}

// ListOptions filters the job listing. Empty fields send no filter.
type ListOptions struct {
	Statuses    []JobStatus
	Name        string
	Description string
}

// List returns jobs in server order. Each status produces one repeated
// `status` query parameter.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]JobDescriptor, error) {
	q := url.Values{}
	for _, s := range opts.Statuses {
		q.Add("status", string(s))
	}
	if opts.Name != "" {
		q.Set("name", opts.Name)
	}
	if opts.Description != "" {
		q.Set("description", opts.Description)
	}
	req, err := c.newRequest(ctx, http.MethodGet, []string{"jobs"}, q, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errFromResponse(resp)
	}
	var payload struct {
		Jobs []jobPayload `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := make([]JobDescriptor, 0, len(payload.Jobs))
	for _, p := range payload.Jobs {
		out = append(out, p.toDescriptor())
	}
	return out, nil
}

// Status fetches a single job by id.
func (c *Client) Status(ctx context.Context, id string) (*JobDescriptor, error) {
	req, err := c.newRequest(ctx, http.MethodGet, []string{"jobs", id}, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errFromResponse(resp)
	}
	return decodeJob(resp.Body)
}

// Kill requests termination of a job. A 204 is success and carries no body.
func (c *Client) Kill(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, []string{"jobs", id}, nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	default:
		return errFromResponse(resp)
	}
}

func decodeJob(r io.Reader) (*JobDescriptor, error) {
	var p jobPayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	d := p.toDescriptor()
	return &d, nil
}
