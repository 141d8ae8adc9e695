package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

// TelemetryStream yields decoded telemetry frames from the persistent top
// socket. It is lazy and single-pass; Close releases the socket, and
// cancelling the dial context tears the connection down deterministically.
type TelemetryStream struct {
	conn  *websocket.Conn
	count int
	err   error
}

// Top opens the live telemetry stream for a job. A 400 at connect time means
// the job does not exist; a socket that closes before delivering a single
// frame means the job is not running. Both are reported before anything is
// yielded.
func (c *Client) Top(ctx context.Context, id string) (*TelemetryStream, error) {
	// reuse the request pipeline for credentials, then swap the scheme
	probe, err := c.newRequest(ctx, http.MethodGet, []string{"jobs", id, "top"}, nil, nil)
	if err != nil {
		return nil, err
	}
	u := *probe.URL
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	header := http.Header{}
	for _, key := range []string{"Authorization", "X-Request-Id"} {
		if v := probe.Header.Get(key); v != "" {
			header.Set(key, v)
		}
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusBadRequest, http.StatusNotFound:
				return nil, aerr.Errorf(aerr.CodeNotFound, "job %q not found", id)
			case http.StatusUnauthorized:
				return nil, aerr.Errorf(aerr.CodeUnauthorized, "unauthorized")
			}
		}
		return nil, err
	}
	return &TelemetryStream{conn: conn}, nil
}

// Next returns the next telemetry sample. io.EOF signals a normal end after
// at least one frame was delivered; a close before the first frame reports
// aerr.CodeNotRunning.
func (s *TelemetryStream) Next() (*Telemetry, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			switch {
			case s.count == 0 && isClosed(err):
				s.err = aerr.Errorf(aerr.CodeNotRunning, "job is not running")
			case isClosed(err):
				s.err = io.EOF
			default:
				s.err = err
			}
			return nil, s.err
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		var sample Telemetry
		if err := json.Unmarshal(data, &sample); err != nil {
			s.err = err
			return nil, err
		}
		s.count++
		return &sample, nil
	}
}

// Close tears the socket down. Safe to call at any point, including after an
// early break.
func (s *TelemetryStream) Close() error {
	return s.conn.Close()
}

func isClosed(err error) bool {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
