package jobs

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// LogStream is a lazy, single-pass view of a job's chunked log output. It is
// not restartable; data is only read as Next is called, and Close releases
// the underlying connection. Callers must drain to io.EOF or Close early.
type LogStream struct {
	body io.ReadCloser
	buf  []byte
	err  error
}

// Monitor opens the log stream for a job. A missing job surfaces
// aerr.CodeNotFound before anything is yielded.
func (c *Client) Monitor(ctx context.Context, id string) (*LogStream, error) {
	req, err := c.newRequest(ctx, http.MethodGet, []string{"jobs", id, "log"}, nil, nil)
	if err != nil {
		return nil, err
	}
	// chunk boundaries must survive the transport untouched
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, errFromResponse(resp)
	}
	return &LogStream{body: resp.Body, buf: make([]byte, 32*1024)}, nil
}

// Next returns the next chunk of log data. io.EOF signals a normal end of
// stream. The returned slice is only valid until the following call.
func (s *LogStream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			if err != nil {
				s.err = err
			}
			return s.buf[:n], nil
		}
		if err != nil {
			s.err = err
			if errors.Is(err, io.EOF) {
				s.err = io.EOF
			}
			return nil, s.err
		}
	}
}

// Close releases the connection. Safe after io.EOF and after an early break.
func (s *LogStream) Close() error {
	return s.body.Close()
}

// WriteTo drains the stream into w, returning the bytes copied and the
// terminal error, if any. A normal end of stream returns a nil error.
func (s *LogStream) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		chunk, err := s.Next()
		if len(chunk) > 0 {
			n, werr := w.Write(chunk)
			total += int64(n)
			if werr != nil {
				return total, werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
	}
}
