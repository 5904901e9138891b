package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
)

// maxScreenshot bounds the bytes read for one screenshot.
const maxScreenshot = 32 << 20

var ErrDriver = errors.New("automation driver error")

// RemoteFactory opens sessions on an HTTP browser driver:
//
//	POST   {driver}/sessions               {"job_id"} -> {"id"}
//	POST   {driver}/sessions/{id}/commands {"op","target","value"}
//	GET    {driver}/sessions/{id}/screenshot -> image/png
//	DELETE {driver}/sessions/{id}
type RemoteFactory struct {
	base   string
	token  string
	client *http.Client
	logger *slog.Logger
}

func (f *RemoteFactory) Open(ctx context.Context, jobID uuid.UUID) (workflow.Session, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := f.do(ctx, http.MethodPost, "sessions", map[string]string{"job_id": jobID.String()}, &created); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrDriver)
	}

	f.logger.Info("remote session opened", "job_id", jobID, "session_id", created.ID)
	return &RemoteSession{factory: f, id: created.ID}, nil
}

func (f *RemoteFactory) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.TrimRight(f.base, "/") + "/" + strings.Join(escaped, "/")
}

func (f *RemoteFactory) request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return nil, fmt.Errorf("%w: %s %s: %s", ErrDriver, method, path, e.Error)
	}
	return resp, nil
}

func (f *RemoteFactory) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := f.request(ctx, method, f.endpoint(strings.Split(path, "/")...), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// RemoteSession is one browser session on the driver.
type RemoteSession struct {
	factory *RemoteFactory
	id      string
}

func (s *RemoteSession) command(ctx context.Context, c Command) error {
	return s.factory.do(ctx, http.MethodPost, "sessions/"+s.id+"/commands", c, nil)
}

func (s *RemoteSession) Navigate(ctx context.Context, target string) error {
	return s.command(ctx, Command{Op: "navigate", Target: target})
}

func (s *RemoteSession) Fill(ctx context.Context, field, value string) error {
	return s.command(ctx, Command{Op: "fill", Target: field, Value: value})
}

func (s *RemoteSession) Click(ctx context.Context, target string) error {
	return s.command(ctx, Command{Op: "click", Target: target})
}

func (s *RemoteSession) Screenshot(ctx context.Context) ([]byte, error) {
	resp, err := s.factory.request(ctx, http.MethodGet, s.factory.endpoint("sessions", s.id, "screenshot"), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScreenshot+1))
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	if len(data) > maxScreenshot {
		return nil, fmt.Errorf("%w: screenshot exceeds %d bytes", ErrDriver, maxScreenshot)
	}
	return data, nil
}

func (s *RemoteSession) Close(ctx context.Context) error {
	if err := s.factory.do(ctx, http.MethodDelete, "sessions/"+s.id, nil, nil); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	s.factory.logger.Info("remote session closed", "session_id", s.id)
	return nil
}
