package automation

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
)

// NewSessionFactory returns the factory for cfg.Mode.
func NewSessionFactory(cfg *Config, logger *slog.Logger) workflow.SessionFactory {
	if cfg.Mode == ModeRemote {
		return &RemoteFactory{
			base:   cfg.DriverURL,
			token:  cfg.Token,
			client: &http.Client{Timeout: cfg.TimeoutDuration()},
			logger: logger.With("system", "automation", "mode", ModeRemote),
		}
	}
	return DryRunFactory{logger: logger.With("system", "automation", "mode", ModeDryRun)}
}

// Command is one primitive a session performed.
type Command struct {
	Op     string `json:"op"`
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
}

// DryRunFactory opens sessions that record commands without driving a
// browser.
type DryRunFactory struct {
	logger *slog.Logger
}

func (f DryRunFactory) Open(_ context.Context, jobID uuid.UUID) (workflow.Session, error) {
	return &DryRunSession{jobID: jobID, logger: f.logger.With("job_id", jobID)}, nil
}

// DryRunSession records every command. Its screenshot is a placeholder
// image whose width grows with the number of commands.
type DryRunSession struct {
	jobID  uuid.UUID
	logger *slog.Logger

	mu       sync.Mutex
	commands []Command
	closed   bool
}

func (s *DryRunSession) record(ctx context.Context, c Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session %s closed", s.jobID)
	}
	s.commands = append(s.commands, c)
	s.logger.Debug("dry run command", "op", c.Op, "target", c.Target)
	return nil
}

func (s *DryRunSession) Navigate(ctx context.Context, target string) error {
	return s.record(ctx, Command{Op: "navigate", Target: target})
}

func (s *DryRunSession) Fill(ctx context.Context, field, value string) error {
	return s.record(ctx, Command{Op: "fill", Target: field, Value: value})
}

func (s *DryRunSession) Click(ctx context.Context, target string) error {
	return s.record(ctx, Command{Op: "click", Target: target})
}

func (s *DryRunSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(s.Commands())
	img := image.NewGray(image.Rect(0, 0, max(n, 1), 1))
	for x := range n {
		img.SetGray(x, 0, color.Gray{Y: 0xff})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *DryRunSession) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.logger.Info("dry run session closed", "commands", len(s.commands))
	return nil
}

// Commands returns a copy of the recorded commands.
func (s *DryRunSession) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Command(nil), s.commands...)
}
