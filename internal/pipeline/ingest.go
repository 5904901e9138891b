// Package pipeline holds the three stage handlers: ingestion turns raw
// messages into jobs, execution runs their workflow, and dispatch emits
// the single terminal notification.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/classifier"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
)

const noSubject = "(no subject)"

// Ingestor classifies and extracts raw messages, records them as pending
// jobs and queues them for execution.
type Ingestor struct {
	jobs       jobs.System
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
	coord      *delivery.Coordinator
	logger     *slog.Logger
}

func NewIngestor(js jobs.System, c *classifier.Classifier, e *extractor.Extractor, coord *delivery.Coordinator, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		jobs:       js,
		classifier: c,
		extractor:  e,
		coord:      coord,
		logger:     logger.With("stage", "ingest"),
	}
}

// Handle is the raw-ingestion channel handler.
func (i *Ingestor) Handle(ctx context.Context, env broker.Envelope) error {
	msg, err := ParseMessage(env.Payload)
	if err != nil {
		return err
	}
	job, err := i.Ingest(ctx, msg)
	if err != nil {
		return err
	}
	i.logger.Info("message ingested", "job_id", job.ID, "envelope_id", env.ID)
	return nil
}

// Ingest creates the job for msg and queues it. A message seen before
// maps to the same job; it is queued again only while still pending.
func (i *Ingestor) Ingest(ctx context.Context, msg Message) (*jobs.Job, error) {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = noSubject
	}

	result := i.classifier.Classify(msg.Subject, msg.Body)
	extraction := i.extractor.ExtractPayload(msg.Body, result.Label)

	credentials, jobCard, err := splitPayload(extraction.Payload)
	if err != nil {
		return nil, err
	}
	metadata := result.EncodeMetadata(jobs.MaxMetadataLen)

	logger := i.logger.With("job_id", msg.JobID(), "job_type", result.Label)
	logger.Info("message classified",
		"confidence", result.Confidence,
		"method", result.Metadata.Method,
		"annotations", len(extraction.Annotations()),
	)

	job, created, err := i.jobs.Create(ctx, jobs.CreateCommand{
		ID:          msg.JobID(),
		Subject:     truncate(subject, jobs.MaxSubjectLen),
		Sender:      truncate(strings.TrimSpace(msg.Sender), jobs.MaxSenderLen),
		Body:        msg.Body,
		JobType:     &result.Label,
		Credentials: credentials,
		JobCard:     jobCard,
		Metadata:    &metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if !created && job.Status != jobs.StatusPending {
		logger.Info("duplicate message ignored", "status", job.Status)
		return job, nil
	}

	if _, err := i.coord.Enqueue(ctx, delivery.ChannelExecution, job.ID.String(), ExecuteMessage{JobID: job.ID}); err != nil {
		return nil, err
	}
	return job, nil
}
