package jobs

import (
	"net/url"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/query"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/repository"
)

var projection = query.NewProjection("jobs", "j").
	Project("id", "ID").
	Project("subject", "Subject").
	Project("sender", "Sender").
	Project("body", "Body").
	Project("status", "Status").
	Project("job_type", "JobType").
	Project("credentials", "Credentials").
	Project("job_card", "JobCard").
	Project("result", "Result").
	Project("error", "Error").
	Project("created_at", "CreatedAt").
	Project("started_at", "StartedAt").
	Project("heartbeat_at", "HeartbeatAt").
	Project("completed_at", "CompletedAt").
	Project("retry_count", "RetryCount").
	Project("priority", "Priority").
	Project("metadata", "Metadata").
	Project("cancel_requested_at", "CancelRequestedAt").
	Project("notified_at", "NotifiedAt")

const returning = `id, subject, sender, body, status, job_type, credentials, job_card, result, error,
	created_at, started_at, heartbeat_at, completed_at, retry_count, priority, metadata, cancel_requested_at, notified_at`

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanJob(s repository.Scanner) (Job, error) {
	var j Job
	err := s.Scan(
		&j.ID,
		&j.Subject,
		&j.Sender,
		&j.Body,
		&j.Status,
		&j.JobType,
		&j.Credentials,
		&j.JobCard,
		&j.Result,
		&j.Error,
		&j.CreatedAt,
		&j.StartedAt,
		&j.HeartbeatAt,
		&j.CompletedAt,
		&j.RetryCount,
		&j.Priority,
		&j.Metadata,
		&j.CancelRequestedAt,
		&j.NotifiedAt,
	)
	return j, err
}

// Filters narrows List. Nil fields are ignored.
type Filters struct {
	Status  *Status
	JobType *string
	Sender  *string
	Sort    []query.SortField
}

// Apply adds the filter conditions to b.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	query.WhereEquals(b, "Status", f.Status)
	query.WhereEquals(b, "JobType", f.JobType)
	return b.WhereContains("Sender", f.Sender).OrderBy(f.Sort)
}

// FiltersFromQuery reads status, type, sender and sort query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		st, err := ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if t := values.Get("type"); t != "" {
		f.JobType = &t
	}
	if s := values.Get("sender"); s != "" {
		f.Sender = &s
	}
	f.Sort = query.ParseSortFields(values.Get("sort"), projection)

	return f, nil
}
