package pipeline

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed message.schema.json
var messageSchemaSource string

var messageSchema = jsonschema.MustCompileString("message.schema.json", messageSchemaSource)

var ErrInvalidMessage = errors.New("invalid inbound message")

// jobNamespace derives job ids from inbound message ids.
var jobNamespace = uuid.MustParse("0b9f3c1e-5a7d-4e62-8f10-6c2d9a4b7e35")

// Message is one raw inbound request on the ingestion channel.
type Message struct {
	MessageID  string    `json:"message_id,omitempty"`
	Subject    string    `json:"subject"`
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at,omitzero"`
}

// JobID is stable for a message so redelivered messages map to one job.
// Messages without an id are keyed by their content.
func (m Message) JobID() uuid.UUID {
	key := m.MessageID
	if key == "" {
		key = m.Sender + "\x00" + m.Subject + "\x00" + m.Body
	}
	return uuid.NewSHA1(jobNamespace, []byte(key))
}

// ParseMessage validates data against the message schema and decodes it.
func ParseMessage(data []byte) (Message, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if err := messageSchema.Validate(doc); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return m, nil
}

// ExecuteMessage asks the execution stage to run a job.
type ExecuteMessage struct {
	JobID   uuid.UUID `json:"job_id"`
	Attempt int       `json:"attempt"`
}

// NotifyMessage asks the notification stage to report a terminal job.
// Attempt counts earlier failed deliveries.
type NotifyMessage struct {
	JobID   uuid.UUID `json:"job_id"`
	Attempt int       `json:"attempt,omitempty"`
}

// recipient returns the address part of a sender such as
// "Jane Doe <jane@example.com>", or the sender unchanged.
func recipient(sender string) string {
	if addr, err := mail.ParseAddress(sender); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(sender)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
