package broker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
)

func newMemory(t *testing.T) *broker.Memory {
	t.Helper()
	m := broker.NewMemory(20 * time.Millisecond)
	if err := m.Declare(context.Background(), "job-execution"); err != nil {
		t.Fatalf("declare: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func envelope(key string) broker.Envelope {
	return broker.Envelope{
		ID:         "env-" + key,
		Key:        key,
		Channel:    "job-execution",
		Timestamp:  time.Now().UTC(),
		Persistent: true,
		Payload:    json.RawMessage(`{"job_id":"` + key + `"}`),
	}
}

func TestPublishFetchAck(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if err := m.Publish(ctx, envelope(key)); err != nil {
			t.Fatalf("publish %s: %v", key, err)
		}
	}

	d, err := m.Fetch(ctx, "job-execution", "c1")
	if err != nil || d == nil {
		t.Fatalf("fetch: %v %v", d, err)
	}
	if d.Envelope.Key != "a" {
		t.Errorf("fifo order violated: got %s", d.Envelope.Key)
	}
	if m.Pending() != 1 {
		t.Errorf("pending = %d, want 1", m.Pending())
	}

	if err := m.Ack(ctx, d); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if err := m.Ack(ctx, d); !errors.Is(err, broker.ErrUnknownDelivery) {
		t.Errorf("double ack = %v, want ErrUnknownDelivery", err)
	}
	if m.Len("job-execution") != 1 {
		t.Errorf("len = %d, want 1", m.Len("job-execution"))
	}
}

func TestFetchTimesOutWithNil(t *testing.T) {
	m := newMemory(t)

	d, err := m.Fetch(context.Background(), "job-execution", "c1")
	if err != nil || d != nil {
		t.Fatalf("fetch on empty channel = %v, %v; want nil, nil", d, err)
	}
}

func TestFetchWakesOnPublish(t *testing.T) {
	m := broker.NewMemory(time.Second)
	ctx := context.Background()
	if err := m.Declare(ctx, "job-execution"); err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Publish(ctx, envelope("late"))
	}()

	d, err := m.Fetch(ctx, "job-execution", "c1")
	if err != nil || d == nil || d.Envelope.Key != "late" {
		t.Fatalf("fetch = %v, %v", d, err)
	}
}

func TestNackRoutesToDeadLetter(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	m.Publish(ctx, envelope("bad"))
	d, _ := m.Fetch(ctx, "job-execution", "c1")

	if err := m.Nack(ctx, d, "decode payload: unexpected EOF"); err != nil {
		t.Fatalf("nack: %v", err)
	}

	if m.Len("job-execution") != 0 {
		t.Error("nacked envelope was requeued")
	}

	dead, err := m.DeadLetters(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(dead) != 1 {
		t.Fatalf("dead letters = %d, want 1", len(dead))
	}
	if dead[0].Source != "job-execution" || dead[0].Reason == "" || dead[0].Key != "bad" {
		t.Errorf("unexpected dead letter: %+v", dead[0])
	}
}

func TestDeadLettersNewestFirst(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	for _, key := range []string{"1", "2", "3"} {
		m.Publish(ctx, envelope(key))
		d, _ := m.Fetch(ctx, "job-execution", "c1")
		m.Nack(ctx, d, "failed "+key)
	}

	dead, _ := m.DeadLetters(ctx, 2)
	if len(dead) != 2 || dead[0].Key != "3" || dead[1].Key != "2" {
		t.Errorf("unexpected order: %+v", dead)
	}
}

func TestPublishUndeclared(t *testing.T) {
	m := newMemory(t)
	env := envelope("x")
	env.Channel = "nowhere"

	if err := m.Publish(context.Background(), env); !errors.Is(err, broker.ErrUnknownChannel) {
		t.Errorf("publish undeclared = %v", err)
	}

	env.Channel = ""
	if err := m.Publish(context.Background(), env); !errors.Is(err, broker.ErrEmptyChannel) {
		t.Errorf("publish empty channel = %v", err)
	}
}

func TestClosed(t *testing.T) {
	m := broker.NewMemory(time.Second)
	m.Declare(context.Background(), "job-execution")
	m.Close()

	if _, err := m.Fetch(context.Background(), "job-execution", "c1"); !errors.Is(err, broker.ErrClosed) {
		t.Errorf("fetch after close = %v", err)
	}
	if err := m.Ping(context.Background()); !errors.Is(err, broker.ErrClosed) {
		t.Errorf("ping after close = %v", err)
	}
}

func TestTouchPendingOnly(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	if err := m.Publish(ctx, envelope("a")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	d, err := m.Fetch(ctx, "job-execution", "c1")
	if err != nil || d == nil {
		t.Fatalf("fetch: %v %v", d, err)
	}

	if err := m.Touch(ctx, d); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if m.Touches() != 1 {
		t.Errorf("touches = %d, want 1", m.Touches())
	}

	if err := m.Ack(ctx, d); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if err := m.Touch(ctx, d); !errors.Is(err, broker.ErrUnknownDelivery) {
		t.Errorf("touch after ack = %v, want ErrUnknownDelivery", err)
	}
}
