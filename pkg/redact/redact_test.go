package redact_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/redact"
)

func TestStringMasksKnownSecrets(t *testing.T) {
	r := redact.New("hunter2", "", "hunter2")
	got := r.String("login failed for acme with hunter2")
	if strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %q", got)
	}
	if !strings.Contains(got, redact.Mask) {
		t.Errorf("mask missing: %q", got)
	}
}

func TestStringMasksLongestFirst(t *testing.T) {
	r := redact.New("abc", "abcdef")
	if got := r.String("value abcdef"); got != "value "+redact.Mask {
		t.Errorf("got %q", got)
	}
}

func TestStringMasksAssignments(t *testing.T) {
	tests := []string{
		"Password: s3cret",
		"password = s3cret",
		"token:s3cret",
	}

	var r *redact.Redactor
	for _, in := range tests {
		got := r.String(in)
		if strings.Contains(got, "s3cret") {
			t.Errorf("String(%q) = %q, secret leaked", in, got)
		}
	}
}

func TestError(t *testing.T) {
	r := redact.New("pa55")
	if got := r.Error(nil); got != "" {
		t.Errorf("Error(nil) = %q", got)
	}
	if got := r.Error(errors.New("bad pa55")); strings.Contains(got, "pa55") {
		t.Errorf("Error leaked secret: %q", got)
	}
}
