// Package redact masks secret values in text that leaves the process:
// stored error messages, step records and notifications.
package redact

import (
	"regexp"
	"slices"
	"strings"
)

// Mask replaces each redacted value.
const Mask = "[REDACTED]"

var assignment = regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|token)(\s*[:=]\s*)(\S+)`)

// Redactor masks a fixed set of secret values plus any inline
// password/secret/token assignments.
type Redactor struct {
	secrets []string
}

// New returns a Redactor for secrets. Empty values are ignored and longer
// values are replaced first so a secret containing another is fully masked.
func New(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(r.secrets, s) {
			r.secrets = append(r.secrets, s)
		}
	}
	slices.SortFunc(r.secrets, func(a, b string) int { return len(b) - len(a) })
	return r
}

// String masks s.
func (r *Redactor) String(s string) string {
	if r != nil {
		for _, secret := range r.secrets {
			s = strings.ReplaceAll(s, secret, Mask)
		}
	}
	return assignment.ReplaceAllString(s, "${1}${2}"+Mask)
}

// Strings masks each element of ss in place and returns it.
func (r *Redactor) Strings(ss []string) []string {
	for i := range ss {
		ss[i] = r.String(ss[i])
	}
	return ss
}

// Error returns the masked err text, or "" for a nil error.
func (r *Redactor) Error(err error) string {
	if err == nil {
		return ""
	}
	return r.String(err.Error())
}
