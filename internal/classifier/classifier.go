// Package classifier assigns a category label and confidence to inbound
// request text using a tiered heuristic cascade.
package classifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Labels produced by the classifier.
const (
	LabelPrintJobCard     = "print_job_card"
	LabelJobRequest       = "job_request"
	LabelCredentialUpdate = "credential_update"
	LabelQuotationRequest = "quotation_request"
	LabelGeneralInquiry   = "general_inquiry"
	LabelUnknown          = "unknown"
)

// Methods recorded in Metadata.Method.
const (
	MethodStructural = "structural"
	MethodKeyword    = "keyword"
	MethodFallback   = "fallback"
	MethodDefault    = "default"
)

const (
	structuralConfidence = 0.95
	structuralThreshold  = 5
	unknownConfidence    = 0.1
	fallbackCeiling      = 0.7
	inquiryMinBody       = 40
)

// Metadata describes how a label was reached.
type Metadata struct {
	Method  string   `json:"method"`
	Signals []string `json:"signals,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// Result is the outcome of one classification.
type Result struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Metadata   Metadata `json:"metadata"`
}

// EncodeMetadata returns the result as JSON no longer than max bytes,
// dropping trailing signals until it fits.
func (r Result) EncodeMetadata(max int) string {
	for {
		data, err := json.Marshal(r)
		if err != nil {
			return ""
		}
		if len(data) <= max {
			return string(data)
		}
		if len(r.Metadata.Signals) == 0 {
			r.Metadata.Reason = ""
			data, _ = json.Marshal(r)
			return string(data)
		}
		r.Metadata.Signals = r.Metadata.Signals[:len(r.Metadata.Signals)-1]
	}
}

type marker struct {
	name    string
	pattern *regexp.Regexp
}

type category struct {
	label    string
	base     float64
	keywords []string
	patterns []*regexp.Regexp
}

func newCategory(label string, base float64, keywords ...string) category {
	c := category{label: label, base: base, keywords: keywords}
	for _, kw := range keywords {
		c.patterns = append(c.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)))
	}
	return c
}

type fallback struct {
	label      string
	confidence float64
	pattern    *regexp.Regexp
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	markers    []marker
	categories []category
	fallbacks  []fallback
}

// New returns a Classifier with the built-in rule tables.
func New() *Classifier {
	return &Classifier{
		markers: []marker{
			{"company_login", regexp.MustCompile(`\bcompany (login|details|name)\b`)},
			{"user_login", regexp.MustCompile(`\b(user (login|details|name)|username)\b`)},
			{"job_size", regexp.MustCompile(`\bjob size\b`)},
			{"material", regexp.MustCompile(`\bmaterial\b`)},
			{"printing", regexp.MustCompile(`\bprinting\b`)},
			{"wastage", regexp.MustCompile(`\bwastage\b`)},
			{"quantity", regexp.MustCompile(`\bquantity\s*[:=]`)},
			{"client", regexp.MustCompile(`\bclient\s*[:=]`)},
		},
		categories: []category{
			newCategory(LabelJobRequest, 0.9, "job", "print", "estimate", "estimation", "order", "quantity", "job card", "printing"),
			newCategory(LabelCredentialUpdate, 0.85, "password", "login", "credential", "username", "account", "reset"),
			newCategory(LabelQuotationRequest, 0.8, "quote", "quotation", "price", "pricing", "cost", "rate"),
			newCategory(LabelGeneralInquiry, 0.6, "question", "inquiry", "enquiry", "information", "help", "details"),
		},
		fallbacks: []fallback{
			{LabelJobRequest, 0.6, regexp.MustCompile(`\b(jobs?|print(ing|ed)?|estimat\w*|orders?)\b`)},
			{LabelCredentialUpdate, 0.55, regexp.MustCompile(`\b(pass(word)?|log ?in|credentials?|user ?name)\b`)},
			{LabelQuotationRequest, 0.5, regexp.MustCompile(`\b(costs?|prices?|quot\w*|rates?|budget)\b`)},
		},
	}
}

// Classify labels subject and body. It never fails: an internal error
// yields LabelUnknown with the reason recorded.
func (c *Classifier) Classify(subject, body string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Label:      LabelUnknown,
				Confidence: unknownConfidence,
				Metadata:   Metadata{Method: MethodDefault, Reason: fmt.Sprintf("classifier failure: %v", r)},
			}
		}
	}()

	text := Normalize(subject + " " + body)

	if signals := c.structural(text); len(signals) >= structuralThreshold {
		return Result{
			Label:      LabelPrintJobCard,
			Confidence: structuralConfidence,
			Metadata:   Metadata{Method: MethodStructural, Signals: signals},
		}
	}

	res = c.keywords(text)
	if res.Label == LabelUnknown || res.Confidence >= fallbackCeiling {
		return res
	}

	if fb, ok := c.fallback(text, Normalize(body)); ok {
		fb.Metadata.Reason = fmt.Sprintf("keyword confidence %.2f below %.2f", res.Confidence, fallbackCeiling)
		return fb
	}
	return res
}

func (c *Classifier) structural(text string) []string {
	var signals []string
	for _, m := range c.markers {
		if m.pattern.MatchString(text) {
			signals = append(signals, m.name)
		}
	}
	return signals
}

func (c *Classifier) keywords(text string) Result {
	for _, cat := range c.categories {
		var matched []string
		for i, p := range cat.patterns {
			if p.MatchString(text) {
				matched = append(matched, cat.keywords[i])
			}
		}
		if len(matched) == 0 {
			continue
		}

		score := float64(len(matched))/float64(len(cat.keywords)) + 0.5
		return Result{
			Label:      cat.label,
			Confidence: min(cat.base, score),
			Metadata:   Metadata{Method: MethodKeyword, Signals: matched},
		}
	}

	return Result{
		Label:      LabelUnknown,
		Confidence: unknownConfidence,
		Metadata:   Metadata{Method: MethodDefault, Reason: "no category keywords matched"},
	}
}

func (c *Classifier) fallback(text, body string) (Result, bool) {
	for _, fb := range c.fallbacks {
		if m := fb.pattern.FindString(text); m != "" {
			return Result{
				Label:      fb.label,
				Confidence: fb.confidence,
				Metadata:   Metadata{Method: MethodFallback, Signals: []string{m}},
			}, true
		}
	}

	if len(body) >= inquiryMinBody {
		return Result{
			Label:      LabelGeneralInquiry,
			Confidence: 0.3,
			Metadata:   Metadata{Method: MethodFallback, Signals: []string{"body_length"}},
		}, true
	}
	return Result{}, false
}

// Normalize lowercases s and collapses whitespace runs to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
