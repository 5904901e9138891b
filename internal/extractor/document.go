package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type section struct {
	start, end int
}

// document is message text split into lines with its section headers
// located. A section runs from the line after its header to the next header.
type document struct {
	lines    []string
	sections map[string]section
}

type header struct {
	kind    string
	pattern *regexp.Regexp
}

func newDocument(text string, headers []header) *document {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	type mark struct {
		kind string
		line int
	}
	var marks []mark
	for i, line := range lines {
		for _, h := range headers {
			if h.pattern.MatchString(line) {
				marks = append(marks, mark{h.kind, i})
				break
			}
		}
	}

	d := &document{lines: lines, sections: make(map[string]section)}
	for i, m := range marks {
		if _, seen := d.sections[m.kind]; seen {
			continue
		}
		end := len(lines)
		if i+1 < len(marks) {
			end = marks[i+1].line
		}
		d.sections[m.kind] = section{start: m.line + 1, end: end}
	}
	return d
}

// find returns the first value of re within lines [from, to) and its line.
func (d *document) find(re *regexp.Regexp, from, to int) (string, int, bool) {
	from = max(from, 0)
	to = min(to, len(d.lines))
	for i := from; i < to; i++ {
		if m := re.FindStringSubmatch(d.lines[i]); m != nil && m[1] != "" {
			return m[1], i, true
		}
	}
	return "", -1, false
}

func (d *document) first(re *regexp.Regexp) (string, int, bool) {
	return d.find(re, 0, len(d.lines))
}

// inSection searches the section of kind, when the document has one.
func (d *document) inSection(re *regexp.Regexp, kind string) (string, int, bool) {
	s, ok := d.sections[kind]
	if !ok {
		return "", -1, false
	}
	return d.find(re, s.start, s.end)
}

// scoped prefers the section of kind and falls back to the whole document.
func (d *document) scoped(re *regexp.Regexp, kind string) (string, int, bool) {
	if v, i, ok := d.inSection(re, kind); ok {
		return v, i, true
	}
	return d.first(re)
}

// fieldPattern matches "<label>: value" or "<label> = value" on one line.
func fieldPattern(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^[ \t*•-]*(?:` + labels + `)[ \t]*[:=][ \t]*(.*?)[ \t]*$`)
}

// headerPattern matches a line holding only a section title.
func headerPattern(titles string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^[ \t*#•-]*(?:` + titles + `)[ \t]*:?[ \t]*$`)
}

var (
	leadingNumber = regexp.MustCompile(`^[-+]?\d[\d,]*(?:\.\d+)?`)
	currency      = regexp.MustCompile(`(?i)^(?:rs\.?|inr|usd|[₹$€£])\s*`)
)

// parseNumber reads the leading number of raw, ignoring thousands separators
// and trailing units.
func parseNumber(raw string) (float64, error) {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return n, nil
}

// parseMoney is parseNumber after stripping a currency prefix.
func parseMoney(raw string) (float64, error) {
	return parseNumber(currency.ReplaceAllString(strings.TrimSpace(raw), ""))
}
