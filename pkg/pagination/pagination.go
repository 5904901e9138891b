// Package pagination handles limit/offset windows over list endpoints.
package pagination

import (
	"net/url"
	"strconv"
)

// Window is a requested slice of a result set.
type Window struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the window to cfg.
func (w *Window) Normalize(cfg Config) {
	if w.Limit < 1 {
		w.Limit = cfg.DefaultLimit
	}
	if w.Limit > cfg.MaxLimit {
		w.Limit = cfg.MaxLimit
	}
	if w.Offset < 0 {
		w.Offset = 0
	}
}

// WindowFromQuery reads the limit and offset query parameters and
// normalizes them. Unparseable values fall back to defaults.
func WindowFromQuery(values url.Values, cfg Config) Window {
	limit, _ := strconv.Atoi(values.Get("limit"))
	offset, _ := strconv.Atoi(values.Get("offset"))

	w := Window{Limit: limit, Offset: offset}
	w.Normalize(cfg)
	return w
}

// Result is one window of items plus the total matching count.
type Result[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewResult wraps items for w. A nil items slice encodes as [].
func NewResult[T any](items []T, total int, w Window) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:  items,
		Total:  total,
		Limit:  w.Limit,
		Offset: w.Offset,
	}
}
