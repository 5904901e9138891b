package query_test

import (
	"reflect"
	"testing"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/query"
)

var projection = query.NewProjection("jobs", "j").
	Project("id", "ID").
	Project("status", "Status").
	Project("sender", "Sender").
	Project("created_at", "CreatedAt")

func TestBuildNoConditions(t *testing.T) {
	q, args := query.NewBuilder(projection, query.SortField{Field: "CreatedAt", Descending: true}).Build()

	want := "SELECT j.id, j.status, j.sender, j.created_at FROM jobs j ORDER BY j.created_at DESC"
	if q != want {
		t.Errorf("got  %s\nwant %s", q, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWindowNumbersPlaceholders(t *testing.T) {
	status := "failed"
	sender := "acme"

	b := query.NewBuilder(projection)
	query.WhereEquals(b, "Status", &status)
	query.WhereIn(b, "ID", []string{"a", "b"})
	b.WhereContains("Sender", &sender)

	q, args := b.BuildWindow(10, 20)

	want := "SELECT j.id, j.status, j.sender, j.created_at FROM jobs j" +
		" WHERE j.status = $1 AND j.id IN ($2, $3) AND j.sender ILIKE $4 LIMIT 10 OFFSET 20"
	if q != want {
		t.Errorf("got  %s\nwant %s", q, want)
	}
	if !reflect.DeepEqual(args, []any{"failed", "a", "b", "%acme%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildCountSkipsNil(t *testing.T) {
	b := query.NewBuilder(projection)
	query.WhereEquals[string](b, "Status", nil)

	q, args := b.BuildCount()
	if q != "SELECT COUNT(*) FROM jobs j" || args != nil {
		t.Errorf("got %s %v", q, args)
	}
}

func TestParseSortFields(t *testing.T) {
	got := query.ParseSortFields("-CreatedAt, Status, Bogus", projection)
	want := []query.SortField{{Field: "CreatedAt", Descending: true}, {Field: "Status"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v", got)
	}
}

func TestUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown field")
		}
	}()
	projection.Column("Missing")
}
