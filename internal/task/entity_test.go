package task

import (
	"reflect"
	"testing"
	"time"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a, b ,, c", []string{"a", "b", "c"}},
		{"", nil},
		{" , ,", nil},
		{"single", []string{"single"}},
		{"  spaced  ", []string{"spaced"}},
		{"a,b,c", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"dedupe keeps first", []string{"b", "a", "b"}, []string{"b", "a"}},
		{"blanks dropped", []string{"", "  ", "x"}, []string{"x"}},
		{"trimmed", []string{" a ", "a"}, []string{"a"}},
		{"empty input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryValuesOmitsUnsetFields(t *testing.T) {
	v := Query{}.Values()
	if len(v) != 0 {
		t.Fatalf("empty query produced parameters: %v", v)
	}

	due := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	q := Query{
		Status:    "todo,doing",
		Priority:  "high",
		DueBefore: due,
		Sort:      "due_at",
		Order:     "asc",
		Limit:     50,
	}
	v = q.Values()

	wantKeys := []string{"status", "priority", "due_before", "sort", "order", "limit"}
	if len(v) != len(wantKeys) {
		t.Fatalf("got %d parameters, want %d: %v", len(v), len(wantKeys), v)
	}
	for _, key := range wantKeys {
		if got := v[key]; len(got) != 1 {
			t.Errorf("parameter %q appears %d times, want exactly once", key, len(got))
		}
	}
	for _, absent := range []string{"context", "tags", "due_after", "updated_since", "cursor"} {
		if _, ok := v[absent]; ok {
			t.Errorf("unset parameter %q was serialized", absent)
		}
	}
	if got := v.Get("due_before"); got != "2026-03-14T15:00:00Z" {
		t.Errorf("due_before = %q", got)
	}
	if got := v.Get("limit"); got != "50" {
		t.Errorf("limit = %q", got)
	}
}

func TestQueryKeyIsCanonical(t *testing.T) {
	a := Query{Status: "todo", Sort: "due_at", Order: "asc"}
	b := Query{Order: "asc", Sort: "due_at", Status: "todo"}
	if a.Key() != b.Key() {
		t.Errorf("equal queries produced different keys: %q vs %q", a.Key(), b.Key())
	}
	c := Query{Status: "done"}
	if a.Key() == c.Key() {
		t.Errorf("different queries share key %q", a.Key())
	}
}

func TestPriorityRank(t *testing.T) {
	order := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}
	if Priority("bogus").Rank() >= PriorityLow.Rank() {
		t.Errorf("unknown priority should rank below low")
	}
}

func TestValidSort(t *testing.T) {
	for _, field := range []string{"created_at", "updated_at", "due_at", "priority", "title"} {
		if !ValidSort(field) {
			t.Errorf("ValidSort(%q) = false", field)
		}
	}
	if ValidSort("id") {
		t.Errorf("ValidSort(%q) = true", "id")
	}
}
