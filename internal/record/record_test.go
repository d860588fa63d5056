// Where: internal/record/record_test.go
// What: Tests for DomainRecord field constraints.
// Why: The validator tags are the contract every producer relies on.
package record

import (
	"strings"
	"testing"
)

func validRecord() DomainRecord {
	return DomainRecord{
		Title:       "quarterly capacity report",
		Tags:        []string{"ops"},
		Sensitivity: SensitivityPublic,
	}
}

func TestValidateAcceptsMinimalRecord(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadRecords(t *testing.T) {
	longDesc := strings.Repeat("d", 801)
	cases := []struct {
		name   string
		mutate func(*DomainRecord)
	}{
		{"empty title", func(r *DomainRecord) { r.Title = "" }},
		{"title too long", func(r *DomainRecord) { r.Title = strings.Repeat("t", 101) }},
		{"description too long", func(r *DomainRecord) { r.Description = &longDesc }},
		{"unknown sensitivity", func(r *DomainRecord) { r.Sensitivity = "TopSecret" }},
		{"reference without url", func(r *DomainRecord) {
			r.References = []Hyperlink{{Title: "docs"}}
		}},
		{"reference with relative url", func(r *DomainRecord) {
			r.References = []Hyperlink{{URL: "docs/guide", Title: "docs"}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			tc.mutate(&rec)
			if err := rec.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSensitivityLevelsAreOrdered(t *testing.T) {
	levels := Levels()
	if len(levels) != 4 {
		t.Fatalf("expected 4 levels, got %d", len(levels))
	}
	if levels[0] != SensitivityPublic || levels[3] != SensitivityRestricted {
		t.Fatalf("levels out of order: %v", levels)
	}
}
