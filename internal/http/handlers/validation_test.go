package handlers

import (
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
)

func TestParseTimeParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		invalid bool
	}{
		{raw: "2024-03-01T10:00:00Z", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		// "+02:00" arrives as " 02:00" after query decoding
		{raw: "2024-03-01T12:00:00 02:00", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{raw: "2024-03-01", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ve := apperr.NewValidationError()
			got := parseTimeParam(ve, "since", tt.raw)
			if tt.invalid {
				if got != nil || ve.OrNil() == nil {
					t.Errorf("expected a field error, got %v", got)
				}
				return
			}
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLowStockThreshold(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{" 7 ", 7},
		{"", 5},
		{"true", 5},
	}
	for _, tt := range tests {
		if got := lowStockThreshold(tt.raw, 5); got != tt.want {
			t.Errorf("lowStockThreshold(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestPagination(t *testing.T) {
	ve := apperr.NewValidationError()
	offset, limit := pagination(ve, "10", "25")
	if ve.OrNil() != nil || *offset != 10 || *limit != 25 {
		t.Fatalf("unexpected pagination %v %v %v", offset, limit, ve)
	}

	ve = apperr.NewValidationError()
	pagination(ve, "-1", "0")
	if len(ve.Fields) != 2 {
		t.Errorf("expected offset and limit errors, got %v", ve.Fields)
	}
}

func TestParseRecords(t *testing.T) {
	rows, errs, err := parseRecords([][]string{
		{"Name", " Price ", "quantity"},
		{"Mouse", "25.99", "10"},
		{"Pad", "", ""},
		{"Cable", "1", "many"},
		{"Short"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || len(errs) != 1 || errs[0].Field != "row 4" {
		t.Fatalf("unexpected rows %+v errors %+v", rows, errs)
	}
	if rows[0].Price.String() != "25.99" || *rows[0].Quantity != 10 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].Price != nil || rows[1].Quantity != nil || rows[1].Description != nil {
		t.Errorf("empty and missing cells must stay unset: %+v", rows[1])
	}
	if rows[2].Name != "Short" || rows[2].Price != nil {
		t.Errorf("short records must keep missing columns unset: %+v", rows[2])
	}

	if _, _, err := parseRecords([][]string{{"price"}}); err == nil {
		t.Error("expected an error without a name column")
	}
}
