package daterange

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    civil.Date
		wantErr bool
	}{
		{in: "2024-02-29", want: civil.Date{Year: 2024, Month: time.February, Day: 29}},
		{in: " 2024-03-01 ", want: civil.Date{Year: 2024, Month: time.March, Day: 1}},
		{in: "2024-03-01T23:30:00-02:00", want: civil.Date{Year: 2024, Month: time.March, Day: 2}},
		{in: "2023-02-29", wantErr: true},
		{in: "", wantErr: true},
		{in: "03/01/2024", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("expected ErrInvalidDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextCrossesMonthAndYear(t *testing.T) {
	if got := Next(MustParse("2024-02-29")); got != MustParse("2024-03-01") {
		t.Fatalf("leap day successor = %s", got)
	}
	if got := Next(MustParse("2024-12-31")); got != MustParse("2025-01-01") {
		t.Fatalf("year end successor = %s", got)
	}
}

func TestRange(t *testing.T) {
	r, err := New(MustParse("2024-03-04"), MustParse("2024-03-08"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Days() != 5 {
		t.Fatalf("Days = %d", r.Days())
	}
	if !r.Contains(MustParse("2024-03-04")) || !r.Contains(MustParse("2024-03-08")) || r.Contains(MustParse("2024-03-09")) {
		t.Fatal("Contains must include both bounds only")
	}
	if _, err := New(MustParse("2024-03-08"), MustParse("2024-03-04")); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	next := Single(MustParse("2024-03-09"))
	if !r.Adjacent(next) || r.Overlaps(next) {
		t.Fatalf("%s and %s should touch without overlapping", r, next)
	}
	if r.String() != "2024-03-04..2024-03-08" {
		t.Fatalf("String = %q", r.String())
	}

	var seen []civil.Date
	r.Each(func(d civil.Date) bool {
		seen = append(seen, d)
		return len(seen) < 3
	})
	if len(seen) != 3 {
		t.Fatalf("Each did not stop early: %v", seen)
	}
}

func TestCompare(t *testing.T) {
	a, b := MustParse("2024-01-01"), MustParse("2024-01-02")
	if Compare(a, b) != -1 || Compare(b, a) != 1 || Compare(a, a) != 0 {
		t.Fatal("Compare ordering is wrong")
	}
}
