package period

import (
	"errors"
	"testing"
	"time"
)

func TestOf_SameMonthSameKey(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
	}{
		{
			name: "end of month vs start of month",
			a:    time.Date(2013, time.January, 31, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "leap day vs first day",
			a:    time.Date(2012, time.February, 29, 23, 59, 59, 0, time.UTC),
			b:    time.Date(2012, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december boundary",
			a:    time.Date(2014, time.December, 31, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2014, time.December, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Of(tt.a) != Of(tt.b) {
				t.Errorf("Of(%v) = %v, Of(%v) = %v; want equal", tt.a, Of(tt.a), tt.b, Of(tt.b))
			}
		})
	}
}

func TestOf_EveryDayOfYear(t *testing.T) {
	start := time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() == 2013; d = d.AddDate(0, 0, 1) {
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		if Of(d) != Of(first) {
			t.Fatalf("Of(%s) = %v, want %v", d.Format("2006-01-02"), Of(d), Of(first))
		}
	}
}

func TestOf_DifferentMonthsDiffer(t *testing.T) {
	jan := Of(time.Date(2013, time.January, 31, 0, 0, 0, 0, time.UTC))
	feb := Of(time.Date(2013, time.February, 1, 0, 0, 0, 0, time.UTC))
	if jan == feb {
		t.Fatalf("expected different periods, both %v", jan)
	}
	if !(jan < feb) {
		t.Errorf("expected %v < %v", jan, feb)
	}
}

func TestPeriodString(t *testing.T) {
	p := New(2013, time.January)
	if p.String() != "2013-01" {
		t.Errorf("String() = %s, want 2013-01", p.String())
	}
	if p.Year() != 2013 || p.Month() != time.January {
		t.Errorf("Year/Month = %d/%v", p.Year(), p.Month())
	}
	if got := New(2014, time.January); got != New(2013, time.December)+1 {
		t.Errorf("January 2014 = %s, want one month after 2013-12", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2013-01", "2013-01", false},
		{"2013-01-31", "2013-01", false},
		{" 2015-11 ", "2015-11", false},
		{"2013/01", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2013-01-31", time.Date(2013, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"2013-01-31 14:22:05", time.Date(2013, 1, 31, 14, 22, 5, 0, time.UTC)},
		{"2013-01-31 14:22:05.250", time.Date(2013, 1, 31, 14, 22, 5, 250000000, time.UTC)},
		{"2013-01-31T14:22:05", time.Date(2013, 1, 31, 14, 22, 5, 0, time.UTC)},
		{"1/31/2013", time.Date(2013, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"1/31/2013 14:22", time.Date(2013, 1, 31, 14, 22, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2013-13-01", "31.01.2013"} {
		_, err := ParseTimestamp(in)
		if !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("ParseTimestamp(%q) error = %v, want ErrInvalidTimestamp", in, err)
		}
	}
}

func TestParseTimestamp_OffsetKeepsWallClockMonth(t *testing.T) {
	ts, err := ParseTimestamp("2013-01-31T23:30:00-07:00")
	if err != nil {
		t.Fatalf("ParseTimestamp failed: %v", err)
	}
	if Of(ts).String() != "2013-01" {
		t.Errorf("Of(%v) = %s, want 2013-01", ts, Of(ts))
	}
}
