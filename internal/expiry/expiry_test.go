package expiry

import (
	"errors"
	"testing"
	"time"
)

func TestCardFace_Rollover(t *testing.T) {
	issue := time.Date(2029, time.December, 15, 0, 0, 0, 0, time.UTC)
	if got := CardFace(issue, 1); got != "12/30" {
		t.Fatalf("CardFace got %s want %s", got, "12/30")
	}
}

func TestCardFace_LeapIssue(t *testing.T) {
	issue := time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC)
	if got := CardFace(issue, 3); got != "02/31" {
		t.Fatalf("CardFace got %s want %s", got, "02/31")
	}
}

func TestMaxYear(t *testing.T) {
	now := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)
	if got := MaxYear(now); got != 31 {
		t.Fatalf("MaxYear got %d want 31", got)
	}

	cases := []struct {
		yy int
		ok bool
	}{
		{21, false}, {22, true}, {26, true}, {31, true}, {32, false},
	}
	for _, c := range cases {
		if got := YearInWindow(c.yy, now); got != c.ok {
			t.Fatalf("YearInWindow(%d) = %v want %v", c.yy, got, c.ok)
		}
	}
}

func TestParseCardFace(t *testing.T) {
	cases := []struct {
		in    string
		month int
		year  int
		err   error
	}{
		{"12/25", 12, 25, nil},
		{"01/30", 1, 30, nil},
		{"00/25", 0, 25, ErrMonth},
		{"13/25", 13, 25, ErrMonth},
		{"1225", 0, 0, ErrFormat},
		{"1/25", 0, 0, ErrFormat},
		{"12-25", 0, 0, ErrFormat},
		{"ab/cd", 0, 0, ErrFormat},
		{"12/2025", 0, 0, ErrFormat},
		{"", 0, 0, ErrFormat},
	}
	for _, c := range cases {
		m, y, err := ParseCardFace(c.in)
		if !errors.Is(err, c.err) {
			t.Fatalf("ParseCardFace(%q) err = %v want %v", c.in, err, c.err)
		}
		if c.err != ErrFormat && (m != c.month || y != c.year) {
			t.Fatalf("ParseCardFace(%q) = %d,%d want %d,%d", c.in, m, y, c.month, c.year)
		}
	}

	_, _, err := ParseCardFace("13/25")
	if err == nil || err.Error() != "expiry month must be 01..12: got 13" {
		t.Fatalf("ParseCardFace(13/25) err = %v", err)
	}
}

func TestSetDefaultExpiryLocation(t *testing.T) {
	defer SetDefaultExpiryLocation(time.UTC)

	// 2029-12-31 20:00 in UTC is already 2030 in Sydney.
	now := time.Date(2029, time.December, 31, 20, 0, 0, 0, time.UTC)
	loc, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	SetDefaultExpiryLocation(loc)
	if got := MaxYear(now); got != 35 {
		t.Fatalf("MaxYear in Sydney got %d want 35", got)
	}
	SetDefaultExpiryLocation(nil)
	if got := MaxYear(now); got != 35 {
		t.Fatalf("nil location must keep previous default, got %d", got)
	}
}
