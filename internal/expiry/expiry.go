package expiry

import (
	"errors"
	"fmt"
	"time"
)

// MinYear is the lowest two-digit expiry year accepted on a card face.
const MinYear = 22

// YearsAhead is how many years past the current one an expiry may reach.
const YearsAhead = 5

var (
	ErrFormat = errors.New("expiry must be MM/YY")
	ErrMonth  = errors.New("expiry month must be 01..12")
)

var defaultLoc = time.UTC

// SetDefaultExpiryLocation sets the default time location for expiry calculations (fallback UTC).
func SetDefaultExpiryLocation(loc *time.Location) {
	if loc != nil {
		defaultLoc = loc
	}
}

// MaxYear returns the highest two-digit expiry year accepted at 'now'.
func MaxYear(now time.Time) int {
	return now.In(defaultLoc).Year()%100 + YearsAhead
}

// YearInWindow reports whether a two-digit year lies in [MinYear, MaxYear(now)].
func YearInWindow(yy int, now time.Time) bool {
	return yy >= MinYear && yy <= MaxYear(now)
}

// CardFace returns expiry as MM/YY for card imprint.
func CardFace(issue time.Time, years int) string {
	t := issue.In(defaultLoc)
	y := (t.Year() + years) % 100
	m := int(t.Month())
	return fmt.Sprintf("%02d/%02d", m, y)
}

// ParseCardFace parses a strict "MM/YY" string into month and two-digit year.
// ErrFormat is returned when the shape is wrong, an error wrapping ErrMonth
// when the month is outside 01..12. The year is not range checked.
func ParseCardFace(in string) (month, year int, err error) {
	if len(in) != 5 || in[2] != '/' {
		return 0, 0, ErrFormat
	}
	for _, i := range []int{0, 1, 3, 4} {
		if in[i] < '0' || in[i] > '9' {
			return 0, 0, ErrFormat
		}
	}
	month = int(in[0]-'0')*10 + int(in[1]-'0')
	year = int(in[3]-'0')*10 + int(in[4]-'0')
	if month < 1 || month > 12 {
		return month, year, fmt.Errorf("%w: got %02d", ErrMonth, month)
	}
	return month, year, nil
}
