package marketdata

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// Period is a lookback window such as "2y", "6mo", "3wk" or "30d", or the
// special value "ytd" (since January 1st of the end year).
type Period struct {
	Years  int
	Months int
	Days   int
	ytd    bool
}

var periodPattern = regexp.MustCompile(`^(\d+)(y|mo|wk|d)$`)

// DefaultPeriod is the lookback used when neither a period nor a start date is given.
const DefaultPeriod = "2y"

// ParsePeriod parses a period string.
func ParsePeriod(s string) (Period, error) {
	if s == "ytd" {
		return Period{ytd: true}, nil
	}

	match := periodPattern.FindStringSubmatch(s)
	if match == nil {
		return Period{}, errors.Newf(errors.ErrCodeInvalidPeriod, "invalid period %q, expected forms like 2y, 6mo, 3wk, 30d or ytd", s)
	}

	n, err := strconv.Atoi(match[1])
	if err != nil || n == 0 {
		return Period{}, errors.Newf(errors.ErrCodeInvalidPeriod, "invalid period %q, length must be a positive integer", s)
	}

	switch match[2] {
	case "y":
		return Period{Years: n}, nil
	case "mo":
		return Period{Months: n}, nil
	case "wk":
		return Period{Days: 7 * n}, nil
	default:
		return Period{Days: n}, nil
	}
}

// Start returns the first day of the period ending at end.
func (p Period) Start(end time.Time) time.Time {
	if p.ytd {
		return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	}

	return end.AddDate(-p.Years, -p.Months, -p.Days)
}
