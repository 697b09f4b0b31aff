package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"garageflow/internal/common"
)

var periodPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// BillingPeriod is a calendar month in UTC
type BillingPeriod struct {
	Year  int
	Month time.Month
}

func ParseBillingPeriod(raw string) (BillingPeriod, error) {
	m := periodPattern.FindStringSubmatch(raw)
	if m == nil {
		return BillingPeriod{}, fmt.Errorf("%w: got %q", common.ErrInvalidBillingPeriod, raw)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || year < 2000 {
		return BillingPeriod{}, fmt.Errorf("%w: got %q", common.ErrInvalidBillingPeriod, raw)
	}
	return BillingPeriod{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the month containing t
func PeriodOf(t time.Time) BillingPeriod {
	t = t.UTC()
	return BillingPeriod{Year: t.Year(), Month: t.Month()}
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first instant of the month
func (p BillingPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month (exclusive)
func (p BillingPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p BillingPeriod) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start()) && t.Before(p.End())
}

func (p BillingPeriod) Previous() BillingPeriod {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}
