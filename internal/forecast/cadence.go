package forecast

import (
	"time"

	"github.com/scmhub/calendar"

	"MarketAnalyst/internal/catalog"
	"MarketAnalyst/internal/model"
)

// BusinessCalendar decides whether a market trades on a given day.
type BusinessCalendar interface {
	IsBusinessDay(t time.Time) bool
}

// Cadence generates future timestamps at a sampling interval.
type Cadence struct {
	Interval model.Interval
	// WeekdayOnly skips Saturdays and Sundays for daily and intraday steps.
	WeekdayOnly bool
	// Holidays additionally skips exchange holidays; nil disables the check.
	Holidays BusinessCalendar
}

// maxSkipped bounds the scan for tradable steps so a calendar that never
// trades cannot loop forever.
const maxSkipped = 20000

// Next returns n timestamps strictly after last.
func (c Cadence) Next(last time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for k, skipped := 1, 0; len(out) < n && skipped < maxSkipped; k++ {
		t := c.Interval.Advance(last, k)
		if c.skip(t) {
			skipped++
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c Cadence) skip(t time.Time) bool {
	if c.Interval != model.Interval1d && !c.Interval.Intraday() {
		return false
	}
	if c.WeekdayOnly {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	return c.Holidays != nil && !c.Holidays.IsBusinessDay(t)
}

// exchangeDays adapts an exchange calendar to timestamps produced by the
// store: daily bars carry the exchange-local date at midnight UTC, intraday
// bars are UTC instants.
type exchangeDays struct {
	cal      *calendar.Calendar
	intraday bool
}

func (e exchangeDays) IsBusinessDay(t time.Time) bool {
	if e.intraday {
		t = t.In(e.cal.Loc)
	}
	return e.cal.IsBusinessDay(time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, e.cal.Loc))
}

// ExchangeCalendar returns the holiday calendar of the exchange listing symbol,
// or nil when no calendar is known for it.
func ExchangeCalendar(symbol string, interval model.Interval) BusinessCalendar {
	cal := calendar.GetCalendar(catalog.Exchange(symbol))
	if cal == nil {
		return nil
	}
	return exchangeDays{cal: cal, intraday: interval.Intraday()}
}
