package mission

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/calendar"
	"github.com/trezcool/amal/core/prayer"
)

// Lock reasons
const (
	ReasonNotToday    = "not_today"
	ReasonOutOfSeason = "out_of_season"
	ReasonTooEarly    = "too_early"
	ReasonExpired     = "expired"
)

// DayContext is everything Validate needs to know about the user's current day.
type DayContext struct {
	Now   time.Time // in the user's time zone
	Times prayer.Times
	Hijri calendar.Hijri
}

// NewDayContext computes the prayer times and hijri date of now's day at loc.
func NewDayContext(now time.Time, loc prayer.Location, method prayer.Method, hijriAdjust int) (DayContext, error) {
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		return DayContext{}, prayer.ErrUnknownTimezone
	}
	now = now.In(tz)
	times, err := prayer.Calculate(now, loc, method)
	if err != nil {
		return DayContext{}, errors.Wrap(err, "calculating prayer times")
	}
	return DayContext{
		Now:   now,
		Times: times,
		Hijri: calendar.ToHijri(now, hijriAdjust),
	}, nil
}

func (dc DayContext) Date() string { return core.DateKey(dc.Now) }

type Status struct {
	Locked   bool       `json:"locked"`
	IsLate   bool       `json:"is_late"`
	IsEarly  bool       `json:"is_early"`
	Reason   string     `json:"reason,omitempty"`
	OpensAt  *time.Time `json:"opens_at,omitempty"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`
}

// Validate evaluates m's rule at dc.
//
// Calendar gates (weekday, hijri month, hijri day) lock the mission for the whole day.
// Before the window opens the mission is locked and early; after it closes the mission is late,
// or locked when the rule forbids late completion.
func Validate(m Mission, dc DayContext) Status {
	r := m.Rule

	if st := CalendarStatus(m, dc.Now.Weekday(), dc.Hijri); st.Locked || r.Window == nil {
		return st
	}

	var st Status
	if r.Window.From != nil {
		if start := r.Window.From.Resolve(dc); !start.IsZero() {
			st.OpensAt = &start
			if dc.Now.Before(start) {
				st.Locked, st.IsEarly, st.Reason = true, true, ReasonTooEarly
			}
		}
	}
	if r.Window.To != nil {
		if end := r.Window.To.Resolve(dc); !end.IsZero() {
			st.ClosesAt = &end
			if !st.Locked && !dc.Now.Before(end) {
				if r.LockAfterEnd {
					st.Locked, st.Reason = true, ReasonExpired
				} else {
					st.IsLate = true
				}
			}
		}
	}
	return st
}

// CalendarStatus applies the day-wide gates of m's rule (weekday, hijri month, hijri day).
// It ignores the time window, so it only needs the date.
func CalendarStatus(m Mission, wd time.Weekday, h calendar.Hijri) Status {
	r := m.Rule
	if len(r.Weekdays) > 0 && !containsWeekday(r.Weekdays, wd) {
		return Status{Locked: true, Reason: ReasonNotToday}
	}
	if len(r.HijriMonths) > 0 && !containsInt(r.HijriMonths, h.Month) {
		return Status{Locked: true, Reason: ReasonOutOfSeason}
	}
	if len(r.HijriDays) > 0 && !containsInt(r.HijriDays, h.Day) {
		return Status{Locked: true, Reason: ReasonNotToday}
	}
	return Status{}
}

// PeriodKey identifies the period a completion of m on day belongs to:
// the date for daily missions, the ISO week for weekly ones and the hijri month for seasonal ones.
func PeriodKey(m Mission, day time.Time, h calendar.Hijri) string {
	switch m.Period {
	case Weekly:
		y, w := day.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Seasonal:
		return fmt.Sprintf("H%d-%02d", h.Year, h.Month)
	default:
		return core.DateKey(day)
	}
}

// Award returns the XP earned by completing m with status st.
// Late completions earn half the reward, rounded down but never below 1.
func Award(m Mission, st Status) (int, error) {
	if st.Locked {
		return 0, ErrLocked
	}
	if st.IsLate {
		xp := m.XP / 2
		if xp < 1 {
			xp = 1
		}
		return xp, nil
	}
	return m.XP, nil
}

func containsWeekday(days []Weekday, d time.Weekday) bool {
	for _, wd := range days {
		if time.Weekday(wd) == d {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
