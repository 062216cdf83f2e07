// Package ramadan provides the fasting schedule, the taraweh and khataman trackers and the zakat
// calculators.
package ramadan

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/calendar"
	"github.com/trezcool/amal/core/prayer"
)

type FastingDay struct {
	Day     int       `json:"day"`
	Date    string    `json:"date"`
	Weekday string    `json:"weekday"`
	Imsak   time.Time `json:"imsak"`
	Fajr    time.Time `json:"fajr"`
	Maghrib time.Time `json:"maghrib"` // iftar
	Isha    time.Time `json:"isha"`
}

// UpcomingYear returns the hijri year of the current Ramadan, or of the next one once it is over.
func UpcomingYear(now time.Time, hijriAdjust int) int {
	h := calendar.ToHijri(now, hijriAdjust)
	if h.Month > calendar.Ramadan {
		return h.Year + 1
	}
	return h.Year
}

// Schedule returns the imsak and iftar times of every day of Ramadan of the hijri year at loc.
func Schedule(year int, loc prayer.Location, method prayer.Method, hijriAdjust int) ([]FastingDay, error) {
	if year < 1 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "year", Error: "invalid hijri year"})
	}
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		return nil, prayer.ErrUnknownTimezone
	}

	days := calendar.DaysInMonth(year, calendar.Ramadan)
	schedule := make([]FastingDay, 0, days)
	for d := 1; d <= days; d++ {
		date := calendar.FromHijri(calendar.Hijri{Year: year, Month: calendar.Ramadan, Day: d}, hijriAdjust, tz)
		times, err := prayer.Calculate(date, loc, method)
		if err != nil {
			return nil, errors.Wrapf(err, "calculating times of %s", core.DateKey(date))
		}
		schedule = append(schedule, FastingDay{
			Day:     d,
			Date:    core.DateKey(date),
			Weekday: date.Weekday().String(),
			Imsak:   times.Imsak,
			Fajr:    times.Fajr,
			Maghrib: times.Maghrib,
			Isha:    times.Isha,
		})
	}
	return schedule, nil
}
