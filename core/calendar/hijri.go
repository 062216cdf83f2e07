// Package calendar converts between Gregorian and Hijri dates using the tabular (arithmetic)
// Islamic calendar. Local moon sighting can shift the start of a month by a day or two, which
// is what the adjustment parameter is for.
package calendar

import (
	"fmt"
	"math"
	"time"
)

const islamicEpochJDN = 1948440 // 1 Muharram 1 AH (16 July 622, Julian)

// Hijri months.
const (
	Muharram = iota + 1
	Safar
	RabiAlAwwal
	RabiAlThani
	JumadaAlUla
	JumadaAlAkhirah
	Rajab
	Shaban
	Ramadan
	Shawwal
	DhulQadah
	DhulHijjah
)

var monthNames = [...]string{
	"", "Muharram", "Safar", "Rabi' al-Awwal", "Rabi' al-Thani", "Jumada al-Ula", "Jumada al-Akhirah",
	"Rajab", "Sha'ban", "Ramadan", "Shawwal", "Dhu al-Qa'dah", "Dhu al-Hijjah",
}

// Seasons gate seasonal content.
const (
	SeasonRamadan    = "ramadan"
	SeasonShaban     = "shaban"
	SeasonDhulHijjah = "dhulhijjah"
)

type Hijri struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (h Hijri) String() string {
	return fmt.Sprintf("%d %s %d", h.Day, MonthName(h.Month), h.Year)
}

func (h Hijri) MonthName() string { return MonthName(h.Month) }
func (h Hijri) IsRamadan() bool   { return h.Month == Ramadan }
func (h Hijri) IsShaban() bool    { return h.Month == Shaban }

// Season returns the seasonal tag of the date, if any.
func (h Hijri) Season() string {
	switch h.Month {
	case Ramadan:
		return SeasonRamadan
	case Shaban:
		return SeasonShaban
	case DhulHijjah:
		return SeasonDhulHijjah
	}
	return ""
}

func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month]
}

// IsLeapYear reports whether Dhu al-Hijjah has 30 days in the given year.
func IsLeapYear(year int) bool {
	return floorMod(14+11*year, 30) < 11
}

// DaysInMonth returns 30 for odd months, 29 for even months and 30 for Dhu al-Hijjah of leap years.
func DaysInMonth(year, month int) int {
	if month%2 == 1 || (month == DhulHijjah && IsLeapYear(year)) {
		return 30
	}
	return 29
}

// ToHijri converts the calendar date of t (in t's location) to a Hijri date.
// adjustDays shifts the result to follow local sighting. Dates before the Islamic epoch are
// clamped to 1 Muharram 1.
func ToHijri(t time.Time, adjustDays int) Hijri {
	y, m, d := t.Date()
	jdn := gregorianToJDN(y, int(m), d) + adjustDays
	if jdn < islamicEpochJDN {
		return Hijri{Year: 1, Month: Muharram, Day: 1}
	}
	return jdnToHijri(jdn)
}

// FromHijri returns midnight (in loc) of the Gregorian date matching h.
func FromHijri(h Hijri, adjustDays int, loc *time.Location) time.Time {
	y, m, d := jdnToGregorian(hijriToJDN(h.Year, h.Month, h.Day) - adjustDays)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
}

// Valid reports whether h is a representable tabular date.
func (h Hijri) Valid() bool {
	return h.Year >= 1 && h.Month >= 1 && h.Month <= 12 && h.Day >= 1 && h.Day <= DaysInMonth(h.Year, h.Month)
}

func hijriToJDN(year, month, day int) int {
	return day + (59*(month-1)+1)/2 + (year-1)*354 + floorDiv(3+11*year, 30) + islamicEpochJDN - 1
}

func jdnToHijri(jdn int) Hijri {
	year := floorDiv(30*(jdn-islamicEpochJDN)+10646, 10631)
	month := int(math.Ceil(float64(jdn-(29+hijriToJDN(year, 1, 1)))/29.5)) + 1
	if month > 12 {
		month = 12
	}
	if month < 1 {
		month = 1
	}
	day := jdn - hijriToJDN(year, month, 1) + 1
	return Hijri{Year: year, Month: month, Day: day}
}

func gregorianToJDN(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

func jdnToGregorian(jdn int) (year, month, day int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	day = e - (153*m+2)/5 + 1
	month = m + 3 - 12*(m/10)
	year = 100*b + d - 4800 + m/10
	return year, month, day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - b*floorDiv(a, b)
}
