// Package prayer computes daily prayer times from the sun's position.
package prayer

import (
	"math"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/pkg/errors"
)

var (
	ErrUndefinedTime   = errors.New("prayer time is undefined at this latitude and date")
	ErrUnknownTimezone = errors.New("unknown time zone")
)

type Prayer string

const (
	Imsak   Prayer = "imsak"
	Fajr    Prayer = "fajr"
	Sunrise Prayer = "sunrise"
	Dhuhr   Prayer = "dhuhr"
	Asr     Prayer = "asr"
	Maghrib Prayer = "maghrib"
	Isha    Prayer = "isha"
)

// Order is the chronological order of the day's times.
var Order = []Prayer{Imsak, Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

const (
	imsakMinutesBeforeFajr = 10
	riseSetAngle           = 0.833
)

// IsValid reports whether p is one of the known times.
func (p Prayer) IsValid() bool {
	for _, o := range Order {
		if o == p {
			return true
		}
	}
	return false
}

type Location struct {
	Latitude  float64 `json:"latitude" query:"lat" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" query:"lng" validate:"min=-180,max=180"`
	Timezone  string  `json:"timezone" query:"tz" validate:"timezone_"`
}

type Times struct {
	Date    string    `json:"date"`
	Method  string    `json:"method"`
	Imsak   time.Time `json:"imsak"`
	Fajr    time.Time `json:"fajr"`
	Sunrise time.Time `json:"sunrise"`
	Dhuhr   time.Time `json:"dhuhr"`
	Asr     time.Time `json:"asr"`
	Maghrib time.Time `json:"maghrib"`
	Isha    time.Time `json:"isha"`
}

// At returns the time of p, zero if p is unknown.
func (t Times) At(p Prayer) time.Time {
	switch p {
	case Imsak:
		return t.Imsak
	case Fajr:
		return t.Fajr
	case Sunrise:
		return t.Sunrise
	case Dhuhr:
		return t.Dhuhr
	case Asr:
		return t.Asr
	case Maghrib:
		return t.Maghrib
	case Isha:
		return t.Isha
	}
	return time.Time{}
}

// Next returns the time following p on the same day. ok is false after Isha.
func (t Times) Next(p Prayer) (Prayer, bool) {
	for i, o := range Order {
		if o == p && i+1 < len(Order) {
			return Order[i+1], true
		}
	}
	return "", false
}

// Current returns the latest time that has started at now, or "" before Imsak.
func (t Times) Current(now time.Time) Prayer {
	var cur Prayer
	for _, p := range Order {
		if !now.Before(t.At(p)) {
			cur = p
		}
	}
	return cur
}

// Calculate computes the prayer times of date's calendar day at loc.
func Calculate(date time.Time, loc Location, method Method) (Times, error) {
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		return Times{}, ErrUnknownTimezone
	}
	y, m, d := date.In(tz).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, tz)
	_, offset := time.Date(y, m, d, 12, 0, 0, 0, tz).Zone()

	c := calculator{
		jd:  julianDate(y, int(m), d) - loc.Longitude/(15*24),
		lat: loc.Latitude,
	}
	hours := map[Prayer]float64{
		Fajr:    c.sunAngleTime(method.FajrAngle, 5.0/24, true),
		Sunrise: c.sunAngleTime(riseSetAngle, 6.0/24, true),
		Dhuhr:   c.midDay(12.0 / 24),
		Asr:     c.asrTime(method.AsrFactor, 13.0/24),
		Maghrib: c.sunAngleTime(riseSetAngle, 18.0/24, false),
	}
	if method.IshaMinutes > 0 {
		hours[Isha] = hours[Maghrib] + float64(method.IshaMinutes)/60
	} else {
		hours[Isha] = c.sunAngleTime(method.IshaAngle, 18.0/24, false)
	}

	toTime := func(h float64) time.Time {
		h += float64(offset)/3600 - loc.Longitude/15
		return midnight.Add(time.Duration(math.Round(h*60)) * time.Minute)
	}
	for _, h := range hours {
		if math.IsNaN(h) {
			return Times{}, ErrUndefinedTime
		}
	}

	times := Times{
		Date:    midnight.Format("2006-01-02"),
		Method:  method.Name,
		Fajr:    toTime(hours[Fajr]),
		Sunrise: toTime(hours[Sunrise]),
		Dhuhr:   toTime(hours[Dhuhr]),
		Asr:     toTime(hours[Asr]),
		Maghrib: toTime(hours[Maghrib]),
		Isha:    toTime(hours[Isha]),
	}
	times.Imsak = times.Fajr.Add(-imsakMinutesBeforeFajr * time.Minute)
	return times, nil
}

type calculator struct {
	jd  float64
	lat float64
}

// sunPosition returns the declination of the sun and the equation of time at jd.
func sunPosition(jd float64) (decl, eqt float64) {
	d := jd - 2451545.0
	g := fixAngle(357.529 + 0.98560028*d)
	q := fixAngle(280.459 + 0.98564736*d)
	l := fixAngle(q + 1.915*dsin(g) + 0.020*dsin(2*g))
	e := 23.439 - 0.00000036*d

	ra := darctan2(dcos(e)*dsin(l), dcos(l)) / 15
	eqt = q/15 - fixHour(ra)
	decl = darcsin(dsin(e) * dsin(l))
	return decl, eqt
}

func (c calculator) midDay(t float64) float64 {
	_, eqt := sunPosition(c.jd + t)
	return fixHour(12 - eqt)
}

// sunAngleTime returns the time at which the sun reaches angle below the horizon,
// before noon when ccw is set. NaN when it never does.
func (c calculator) sunAngleTime(angle, t float64, ccw bool) float64 {
	decl, _ := sunPosition(c.jd + t)
	noon := c.midDay(t)
	cosT := (-dsin(angle) - dsin(decl)*dsin(c.lat)) / (dcos(decl) * dcos(c.lat))
	if cosT < -1 || cosT > 1 {
		return math.NaN()
	}
	ha := darccos(cosT) / 15
	if ccw {
		return noon - ha
	}
	return noon + ha
}

func (c calculator) asrTime(factor, t float64) float64 {
	decl, _ := sunPosition(c.jd + t)
	angle := -darccot(factor + dtan(math.Abs(c.lat-decl)))
	return c.sunAngleTime(angle, t, false)
}

func julianDate(year, month, day int) float64 {
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(year+4716)) + math.Floor(30.6001*float64(month+1)) + float64(day) + b - 1524.5
}

// degree based trigonometry

func dtr(d float64) float64         { return d * math.Pi / 180 }
func rtd(r float64) float64         { return r * 180 / math.Pi }
func dsin(d float64) float64        { return math.Sin(dtr(d)) }
func dcos(d float64) float64        { return math.Cos(dtr(d)) }
func dtan(d float64) float64        { return math.Tan(dtr(d)) }
func darcsin(x float64) float64     { return rtd(math.Asin(x)) }
func darccos(x float64) float64     { return rtd(math.Acos(x)) }
func darctan2(y, x float64) float64 { return rtd(math.Atan2(y, x)) }
func darccot(x float64) float64     { return rtd(math.Atan(1 / x)) }

func fixAngle(a float64) float64 { return fix(a, 360) }
func fixHour(a float64) float64  { return fix(a, 24) }

func fix(a, b float64) float64 {
	a = a - b*math.Floor(a/b)
	if a < 0 {
		return a + b
	}
	return a
}
