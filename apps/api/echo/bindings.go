package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/prayer"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Place is where the request's prayer times and dates are computed.
type Place struct {
	Location    prayer.Location `json:"location"`
	Method      string          `json:"method"`
	HijriAdjust int             `json:"hijri_adjustment"`

	method prayer.Method
	tz     *time.Location
}

// Now returns the current time in the place's time zone.
func (p Place) Now() time.Time { return core.NowFunc().In(p.tz) }

func (p Place) dayContext(now time.Time) (mission.DayContext, error) {
	return mission.NewDayContext(now, p.Location, p.method, p.HijriAdjust)
}

// resolvePlace picks, field by field, the first of: query params (lat, lng, tz, method, adjust),
// the authenticated user's preferences and the configured defaults.
func (s *server) resolvePlace(ctx echo.Context) (Place, error) {
	def := s.deps.Conf.Location
	p := Place{
		Location:    prayer.Location{Latitude: def.Latitude, Longitude: def.Longitude, Timezone: def.Timezone},
		Method:      def.Method,
		HijriAdjust: def.HijriAdjustment,
	}

	usr, err := s.auth.optionalUser(ctx)
	if err != nil {
		return Place{}, err
	}
	if usr != nil {
		prefs := usr.Preferences
		if prefs.Latitude != nil && prefs.Longitude != nil {
			p.Location.Latitude = *prefs.Latitude
			p.Location.Longitude = *prefs.Longitude
		}
		if prefs.Timezone != "" {
			p.Location.Timezone = prefs.Timezone
		}
		if prefs.Method != "" {
			p.Method = prefs.Method
		}
		p.HijriAdjust = prefs.HijriAdjustment
	}

	var fldErrs []core.FieldError
	lat, lng := ctx.QueryParam("lat"), ctx.QueryParam("lng")
	if lat != "" || lng != "" {
		if v, err := strconv.ParseFloat(lat, 64); err == nil && v >= -90 && v <= 90 {
			p.Location.Latitude = v
		} else {
			fldErrs = append(fldErrs, core.FieldError{Field: "lat", Error: "lat must be a number between -90 and 90"})
		}
		if v, err := strconv.ParseFloat(lng, 64); err == nil && v >= -180 && v <= 180 {
			p.Location.Longitude = v
		} else {
			fldErrs = append(fldErrs, core.FieldError{Field: "lng", Error: "lng must be a number between -180 and 180"})
		}
	}
	if tz := strings.TrimSpace(ctx.QueryParam("tz")); tz != "" {
		p.Location.Timezone = tz
	}
	if m := strings.TrimSpace(ctx.QueryParam("method")); m != "" {
		p.Method = m
	}
	if adj := ctx.QueryParam("adjust"); adj != "" {
		if v, err := strconv.Atoi(adj); err == nil && v >= -2 && v <= 2 {
			p.HijriAdjust = v
		} else {
			fldErrs = append(fldErrs, core.FieldError{Field: "adjust", Error: "adjust must be between -2 and 2"})
		}
	}

	if p.tz, err = time.LoadLocation(p.Location.Timezone); err != nil {
		fldErrs = append(fldErrs, core.FieldError{Field: "tz", Error: prayer.ErrUnknownTimezone.Error()})
	}
	var ok bool
	if p.method, ok = prayer.MethodByName(p.Method); !ok {
		fldErrs = append(fldErrs, core.FieldError{Field: "method", Error: "unknown calculation method"})
	}
	p.Method = p.method.Name

	if len(fldErrs) > 0 {
		return Place{}, core.NewValidationError(nil, fldErrs...)
	}
	return p, nil
}

// dateParam parses the YYYY-MM-DD query param name as noon of that day at tz.
// It defaults to now.
func dateParam(ctx echo.Context, name string, p Place) (time.Time, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return p.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", val, p.tz)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: name + " must be a date (YYYY-MM-DD)"})
	}
	return day.Add(12 * time.Hour), nil
}

// intParam parses the path param name. Non numeric values are treated as unknown resources.
func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return v, nil
}

// intQuery parses the optional query param name, returning def when it is absent.
func intQuery(ctx echo.Context, name string, def int) (int, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return def, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: name + " must be an integer"})
	}
	return v, nil
}
