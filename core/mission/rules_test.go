package mission

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/amal/core/calendar"
	"github.com/trezcool/amal/core/prayer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

var jakarta, _ = time.LoadLocation("Asia/Jakarta")

// Monday 2 March 2026, 13 Ramadan 1447.
func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 0, 0, jakarta)
}

func dayAt(now time.Time) DayContext {
	return DayContext{
		Now: now,
		Times: prayer.Times{
			Date:    "2026-03-02",
			Imsak:   at(4, 30),
			Fajr:    at(4, 40),
			Sunrise: at(5, 58),
			Dhuhr:   at(12, 5),
			Asr:     at(15, 9),
			Maghrib: at(18, 12),
			Isha:    at(19, 21),
		},
		Hijri: calendar.Hijri{Year: 1447, Month: calendar.Ramadan, Day: 13},
	}
}

func window(from, to *TimeRef) *Window { return &Window{From: from, To: to} }
func pr(p prayer.Prayer) *TimeRef      { return &TimeRef{Prayer: p} }

func TestValidate(t *testing.T) {
	subuh := Mission{ID: "subuh", Rule: Rule{Window: window(pr(prayer.Fajr), pr(prayer.Sunrise))}}
	qabliyah := Mission{ID: "qabliyah", Rule: Rule{Window: window(pr(prayer.Fajr), pr(prayer.Sunrise)), LockAfterEnd: true}}
	dhuha := Mission{ID: "dhuha", Rule: Rule{
		Window:       window(&TimeRef{Prayer: prayer.Sunrise, Offset: 15}, &TimeRef{Prayer: prayer.Dhuhr, Offset: -10}),
		LockAfterEnd: true,
	}}
	seninKamis := Mission{ID: "senin-kamis", Rule: Rule{
		Weekdays: []Weekday{Weekday(time.Monday), Weekday(time.Thursday)},
		Window:   window(pr(prayer.Maghrib), nil),
	}}
	syaban := Mission{ID: "syaban", Rule: Rule{HijriMonths: []int{calendar.Shaban}}}
	bidh := Mission{ID: "bidh", Rule: Rule{HijriDays: []int{13, 14, 15}}}
	isha := Mission{ID: "isha", Rule: Rule{Window: window(pr(prayer.Isha), &TimeRef{Clock: "23:59"})}}

	tuesday := dayAt(at(18, 30))
	tuesday.Now = tuesday.Now.AddDate(0, 0, 1)
	day16 := dayAt(at(10, 0))
	day16.Hijri.Day = 16

	tests := []struct {
		name    string
		mission Mission
		dc      DayContext
		want    Status
	}{
		{name: "no rule", mission: Mission{ID: "sedekah"}, dc: dayAt(at(3, 0)), want: Status{}},
		{name: "before window", mission: subuh, dc: dayAt(at(4, 0)), want: Status{Locked: true, IsEarly: true, Reason: ReasonTooEarly}},
		{name: "at window start", mission: subuh, dc: dayAt(at(4, 40)), want: Status{}},
		{name: "in window", mission: subuh, dc: dayAt(at(5, 0)), want: Status{}},
		{name: "at window end", mission: subuh, dc: dayAt(at(5, 58)), want: Status{IsLate: true}},
		{name: "after window", mission: subuh, dc: dayAt(at(7, 0)), want: Status{IsLate: true}},
		{name: "after window locked", mission: qabliyah, dc: dayAt(at(7, 0)), want: Status{Locked: true, Reason: ReasonExpired}},
		{name: "offset start", mission: dhuha, dc: dayAt(at(6, 5)), want: Status{Locked: true, IsEarly: true, Reason: ReasonTooEarly}},
		{name: "offset open", mission: dhuha, dc: dayAt(at(6, 20)), want: Status{}},
		{name: "offset end", mission: dhuha, dc: dayAt(at(11, 56)), want: Status{Locked: true, Reason: ReasonExpired}},
		{name: "weekday before maghrib", mission: seninKamis, dc: dayAt(at(12, 0)), want: Status{Locked: true, IsEarly: true, Reason: ReasonTooEarly}},
		{name: "weekday after maghrib", mission: seninKamis, dc: dayAt(at(18, 30)), want: Status{}},
		{name: "wrong weekday", mission: seninKamis, dc: tuesday, want: Status{Locked: true, Reason: ReasonNotToday}},
		{name: "out of season", mission: syaban, dc: dayAt(at(10, 0)), want: Status{Locked: true, Reason: ReasonOutOfSeason}},
		{name: "hijri day", mission: bidh, dc: dayAt(at(10, 0)), want: Status{}},
		{name: "wrong hijri day", mission: bidh, dc: day16, want: Status{Locked: true, Reason: ReasonNotToday}},
		{name: "clock end", mission: isha, dc: dayAt(at(23, 59)), want: Status{IsLate: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.mission, tt.dc)
			got.OpensAt, got.ClosesAt = nil, nil
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_WindowBounds(t *testing.T) {
	m := Mission{Rule: Rule{Window: window(&TimeRef{Prayer: prayer.Sunrise, Offset: 15}, &TimeRef{Clock: "11:00"})}}
	st := Validate(m, dayAt(at(8, 0)))
	require.NotNil(t, st.OpensAt)
	require.NotNil(t, st.ClosesAt)
	assert.True(t, st.OpensAt.Equal(at(6, 13)))
	assert.True(t, st.ClosesAt.Equal(at(11, 0)))
}

func TestValidate_UnknownPrayerTime(t *testing.T) {
	dc := dayAt(at(8, 0))
	dc.Times.Isha = time.Time{}
	m := Mission{Rule: Rule{Window: window(pr(prayer.Isha), nil)}}
	assert.Equal(t, Status{}, Validate(m, dc))
}

func TestCalendarStatus(t *testing.T) {
	ramadan13 := calendar.Hijri{Year: 1447, Month: 9, Day: 13}
	friday := Mission{Rule: Rule{Weekdays: []Weekday{Weekday(time.Friday)}}}
	shaban := Mission{Rule: Rule{HijriMonths: []int{8}, Window: window(pr(prayer.Maghrib), nil)}}
	ayyamulBidh := Mission{Rule: Rule{HijriDays: []int{13, 14, 15}}}

	tests := []struct {
		name    string
		mission Mission
		wd      time.Weekday
		h       calendar.Hijri
		want    Status
	}{
		{name: "no gates", mission: Mission{}, wd: time.Monday, h: ramadan13, want: Status{}},
		{name: "right weekday", mission: friday, wd: time.Friday, h: ramadan13, want: Status{}},
		{name: "wrong weekday", mission: friday, wd: time.Monday, h: ramadan13, want: Status{Locked: true, Reason: ReasonNotToday}},
		{name: "out of season", mission: shaban, wd: time.Monday, h: ramadan13, want: Status{Locked: true, Reason: ReasonOutOfSeason}},
		{name: "in season, window ignored", mission: shaban, wd: time.Monday, h: calendar.Hijri{Year: 1447, Month: 8, Day: 1}, want: Status{}},
		{name: "right hijri day", mission: ayyamulBidh, wd: time.Monday, h: ramadan13, want: Status{}},
		{name: "wrong hijri day", mission: ayyamulBidh, wd: time.Monday, h: calendar.Hijri{Year: 1447, Month: 9, Day: 16}, want: Status{Locked: true, Reason: ReasonNotToday}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalendarStatus(tt.mission, tt.wd, tt.h))
		})
	}
}

func TestPeriodKey(t *testing.T) {
	h := calendar.Hijri{Year: 1447, Month: 9, Day: 13}
	tests := []struct {
		name   string
		period Period
		day    time.Time
		want   string
	}{
		{name: "daily", period: Daily, day: at(10, 0), want: "2026-03-02"},
		{name: "weekly", period: Weekly, day: at(10, 0), want: "2026-W10"},
		{name: "weekly year boundary", period: Weekly, day: time.Date(2027, 1, 1, 9, 0, 0, 0, jakarta), want: "2026-W53"},
		{name: "seasonal", period: Seasonal, day: at(10, 0), want: "H1447-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodKey(Mission{Period: tt.period}, tt.day, h))
		})
	}
}

func TestAward(t *testing.T) {
	tests := []struct {
		name    string
		xp      int
		status  Status
		want    int
		wantErr error
	}{
		{name: "on time", xp: 20, want: 20},
		{name: "late", xp: 20, status: Status{IsLate: true}, want: 10},
		{name: "late odd", xp: 15, status: Status{IsLate: true}, want: 7},
		{name: "late minimum", xp: 1, status: Status{IsLate: true}, want: 1},
		{name: "locked", xp: 20, status: Status{Locked: true}, wantErr: ErrLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Award(Mission{XP: tt.xp}, tt.status)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDayContext(t *testing.T) {
	loc := prayer.Location{Latitude: -6.2088, Longitude: 106.8456, Timezone: "Asia/Jakarta"}
	method, _ := prayer.MethodByName("kemenag")

	// 23:30 UTC on the 1st is the 2nd in Jakarta
	dc, err := NewDayContext(time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC), loc, method, 0)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", dc.Date())
	assert.Equal(t, "2026-03-02", dc.Times.Date)
	assert.Equal(t, calendar.Hijri{Year: 1447, Month: 9, Day: 13}, dc.Hijri)

	_, err = NewDayContext(time.Now(), prayer.Location{Timezone: "Mars/Olympus"}, method, 0)
	assert.Equal(t, prayer.ErrUnknownTimezone, err)
}

func TestTimeRef_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    TimeRef
		wantErr bool
	}{
		{name: "prayer scalar", doc: "Fajr", want: TimeRef{Prayer: prayer.Fajr}},
		{name: "clock scalar", doc: `"05:30"`, want: TimeRef{Clock: "05:30"}},
		{name: "mapping", doc: "{prayer: sunrise, offset: 15}", want: TimeRef{Prayer: prayer.Sunrise, Offset: 15}},
		{name: "unknown prayer", doc: "noon", wantErr: true},
		{name: "bad clock", doc: `"25:99"`, wantErr: true},
		{name: "both", doc: "{prayer: fajr, clock: '05:00'}", wantErr: true},
		{name: "neither", doc: "{offset: 5}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref TimeRef
			err := yaml.Unmarshal([]byte(tt.doc), &ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" Fri ")
	require.NoError(t, err)
	assert.Equal(t, Weekday(time.Friday), d)
	assert.Equal(t, "friday", d.String())

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}
