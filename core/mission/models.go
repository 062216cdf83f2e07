package mission

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/amal/core/prayer"
)

type Category string

const (
	CategoryPrayer  Category = "prayer"
	CategoryQuran   Category = "quran"
	CategoryDhikr   Category = "dhikr"
	CategoryFasting Category = "fasting"
	CategoryCharity Category = "charity"
	CategorySunnah  Category = "sunnah"
)

var Categories = []Category{CategoryPrayer, CategoryQuran, CategoryDhikr, CategoryFasting, CategoryCharity, CategorySunnah}

type Period string

const (
	Daily    Period = "daily"
	Weekly   Period = "weekly"
	Seasonal Period = "seasonal"
)

// Hukum is the legal ruling of the act a mission tracks.
type Hukum string

const (
	Wajib  Hukum = "wajib"
	Sunnah Hukum = "sunnah"
	Mubah  Hukum = "mubah"
	Makruh Hukum = "makruh"
	Haram  Hukum = "haram"
)

type Mission struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    Category `yaml:"category" json:"category"`
	Period      Period   `yaml:"period" json:"period"`
	Hukum       Hukum    `yaml:"hukum" json:"hukum"`
	XP          int      `yaml:"xp" json:"xp"`
	Dalil       string   `yaml:"dalil,omitempty" json:"dalil,omitempty"`
	Rule        Rule     `yaml:"rule" json:"rule"`
}

// Rule describes when a mission can be completed.
// Every non-empty gate must match for the mission to be unlocked.
type Rule struct {
	Window       *Window   `yaml:"window,omitempty" json:"window,omitempty"`
	Weekdays     []Weekday `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
	HijriMonths  []int     `yaml:"hijri_months,omitempty" json:"hijri_months,omitempty"`
	HijriDays    []int     `yaml:"hijri_days,omitempty" json:"hijri_days,omitempty"`
	LockAfterEnd bool      `yaml:"lock_after_end,omitempty" json:"lock_after_end,omitempty"`
}

type Window struct {
	From *TimeRef `yaml:"from,omitempty" json:"from,omitempty"`
	To   *TimeRef `yaml:"to,omitempty" json:"to,omitempty"`
}

// TimeRef points at a moment of the day, either relative to a prayer time or at a wall clock
// time, shifted by Offset minutes.
// In YAML it is either a mapping ({prayer: fajr, offset: 15}) or a scalar ("fajr", "05:30").
type TimeRef struct {
	Prayer prayer.Prayer `yaml:"prayer,omitempty" json:"prayer,omitempty"`
	Clock  string        `yaml:"clock,omitempty" json:"clock,omitempty"` // HH:MM
	Offset int           `yaml:"offset,omitempty" json:"offset,omitempty"`
}

func (ref *TimeRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v := strings.TrimSpace(node.Value)
		if strings.Contains(v, ":") {
			ref.Clock = v
		} else {
			ref.Prayer = prayer.Prayer(strings.ToLower(v))
		}
		return ref.check()
	}

	type plain TimeRef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*ref = TimeRef(p)
	return ref.check()
}

func (ref TimeRef) check() error {
	switch {
	case ref.Prayer != "" && ref.Clock != "":
		return errors.New("time reference has both prayer and clock")
	case ref.Prayer != "":
		if !ref.Prayer.IsValid() {
			return errors.Errorf("unknown prayer %q", ref.Prayer)
		}
	case ref.Clock != "":
		if _, err := time.Parse("15:04", ref.Clock); err != nil {
			return errors.Errorf("invalid clock time %q", ref.Clock)
		}
	default:
		return errors.New("time reference needs a prayer or a clock time")
	}
	return nil
}

// Resolve returns the moment ref designates on dc's day.
// The zero time is returned when the referenced prayer time is unknown.
func (ref TimeRef) Resolve(dc DayContext) time.Time {
	var t time.Time
	if ref.Prayer != "" {
		t = dc.Times.At(ref.Prayer)
		if t.IsZero() {
			return t
		}
	} else {
		clock, err := time.Parse("15:04", ref.Clock)
		if err != nil {
			return time.Time{}
		}
		y, m, d := dc.Now.Date()
		t = time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, dc.Now.Location())
	}
	return t.Add(time.Duration(ref.Offset) * time.Minute)
}

type Weekday time.Weekday

func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return Weekday(d), nil
		}
	}
	return 0, errors.Errorf("unknown weekday %q", s)
}

func (d Weekday) String() string { return strings.ToLower(time.Weekday(d).String()) }

func (d *Weekday) UnmarshalYAML(node *yaml.Node) error {
	wd, err := ParseWeekday(node.Value)
	if err != nil {
		return err
	}
	*d = wd
	return nil
}

func (d Weekday) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Weekday) UnmarshalText(text []byte) error {
	wd, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = wd
	return nil
}

// Completion records that a user completed a mission in a given period.
type Completion struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	MissionID   string    `json:"mission_id"`
	PeriodKey   string    `json:"period_key"`
	LocalDate   string    `json:"date"` // user's calendar date, YYYY-MM-DD
	XP          int       `json:"xp"`
	IsLate      bool      `json:"is_late"`
	Source      string    `json:"source"`
	CompletedAt time.Time `json:"completed_at"` // UTC
}

const (
	SourceApp  = "app"
	SourceSync = "sync"
)

type CompletionFilter struct {
	UserID    string `query:"-"`
	MissionID string `query:"mission_id"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

type ListFilter struct {
	Category Category `query:"category"`
	Period   Period   `query:"period"`
}
