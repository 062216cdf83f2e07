package progress

import (
	"io/fs"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/content"
)

const xpStep = 50

// XPForLevel returns the cumulative XP needed to reach level: 50·L·(L−1).
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return xpStep * level * (level - 1)
}

// LevelForXP returns the highest level whose threshold is at most xp.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	level := int((1 + math.Sqrt(1+4*float64(xp)/xpStep)) / 2)
	// float rounding
	for XPForLevel(level+1) <= xp {
		level++
	}
	for level > 1 && XPForLevel(level) > xp {
		level--
	}
	return level
}

type Level struct {
	Level     int     `json:"level"`
	XP        int     `json:"xp"`
	LevelXP   int     `json:"level_xp"`      // threshold of the current level
	NextXP    int     `json:"next_level_xp"` // threshold of the next level
	Progress  float64 `json:"progress"`      // 0..1 towards the next level
	Title     string  `json:"title"`
	NextTitle string  `json:"next_title,omitempty"`
}

func NewLevel(xp int, titles Titles) Level {
	if xp < 0 {
		xp = 0
	}
	l := LevelForXP(xp)
	lvl := Level{
		Level:   l,
		XP:      xp,
		LevelXP: XPForLevel(l),
		NextXP:  XPForLevel(l + 1),
		Title:   titles.For(l),
	}
	lvl.Progress = float64(xp-lvl.LevelXP) / float64(lvl.NextXP-lvl.LevelXP)
	if next, ok := titles.next(l); ok {
		lvl.NextTitle = next.Title
	}
	return lvl
}

type Title struct {
	MinLevel int    `yaml:"min_level" json:"min_level"`
	Title    string `yaml:"title" json:"title"`
}

// Titles is sorted by MinLevel.
type Titles []Title

// LoadTitles reads titles.yaml.
func LoadTitles(fsys fs.FS) (Titles, error) {
	var ts Titles
	if err := content.Decode(fsys, "titles.yaml", &ts); err != nil {
		return nil, err
	}
	return NewTitles(ts)
}

func NewTitles(ts []Title) (Titles, error) {
	out := make(Titles, len(ts))
	copy(out, ts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinLevel < out[j].MinLevel })
	for i, t := range out {
		if t.Title == "" || t.MinLevel < 1 {
			return nil, errors.Errorf("title %d: title and a positive min_level are required", i)
		}
		if i > 0 && out[i-1].MinLevel == t.MinLevel {
			return nil, errors.Errorf("title %q: duplicate min_level %d", t.Title, t.MinLevel)
		}
	}
	return out, nil
}

// For returns the title of the highest threshold reached by level.
func (ts Titles) For(level int) string {
	var title string
	for _, t := range ts {
		if t.MinLevel > level {
			break
		}
		title = t.Title
	}
	return title
}

func (ts Titles) next(level int) (Title, bool) {
	for _, t := range ts {
		if t.MinLevel > level {
			return t, true
		}
	}
	return Title{}, false
}
