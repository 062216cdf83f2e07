package mission

import (
	"io/fs"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/content"
)

// Catalog is the read-only set of missions offered to every user.
type Catalog struct {
	missions []Mission
	byID     map[string]int
}

// LoadCatalog reads missions.yaml from the content assets.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	var missions []Mission
	if err := content.Decode(fsys, "missions.yaml", &missions); err != nil {
		return nil, err
	}
	return NewCatalog(missions)
}

func NewCatalog(missions []Mission) (*Catalog, error) {
	c := &Catalog{missions: missions, byID: make(map[string]int, len(missions))}
	for i, m := range missions {
		if err := checkMission(m); err != nil {
			return nil, errors.Wrapf(err, "mission %q", m.ID)
		}
		if _, ok := c.byID[m.ID]; ok {
			return nil, errors.Errorf("mission %q: duplicate id", m.ID)
		}
		c.byID[m.ID] = i
	}
	return c, nil
}

func checkMission(m Mission) error {
	if m.ID == "" || m.Title == "" {
		return errors.New("id and title are required")
	}
	if m.XP <= 0 {
		return errors.New("xp must be positive")
	}
	switch m.Period {
	case Daily, Weekly, Seasonal:
	default:
		return errors.Errorf("unknown period %q", m.Period)
	}
	validCat := false
	for _, c := range Categories {
		if m.Category == c {
			validCat = true
			break
		}
	}
	if !validCat {
		return errors.Errorf("unknown category %q", m.Category)
	}
	switch m.Hukum {
	case Wajib, Sunnah, Mubah, Makruh, Haram:
	default:
		return errors.Errorf("unknown hukum %q", m.Hukum)
	}
	for _, month := range m.Rule.HijriMonths {
		if month < 1 || month > 12 {
			return errors.Errorf("invalid hijri month %d", month)
		}
	}
	for _, day := range m.Rule.HijriDays {
		if day < 1 || day > 30 {
			return errors.Errorf("invalid hijri day %d", day)
		}
	}
	return nil
}

// All returns the missions in catalog order.
func (c *Catalog) All() []Mission {
	out := make([]Mission, len(c.missions))
	copy(out, c.missions)
	return out
}

func (c *Catalog) Get(id string) (Mission, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Mission{}, false
	}
	return c.missions[i], true
}

func (c *Catalog) Filter(filter ListFilter) []Mission {
	out := make([]Mission, 0, len(c.missions))
	for _, m := range c.missions {
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.Period != "" && m.Period != filter.Period {
			continue
		}
		out = append(out, m)
	}
	return out
}
