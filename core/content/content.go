// Package content loads the static data shipped in the embedded assets: the mission catalog,
// level titles and the fiqh/FAQ entries.
package content

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const Dir = "assets/content"

// Decode reads the YAML document assets/content/<name> from fsys into dest.
// Unknown fields are rejected so that typos in content files fail loudly.
func Decode(fsys fs.FS, name string, dest interface{}) error {
	f, err := fsys.Open(path.Join(Dir, name))
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dest); err != nil {
		return errors.Wrapf(err, "decoding %s", name)
	}
	return nil
}

type FAQ struct {
	ID       string `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
	Hukum    string `yaml:"hukum,omitempty" json:"hukum,omitempty"`
	Dalil    string `yaml:"dalil,omitempty" json:"dalil,omitempty"`
}

type FAQFilter struct {
	Category string `query:"category"`
	Search   string `query:"search"`
}

type FAQStore struct {
	entries []FAQ
}

// LoadFAQ reads faq.yaml.
func LoadFAQ(fsys fs.FS) (*FAQStore, error) {
	var entries []FAQ
	if err := Decode(fsys, "faq.yaml", &entries); err != nil {
		return nil, err
	}
	return NewFAQStore(entries)
}

func NewFAQStore(entries []FAQ) (*FAQStore, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.Question == "" || e.Answer == "" {
			return nil, errors.Errorf("faq entry %q: id, question and answer are required", e.ID)
		}
		if seen[e.ID] {
			return nil, errors.Errorf("faq entry %q: duplicate id", e.ID)
		}
		seen[e.ID] = true
	}
	return &FAQStore{entries: entries}, nil
}

// Query returns the entries in the given category whose question, answer or dalil contain
// the search text (case-insensitive). Empty filter fields match everything.
func (s *FAQStore) Query(filter FAQFilter) []FAQ {
	cat := strings.ToLower(strings.TrimSpace(filter.Category))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]FAQ, 0)
	for _, e := range s.entries {
		if cat != "" && strings.ToLower(e.Category) != cat {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Question), search) &&
			!strings.Contains(strings.ToLower(e.Answer), search) &&
			!strings.Contains(strings.ToLower(e.Dalil), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (s *FAQStore) Categories() []string {
	set := make(map[string]bool)
	for _, e := range s.entries {
		set[e.Category] = true
	}
	cats := make([]string, 0, len(set))
	for c := range set {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
