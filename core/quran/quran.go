// Package quran holds the mushaf metadata and the user's reading state (bookmarks and last read
// position).
package quran

import (
	"fmt"
	"strings"
)

func Surahs() []Surah {
	out := make([]Surah, SurahCount)
	copy(out, surahs[:])
	return out
}

func SurahByNumber(n int) (Surah, bool) {
	if n < 1 || n > SurahCount {
		return Surah{}, false
	}
	return surahs[n-1], true
}

// Valid reports whether p designates an existing ayah.
func (p Position) Valid() bool {
	s, ok := SurahByNumber(p.Surah)
	return ok && p.Ayah >= 1 && p.Ayah <= s.Ayahs
}

// Before reports whether p comes before o in mushaf order.
func (p Position) Before(o Position) bool {
	return p.Surah < o.Surah || (p.Surah == o.Surah && p.Ayah < o.Ayah)
}

// Index returns the 1-based index of p among all the ayahs of the mushaf, 0 if p is invalid.
func (p Position) Index() int {
	if !p.Valid() {
		return 0
	}
	idx := p.Ayah
	for _, s := range surahs[:p.Surah-1] {
		idx += s.Ayahs
	}
	return idx
}

// JuzOf returns the juz (1-30) containing p, 0 if p is invalid.
func JuzOf(p Position) int {
	if !p.Valid() {
		return 0
	}
	juz := 1
	for i, start := range juzStarts {
		if p.Before(start) {
			break
		}
		juz = i + 1
	}
	return juz
}

// JuzStart returns the first ayah of juz.
func JuzStart(juz int) (Position, bool) {
	if juz < 1 || juz > JuzCount {
		return Position{}, false
	}
	return juzStarts[juz-1], true
}

type Juz struct {
	Number int      `json:"number"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

// JuzList returns the boundaries of the 30 juz.
func JuzList() []Juz {
	list := make([]Juz, 0, JuzCount)
	for i, start := range juzStarts {
		end := Position{Surah: SurahCount, Ayah: surahs[SurahCount-1].Ayahs}
		if i+1 < JuzCount {
			end = previous(juzStarts[i+1])
		}
		list = append(list, Juz{Number: i + 1, Start: start, End: end})
	}
	return list
}

func previous(p Position) Position {
	if p.Ayah > 1 {
		return Position{Surah: p.Surah, Ayah: p.Ayah - 1}
	}
	return Position{Surah: p.Surah - 1, Ayah: surahs[p.Surah-2].Ayahs}
}

// AudioURL returns the recitation file of p, eg. <base>/<reciter>/002255.mp3.
func AudioURL(baseURL, reciter string, p Position) string {
	return fmt.Sprintf("%s/%s/%03d%03d.mp3", strings.TrimRight(baseURL, "/"), reciter, p.Surah, p.Ayah)
}

// SurahAudio returns the recitation files of every ayah of surah n.
func SurahAudio(baseURL, reciter string, n int) ([]string, bool) {
	s, ok := SurahByNumber(n)
	if !ok {
		return nil, false
	}
	urls := make([]string, 0, s.Ayahs)
	for a := 1; a <= s.Ayahs; a++ {
		urls = append(urls, AudioURL(baseURL, reciter, Position{Surah: n, Ayah: a}))
	}
	return urls, true
}
