package progress

import (
	"sort"
	"time"
)

type Streak struct {
	Current  int    `json:"current"`
	Longest  int    `json:"longest"`
	LastDate string `json:"last_date,omitempty"`
}

// Streaks computes streaks of consecutive days from the dates (YYYY-MM-DD) with at least one
// completion. The current streak ends today, or yesterday while today has no completion yet.
// Malformed dates are ignored.
func Streaks(dates []string, today string) Streak {
	days := make([]int, 0, len(dates))
	seen := make(map[int]bool, len(dates))
	for _, d := range dates {
		n, ok := dayNumber(d)
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	if len(days) == 0 {
		return Streak{}
	}
	sort.Ints(days)

	var st Streak
	run := 0
	for i, d := range days {
		if i > 0 && d == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > st.Longest {
			st.Longest = run
		}
	}
	st.LastDate = fromDayNumber(days[len(days)-1])

	t, ok := dayNumber(today)
	if !ok {
		return st
	}
	start := t
	if !seen[start] {
		start--
	}
	for seen[start] {
		st.Current++
		start--
	}
	return st
}

func dayNumber(date string) (int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return int(t.Unix() / 86400), true
}

func fromDayNumber(n int) string {
	return time.Unix(int64(n)*86400, 0).UTC().Format("2006-01-02")
}
