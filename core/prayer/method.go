package prayer

import "strings"

// Method holds the parameters of a prayer times calculation convention.
type Method struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	FajrAngle float64 `json:"fajr_angle"`
	IshaAngle float64 `json:"isha_angle,omitempty"`
	// IshaMinutes, when set, places Isha a fixed number of minutes after Maghrib.
	IshaMinutes int `json:"isha_minutes,omitempty"`
	// AsrFactor is the shadow length factor: 1 (Shafi'i, Maliki, Hanbali) or 2 (Hanafi).
	AsrFactor float64 `json:"asr_factor"`
}

const DefaultMethod = "kemenag"

var methods = []Method{
	{Name: "kemenag", Label: "Kementerian Agama Republik Indonesia", FajrAngle: 20, IshaAngle: 18, AsrFactor: 1},
	{Name: "mwl", Label: "Muslim World League", FajrAngle: 18, IshaAngle: 17, AsrFactor: 1},
	{Name: "isna", Label: "Islamic Society of North America", FajrAngle: 15, IshaAngle: 15, AsrFactor: 1},
	{Name: "egypt", Label: "Egyptian General Authority of Survey", FajrAngle: 19.5, IshaAngle: 17.5, AsrFactor: 1},
	{Name: "makkah", Label: "Umm al-Qura University, Makkah", FajrAngle: 18.5, IshaMinutes: 90, AsrFactor: 1},
	{Name: "karachi", Label: "University of Islamic Sciences, Karachi", FajrAngle: 18, IshaAngle: 18, AsrFactor: 2},
	{Name: "jakim", Label: "Jabatan Kemajuan Islam Malaysia", FajrAngle: 20, IshaAngle: 18, AsrFactor: 1},
}

// Methods returns all supported calculation methods.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// MethodByName looks a method up by its (case-insensitive) name.
func MethodByName(name string) (Method, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}
