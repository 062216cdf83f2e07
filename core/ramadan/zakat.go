package ramadan

import "math"

const (
	FitrahKgPerPerson = 2.5
	NisabGoldGrams    = 85
	ZakatRate         = 0.025
)

type (
	FitrahInput struct {
		People     int     `json:"people" query:"people" validate:"min=1,max=1000"`
		PricePerKg float64 `json:"price_per_kg" query:"price_per_kg" validate:"min=0"` // 0: configured price
	}

	FitrahResult struct {
		People      int     `json:"people"`
		KgPerPerson float64 `json:"kg_per_person"`
		TotalKg     float64 `json:"total_kg"`
		PricePerKg  float64 `json:"price_per_kg"`
		Total       float64 `json:"total"`
	}

	MaalInput struct {
		Cash             float64 `json:"cash" validate:"min=0"`
		Savings          float64 `json:"savings" validate:"min=0"`
		Gold             float64 `json:"gold" validate:"min=0"` // value, not weight
		Investments      float64 `json:"investments" validate:"min=0"`
		Receivables      float64 `json:"receivables" validate:"min=0"`
		Debts            float64 `json:"debts" validate:"min=0"`
		HaulReached      bool    `json:"haul_reached"` // held for a full hijri year
		GoldPricePerGram float64 `json:"gold_price_per_gram" validate:"min=0"` // 0: configured price
	}

	MaalResult struct {
		NetAssets   float64 `json:"net_assets"`
		Nisab       float64 `json:"nisab"`
		AboveNisab  bool    `json:"above_nisab"`
		HaulReached bool    `json:"haul_reached"`
		Due         bool    `json:"due"`
		Zakat       float64 `json:"zakat"`
	}
)

// Fitrah computes zakat fitrah: 2.5 kg of staple food per person.
func Fitrah(in FitrahInput) FitrahResult {
	kg := FitrahKgPerPerson * float64(in.People)
	return FitrahResult{
		People:      in.People,
		KgPerPerson: FitrahKgPerPerson,
		TotalKg:     kg,
		PricePerKg:  in.PricePerKg,
		Total:       round2(kg * in.PricePerKg),
	}
}

// Maal computes zakat on wealth: 2.5% of net assets, due once they reach the nisab (85 g of gold)
// and have been held for a hijri year.
func Maal(in MaalInput) MaalResult {
	net := in.Cash + in.Savings + in.Gold + in.Investments + in.Receivables - in.Debts
	if net < 0 {
		net = 0
	}
	res := MaalResult{
		NetAssets:   round2(net),
		Nisab:       round2(NisabGoldGrams * in.GoldPricePerGram),
		HaulReached: in.HaulReached,
	}
	res.AboveNisab = net > 0 && net >= res.Nisab
	res.Due = res.AboveNisab && in.HaulReached
	if res.Due {
		res.Zakat = round2(net * ZakatRate)
	}
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
