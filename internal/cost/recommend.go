package cost

import "errors"

// ErrEmptyProviderSet means there is nothing to recommend from.
var ErrEmptyProviderSet = errors.New("no provider results available for recommendation")

// Recommendation lists every provider sharing the lowest cent-rounded total.
type Recommendation struct {
	Providers []Provider `json:"providers"`
	Total     float64    `json:"total"`
}

// Tied reports whether more than one provider shares the minimum.
func (r Recommendation) Tied() bool {
	return len(r.Providers) > 1
}

// Recommend selects the cheapest providers. Totals are compared after
// rounding to cents, and ties are all returned in input order.
func Recommend(breakdowns []Breakdown) (Recommendation, error) {
	if len(breakdowns) == 0 {
		return Recommendation{}, ErrEmptyProviderSet
	}

	minTotal := Round2(breakdowns[0].Total)
	for _, b := range breakdowns[1:] {
		if t := Round2(b.Total); t < minTotal {
			minTotal = t
		}
	}

	rec := Recommendation{Total: minTotal}
	for _, b := range breakdowns {
		if Round2(b.Total) == minTotal {
			rec.Providers = append(rec.Providers, b.Provider)
		}
	}
	return rec, nil
}
