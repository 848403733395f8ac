/*
rank.go - Ranking a set of candidate stays

PURPOSE:
  Values every candidate HotelOption against its Program and orders the
  results by net cost, cheapest first. A stay whose program reference no
  longer resolves cannot be valued; it receives the unresolved sentinel
  Calc, sorts after every resolved stay, and is flagged so the UI can
  prompt the traveler to reassign or delete the dangling reference.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RankedStay pairs one candidate stay with its valuation. Program is nil
// when the stay's ProgramID did not resolve.
type RankedStay struct {
	Hotel   HotelOption
	Program *Program
	Calc    Calc
}

// UnresolvedCalc is the sentinel valuation for a stay whose program
// reference is dangling: no figures, full net-pay ratio, and an ordering
// position after every resolved stay (the moral equivalent of an
// infinite net cost).
func UnresolvedCalc(preferred CurrencyCode) Calc {
	return Calc{
		Currency:    preferred,
		Unresolved:  true,
		NetPayRatio: decimal.NewFromInt(1),
	}
}

// Rank values every hotel and sorts by net cost ascending, unresolved
// stays last. The sort is stable: ties keep their stored order so the
// display stays reproducible.
func Rank(global GlobalSettings, programs []Program, hotels []HotelOption, fx *FxRates) []RankedStay {
	byID := make(map[string]*Program, len(programs))
	for i := range programs {
		byID[programs[i].ID] = &programs[i]
	}

	ranked := make([]RankedStay, 0, len(hotels))
	for _, hotel := range hotels {
		program, ok := byID[hotel.ProgramID]
		if !ok {
			ranked = append(ranked, RankedStay{
				Hotel: hotel,
				Calc:  UnresolvedCalc(global.Currency),
			})
			continue
		}
		ranked = append(ranked, RankedStay{
			Hotel:   hotel,
			Program: program,
			Calc:    ComputeHotel(global, *program, hotel, fx),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Calc, ranked[j].Calc
		if a.Unresolved != b.Unresolved {
			return !a.Unresolved
		}
		if a.Unresolved {
			return false
		}
		return a.NetCost.LessThan(b.NetCost)
	})
	return ranked
}
