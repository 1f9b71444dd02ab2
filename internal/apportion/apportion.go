package apportion

import (
	"math"
	"sort"
	"strings"
)

// TotalCells is the number of units distributed by Allocate. Each cell
// represents one percent of the total, matching a 10x10 waffle grid.
const TotalCells = 100

type largestRemainder struct{}

// New creates an Allocator based on the largest-remainder method.
func New() Allocator {
	return &largestRemainder{}
}

// Allocate distributes exactly TotalCells cells across the given categories so
// that each category's share approximates its exact percentage of the total.
// Every category receives at least floor(100*count/N) cells and at most one
// more. Ties between equal remainders are broken by original count descending,
// then label ascending, so the result never depends on map iteration order.
func (a *largestRemainder) Allocate(frequencies map[string]int) (map[string]int, error) {
	total, err := validateFrequencies(frequencies)
	if err != nil {
		return nil, err
	}

	shares := make([]share, 0, len(frequencies))
	assigned := 0
	for label, count := range frequencies {
		exact := TotalCells * float64(count) / float64(total)
		base := int(math.Floor(exact))
		shares = append(shares, share{
			label:     label,
			count:     count,
			base:      base,
			remainder: exact - float64(base),
		})
		assigned += base
	}

	// 0 <= deficit < len(shares), since each remainder is in [0, 1).
	deficit := TotalCells - assigned

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		if shares[i].count != shares[j].count {
			return shares[i].count > shares[j].count
		}
		return shares[i].label < shares[j].label
	})

	result := make(map[string]int, len(shares))
	for i, s := range shares {
		cells := s.base
		if i < deficit {
			cells++
		}
		result[s.label] = cells
	}

	return result, nil
}

// share carries one category through the base/remainder computation.
type share struct {
	label     string
	count     int
	base      int
	remainder float64
}

// Quotas returns the exact real-valued percentage share of each category.
// The values sum to 100 up to floating-point error and are recomputed from
// scratch on every call.
func Quotas(frequencies map[string]int) (map[string]float64, error) {
	total, err := validateFrequencies(frequencies)
	if err != nil {
		return nil, err
	}

	quotas := make(map[string]float64, len(frequencies))
	for label, count := range frequencies {
		quotas[label] = TotalCells * float64(count) / float64(total)
	}
	return quotas, nil
}

// Tally counts raw category observations into a frequency table. Labels are
// trimmed of surrounding whitespace; blank observations are skipped.
func Tally(observations []string) map[string]int {
	frequencies := make(map[string]int, len(observations))
	for _, obs := range observations {
		label := strings.TrimSpace(obs)
		if label == "" {
			continue
		}
		frequencies[label]++
	}
	return frequencies
}

func validateFrequencies(frequencies map[string]int) (int, error) {
	if len(frequencies) == 0 {
		return 0, ErrEmptyFrequencies
	}

	total := 0
	for _, count := range frequencies {
		if count < 0 {
			return 0, ErrNegativeCount
		}
		total += count
	}
	if total == 0 {
		return 0, ErrZeroTotal
	}

	return total, nil
}
