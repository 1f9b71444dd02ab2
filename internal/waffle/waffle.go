// Package waffle turns an apportionment of 100 cells into a 10x10 grid with a
// deterministic per-category color assignment. The grid is emitted as data;
// drawing it is left to whichever frontend consumes the service.
package waffle

import (
	"errors"
	"sort"

	"github.com/eugenenazirov/waffle-charts/internal/apportion"
)

// Grid dimensions. Rows*Cols must equal apportion.TotalCells.
const (
	Rows = 10
	Cols = 10
)

var (
	// ErrInvalidAllocation is returned when the allocation is empty, contains a
	// negative cell count, or does not sum to exactly 100.
	ErrInvalidAllocation = errors.New("allocation must contain non-negative cell counts summing to 100")
	// ErrEmptyPalette is returned when no colors are available for assignment.
	ErrEmptyPalette = errors.New("palette must contain at least one color")
)

// Cell is one unit of the grid, carrying the category it belongs to and the
// color assigned to that category.
type Cell struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Grid is a Rows x Cols matrix of cells, filled row-major.
type Grid [][]Cell

// Legend maps each category label to its assigned color.
type Legend map[string]string

// Build lays out the allocation as a row-major grid. Categories are placed in
// deterministic order (cell count descending, then label ascending) and each is
// assigned a palette color by its rank in that order, so the same allocation
// always produces the same grid and the same label-to-color mapping.
func Build(allocation map[string]int, palette []string) (Grid, Legend, error) {
	if err := validateAllocation(allocation); err != nil {
		return nil, nil, err
	}
	if len(palette) == 0 {
		return nil, nil, ErrEmptyPalette
	}

	labels := orderedLabels(allocation)

	legend := make(Legend, len(labels))
	for i, label := range labels {
		legend[label] = palette[i%len(palette)]
	}

	grid := make(Grid, Rows)
	for row := range grid {
		grid[row] = make([]Cell, Cols)
	}

	pos := 0
	for _, label := range labels {
		color := legend[label]
		for i := 0; i < allocation[label]; i++ {
			grid[pos/Cols][pos%Cols] = Cell{Label: label, Color: color}
			pos++
		}
	}

	return grid, legend, nil
}

// orderedLabels sorts categories by cell count descending, then label
// ascending. This order drives both grid placement and color assignment.
func orderedLabels(allocation map[string]int) []string {
	labels := make([]string, 0, len(allocation))
	for label := range allocation {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if allocation[labels[i]] != allocation[labels[j]] {
			return allocation[labels[i]] > allocation[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

func validateAllocation(allocation map[string]int) error {
	if len(allocation) == 0 {
		return ErrInvalidAllocation
	}

	sum := 0
	for _, cells := range allocation {
		if cells < 0 {
			return ErrInvalidAllocation
		}
		sum += cells
	}
	if sum != apportion.TotalCells {
		return ErrInvalidAllocation
	}

	return nil
}
