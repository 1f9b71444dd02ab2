package waffle

import (
	"errors"
	"testing"
)

var testPalette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728"}

func TestBuildFillsGridRowMajor(t *testing.T) {
	t.Parallel()

	allocation := map[string]int{"A": 50, "B": 30, "C": 20}
	grid, legend, err := Build(allocation, testPalette)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(grid) != Rows {
		t.Fatalf("expected %d rows, got %d", Rows, len(grid))
	}

	counts := map[string]int{}
	for _, row := range grid {
		if len(row) != Cols {
			t.Fatalf("expected %d columns, got %d", Cols, len(row))
		}
		for _, cell := range row {
			counts[cell.Label]++
			if cell.Color != legend[cell.Label] {
				t.Fatalf("cell color %q disagrees with legend %q for %q", cell.Color, legend[cell.Label], cell.Label)
			}
		}
	}

	for label, want := range allocation {
		if counts[label] != want {
			t.Fatalf("category %q occupies %d cells, want %d", label, counts[label], want)
		}
	}

	// A has the most cells, so it fills the first five rows and takes the
	// first palette color.
	if grid[0][0].Label != "A" || grid[4][9].Label != "A" {
		t.Fatalf("expected A to fill the first 50 cells, got %v ... %v", grid[0][0], grid[4][9])
	}
	if legend["A"] != testPalette[0] {
		t.Fatalf("expected A to take the first palette color, got %q", legend["A"])
	}
}

func TestBuildColorAssignmentIsStable(t *testing.T) {
	t.Parallel()

	allocation := map[string]int{"red": 34, "blue": 33, "green": 33}

	_, first, err := Build(allocation, testPalette)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 25; i++ {
		_, again, err := Build(allocation, testPalette)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for label, color := range first {
			if again[label] != color {
				t.Fatalf("color for %q changed between runs: %q vs %q", label, color, again[label])
			}
		}
	}
}

func TestBuildPaletteWrapsAround(t *testing.T) {
	t.Parallel()

	allocation := map[string]int{"a": 40, "b": 30, "c": 30}
	palette := []string{"#000000", "#ffffff"}

	_, legend, err := Build(allocation, palette)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if legend["a"] != "#000000" || legend["b"] != "#ffffff" || legend["c"] != "#000000" {
		t.Fatalf("unexpected wrap-around assignment: %v", legend)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	invalid := []map[string]int{
		nil,
		{},
		{"A": 99},
		{"A": 101},
		{"A": 101, "B": -1},
	}

	for _, allocation := range invalid {
		if _, _, err := Build(allocation, testPalette); !errors.Is(err, ErrInvalidAllocation) {
			t.Fatalf("expected ErrInvalidAllocation for %v, got %v", allocation, err)
		}
	}

	if _, _, err := Build(map[string]int{"A": 100}, nil); !errors.Is(err, ErrEmptyPalette) {
		t.Fatalf("expected ErrEmptyPalette, got %v", err)
	}
}
