package storage

import (
	"errors"
	"strings"
	"sync"
)

const maxPaletteColors = 16

var (
	// ErrInvalidPalette indicates the provided palette violates validation rules.
	ErrInvalidPalette = errors.New("palette must contain between 1 and 16 hex colors of the form #rrggbb")
)

// defaultPalette mirrors the first colors of the matplotlib tab10 cycle, which
// the charts this service feeds were originally drawn with.
var defaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Storage provides access to the color palette used by the waffle builder.
type Storage interface {
	GetPalette() ([]string, error)
	SetPalette(colors []string) error
}

// MemoryStorage keeps the palette in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu      sync.RWMutex
	palette []string
}

// NewMemoryStorage initialises storage with a copy of the default palette.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		palette: clonePalette(defaultPalette),
	}
}

// DefaultPalette returns a copy of the default palette slice.
func DefaultPalette() []string {
	return clonePalette(defaultPalette)
}

// GetPalette returns a defensive copy of the currently configured palette.
func (s *MemoryStorage) GetPalette() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clonePalette(s.palette), nil
}

// SetPalette validates, normalises, and stores the provided colors. Palette
// order is meaningful (it drives color assignment), so duplicates are removed
// but the caller's order is preserved.
func (s *MemoryStorage) SetPalette(colors []string) error {
	normalized, err := normalizePalette(colors)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.palette = normalized
	s.mu.Unlock()

	return nil
}

func clonePalette(src []string) []string {
	if len(src) == 0 {
		return []string{}
	}

	out := make([]string, len(src))
	copy(out, src)
	return out
}

func normalizePalette(colors []string) ([]string, error) {
	if len(colors) == 0 {
		return nil, ErrInvalidPalette
	}

	seen := make(map[string]struct{}, len(colors))
	out := make([]string, 0, len(colors))
	for _, color := range colors {
		normalized := strings.ToLower(strings.TrimSpace(color))
		if !isHexColor(normalized) {
			return nil, ErrInvalidPalette
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
		if len(out) > maxPaletteColors {
			return nil, ErrInvalidPalette
		}
	}

	return out, nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
