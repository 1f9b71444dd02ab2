package apportion

import "errors"

var (
	// ErrEmptyFrequencies is returned when the frequency table has no categories.
	ErrEmptyFrequencies = errors.New("frequency table must contain at least one category")
	// ErrNegativeCount is returned when any category carries a negative count.
	ErrNegativeCount = errors.New("category counts must be non-negative integers")
	// ErrZeroTotal is returned when all counts are zero and no share can be computed.
	ErrZeroTotal = errors.New("at least one category must have a positive count")
)
