package reward

import "errors"

var ErrOutOfRangeScore = errors.New("priority score out of range [0,1]")

// Priority band edges and the weight range each band maps onto.
var weightBands = []struct {
	loScore, hiScore   float64
	loWeight, hiWeight float64
}{
	{0.0, 0.4, 1.0, 1.4},
	{0.4, 0.8, 1.4, 1.8},
	{0.8, 1.0, 1.8, 2.0},
}

// SampleWeight maps a business priority score to a training importance
// multiplier in [1.0, 2.0]. Each priority band interpolates linearly onto
// its weight range, so the mapping is monotonic non-decreasing. Pure
// function, no state.
func SampleWeight(priority float64) (float64, error) {
	if priority < 0 || priority > 1 {
		return 0, ErrOutOfRangeScore
	}
	for _, b := range weightBands {
		if priority < b.hiScore || b.hiScore == 1.0 {
			frac := (priority - b.loScore) / (b.hiScore - b.loScore)
			return b.loWeight + frac*(b.hiWeight-b.loWeight), nil
		}
	}
	// Unreachable: the last band closes at 1.0.
	return weightBands[len(weightBands)-1].hiWeight, nil
}
