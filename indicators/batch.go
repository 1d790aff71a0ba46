package indicators

import (
	"math"

	"github.com/quantxyz/stratsim/market"
)

// SMA returns the simple moving average of values. The output has the same
// length as the input; entries before the window fills are NaN.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// EMA returns the exponential moving average of values, same length as the
// input. The first output equals the first input.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// TrueRanges returns the per-bar true range series, same length as the
// input. The first entry is NaN since it has no previous close.
func TrueRanges(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	if len(bars) == 0 {
		return out
	}

	out[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		out[i] = trueRange(bars[i], bars[i-1])
	}
	return out
}

// ATR returns the average true range series: a simple moving average over
// the true ranges. Entries at indexes below period are NaN; the first
// meaningful value lands at index period, the mean of the first period
// true ranges.
func ATR(bars []market.Bar, period int) []float64 {
	trs := TrueRanges(bars)
	out := make([]float64, len(trs))
	if period <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i := range trs {
		if i == 0 {
			out[0] = math.NaN()
			continue
		}
		sum += trs[i]
		if i > period {
			sum -= trs[i-period]
		}
		if i >= period {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// MaxLastN returns the maximum of the last n values, or -1 when fewer than
// n values exist.
func MaxLastN(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return -1
	}
	max := values[len(values)-n]
	for _, v := range values[len(values)-n+1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// MinLastN returns the minimum of the last n values, or -1 when fewer than
// n values exist.
func MinLastN(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return -1
	}
	min := values[len(values)-n]
	for _, v := range values[len(values)-n+1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Closes extracts the close series from bars.
func Closes(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high series from bars.
func Highs(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low series from bars.
func Lows(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// trueRange is the largest of high-low, |high-prevClose|, |low-prevClose|.
func trueRange(current, previous market.Bar) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
