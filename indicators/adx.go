package indicators

import (
	"math"

	"github.com/quantxyz/stratsim/market"
)

// ADX implements Wilder's Average Directional Index (trend strength).
// Usage:
//
//	adx := indicators.NewADX(14)
//	val, ok := adx.Update(bar)
//	if ok && val >= 20 { ... }
type ADX struct {
	Period int

	prev     market.Bar
	havePrev bool

	// Wilder-smoothed values after warmup:
	tr14  float64
	pdm14 float64
	mdm14 float64

	adx   float64
	dxSum float64

	// count of bars processed (including the first prev seed)
	count int
	ready bool
}

func NewADX(period int) *ADX {
	return &ADX{Period: period}
}

func (a *ADX) Value() float64 {
	return a.adx
}

func (a *ADX) Ready() bool {
	return a.ready
}

// Update consumes the next bar and returns (adx, ready).
// ready becomes true after enough bars to compute a stable ADX:
// - Need Period bars to initialize smoothed TR/+DM/-DM
// - Then Period DX values to initialize ADX
// Total: 2*Period bars after the initial prev seed.
func (a *ADX) Update(b market.Bar) (float64, bool) {
	// Seed previous bar
	if !a.havePrev {
		a.prev = b
		a.havePrev = true
		a.count = 1
		return 0, false
	}

	// 1) Compute directional movement using current vs previous highs/lows
	upMove := b.High - a.prev.High
	downMove := a.prev.Low - b.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}

	// 2) True Range (TR)
	tr := trueRange(b, a.prev)

	a.prev = b
	a.count++

	// Warmup Phase A: accumulate initial averages up to Period.
	// We start collecting on the second bar, so TR/DM samples begin at count=2.
	if a.count <= a.Period+1 {
		a.tr14 += tr
		a.pdm14 += pdm
		a.mdm14 += mdm

		// When we have Period samples of TR/DM (i.e. count == Period+1),
		// convert sums to simple averages to seed Wilder smoothing.
		if a.count == a.Period+1 {
			p := float64(a.Period)
			a.tr14 /= p
			a.pdm14 /= p
			a.mdm14 /= p
		}
		return 0, false
	}

	// 3) Wilder smoothing for TR/+DM/-DM
	p := float64(a.Period)
	a.tr14 = (a.tr14*(p-1) + tr) / p
	a.pdm14 = (a.pdm14*(p-1) + pdm) / p
	a.mdm14 = (a.mdm14*(p-1) + mdm) / p

	// Guard: avoid divide-by-zero if data is pathological
	if a.tr14 == 0 {
		return 0, false
	}

	// 4) DI and DX
	pdi := 100.0 * (a.pdm14 / a.tr14)
	mdi := 100.0 * (a.mdm14 / a.tr14)
	den := pdi + mdi
	if den == 0 {
		return 0, false
	}

	dx := 100 * math.Abs(pdi-mdi) / den

	// Warmup Phase B: seed ADX with the average of the first Period DX
	// values. First DX occurs at count == Period+2; after Period DX values
	// (count == 2*Period+1) the seed is complete.
	firstDXCount := a.Period + 2
	seedADXCount := 2*a.Period + 1

	if !a.ready {
		if a.count >= firstDXCount && a.count <= seedADXCount {
			a.dxSum += dx
		}
		if a.count == seedADXCount {
			a.adx = a.dxSum / p
			a.ready = true
			return a.adx, true
		}
		return 0, false
	}

	// 5) Wilder smoothing for ADX
	a.adx = (a.adx*(p-1) + dx) / p
	return a.adx, true
}
