// internal/forecast/arima.go
package forecast

import (
	"math"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// ARIMA is an ARIMA(2,1,0) model with drift: the series is differenced once
// and an AR(2) with intercept is fit to the differences by least squares.
// The AR order is fixed; monthly demand series in this corpus are too short
// for order selection to beat a stable low-order fit.
type ARIMA struct {
	phi1, phi2 float64
	intercept  float64
	lastValue  float64
	lastDiffs  [2]float64 // most recent first
}

func NewARIMA() *ARIMA { return &ARIMA{} }

func (m *ARIMA) Tag() domain.ModelTag { return domain.ModelARIMA }

func (m *ARIMA) Fit(train []float64) error {
	if len(train) < 8 {
		return insufficientErr(m.Tag(), 8, len(train))
	}

	diff := difference(train, 1)

	// Normal equations for Δy_t = c + φ1·Δy_{t-1} + φ2·Δy_{t-2}.
	var xtx [3][3]float64
	var xty [3]float64
	for t := 2; t < len(diff); t++ {
		row := [3]float64{1, diff[t-1], diff[t-2]}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * diff[t]
		}
	}

	coef, ok := solve3(xtx, xty)
	if !ok {
		// Singular design (e.g. perfectly flat differences): degrade to a
		// pure drift model rather than failing the fit.
		coef = [3]float64{meanOf(diff), 0, 0}
	}
	m.intercept, m.phi1, m.phi2 = coef[0], coef[1], coef[2]

	// Keep the AR polynomial away from the unit circle so long-horizon
	// forecasts stay bounded.
	if s := math.Abs(m.phi1) + math.Abs(m.phi2); s >= 1 {
		scale := 0.95 / s
		m.phi1 *= scale
		m.phi2 *= scale
	}

	m.lastValue = train[len(train)-1]
	m.lastDiffs[0] = diff[len(diff)-1]
	m.lastDiffs[1] = diff[len(diff)-2]
	return nil
}

func (m *ARIMA) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	d1, d2 := m.lastDiffs[0], m.lastDiffs[1]
	level := m.lastValue
	for h := 0; h < horizon; h++ {
		dhat := m.intercept + m.phi1*d1 + m.phi2*d2
		level += dhat
		out[h] = level
		d2, d1 = d1, dhat
	}
	return out
}

// SeasonalARIMA applies a seasonal difference at the configured period and
// fits an AR(1) with intercept to what remains, i.e. ARIMA(1,0,0)(0,1,0)s.
type SeasonalARIMA struct {
	period    int
	phi       float64
	intercept float64
	history   []float64 // training tail needed to undo the seasonal difference
	lastSDiff float64
}

func NewSeasonalARIMA(period int) *SeasonalARIMA {
	if period < 2 {
		period = 12
	}
	return &SeasonalARIMA{period: period}
}

func (m *SeasonalARIMA) Tag() domain.ModelTag { return domain.ModelSeasonalARIMA }

func (m *SeasonalARIMA) Fit(train []float64) error {
	p := m.period
	if len(train) < p+4 {
		return insufficientErr(m.Tag(), p+4, len(train))
	}

	sdiff := make([]float64, len(train)-p)
	for t := p; t < len(train); t++ {
		sdiff[t-p] = train[t] - train[t-p]
	}

	// Least-squares AR(1) with intercept on the seasonally differenced series.
	var sxx, sx, sxy, sy float64
	n := 0
	for t := 1; t < len(sdiff); t++ {
		x, y := sdiff[t-1], sdiff[t]
		sxx += x * x
		sx += x
		sxy += x * y
		sy += y
		n++
	}
	fn := float64(n)
	denom := fn*sxx - sx*sx
	if denom == 0 {
		m.phi = 0
		m.intercept = sy / fn
	} else {
		m.phi = (fn*sxy - sx*sy) / denom
		m.intercept = (sy - m.phi*sx) / fn
	}
	if math.Abs(m.phi) >= 1 {
		m.phi = math.Copysign(0.95, m.phi)
	}

	m.history = append([]float64(nil), train...)
	m.lastSDiff = sdiff[len(sdiff)-1]
	return nil
}

func (m *SeasonalARIMA) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	extended := append([]float64(nil), m.history...)
	prev := m.lastSDiff
	for h := 0; h < horizon; h++ {
		dhat := m.intercept + m.phi*prev
		base := extended[len(extended)-m.period]
		next := base + dhat
		out[h] = next
		extended = append(extended, next)
		prev = dhat
	}
	return out
}

func difference(values []float64, lag int) []float64 {
	out := make([]float64, len(values)-lag)
	for i := lag; i < len(values); i++ {
		out[i-lag] = values[i] - values[i-lag]
	}
	return out
}

// solve3 solves a 3x3 linear system by Gaussian elimination with partial
// pivoting. Returns false when the system is singular.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, bool) {
	const eps = 1e-12
	for col := 0; col < 3; col++ {
		pivot := col
		for r := col + 1; r < 3; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < eps {
			return [3]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < 3; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < 3; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	var x [3]float64
	for r := 2; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < 3; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, true
}
