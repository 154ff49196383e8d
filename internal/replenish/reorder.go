// internal/replenish/reorder.go
package replenish

import (
	"math"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// daysPerMonth converts monthly forecast quantities into a daily demand
// rate. Planning convention, matches the upstream spreadsheets.
const daysPerMonth = 30.0

// ReorderCalculator turns a forecast plus lead-time statistics into a
// reorder point and safety stock at the configured service level.
type ReorderCalculator struct {
	serviceLevel        float64
	zScore              float64
	defaultLeadTimeDays float64
	demandRateMonths    int // forecast months averaged into the demand-rate proxy
}

func NewReorderCalculator(serviceLevel, defaultLeadTimeDays float64, demandRateMonths int) *ReorderCalculator {
	if demandRateMonths < 1 {
		demandRateMonths = 1
	}
	return &ReorderCalculator{
		serviceLevel:        serviceLevel,
		zScore:              zScore(serviceLevel),
		defaultLeadTimeDays: defaultLeadTimeDays,
		demandRateMonths:    demandRateMonths,
	}
}

// Calculate computes the reorder plan for one item.
//
// Safety stock covers variability in both demand and lead time:
//
//	SS = z * sqrt( LTmean * sigmaD^2 + dMean^2 * sigmaLT^2 )
//
// with demand expressed per day. When no lead-time stats exist the default
// lead time is substituted with zero variance and the plan is flagged.
func (c *ReorderCalculator) Calculate(forecast domain.ForecastResult, series *domain.MonthlyDemandSeries, stat *domain.LeadTimeStat) domain.ReorderPlan {
	plan := domain.ReorderPlan{
		ItemID:       forecast.ItemID,
		ServiceLevel: c.serviceLevel,
	}

	// 1. Daily demand rate from the leading forecast months.
	months := c.demandRateMonths
	if months > len(forecast.Values) {
		months = len(forecast.Values)
	}
	monthlyMean := 0.0
	if months > 0 {
		for _, v := range forecast.Values[:months] {
			monthlyMean += v
		}
		monthlyMean /= float64(months)
	}
	plan.DailyDemandMean = monthlyMean / daysPerMonth

	// 2. Daily demand variance from observed history. Monthly variance
	// scales down by the days-per-month factor under independent days.
	monthlyVar := varianceOf(series.Quantities())
	dailyVar := monthlyVar / daysPerMonth
	plan.DailyDemandStdDev = math.Sqrt(dailyVar)

	// 3. Lead time, observed or estimated.
	if stat != nil && stat.SampleCount > 0 {
		plan.LeadTimeMeanDays = stat.MeanDays
		plan.LeadTimeStdDev = stat.StdDevDays
	} else {
		plan.LeadTimeMeanDays = c.defaultLeadTimeDays
		plan.LeadTimeStdDev = 0
		plan.LeadTimeEstimated = true
	}

	// 4. Safety stock and reorder point.
	ltVar := plan.LeadTimeStdDev * plan.LeadTimeStdDev
	ss := c.zScore * math.Sqrt(plan.LeadTimeMeanDays*dailyVar+plan.DailyDemandMean*plan.DailyDemandMean*ltVar)
	plan.SafetyStock = math.Max(0, ss)
	plan.ReorderPoint = plan.DailyDemandMean*plan.LeadTimeMeanDays + plan.SafetyStock

	return plan
}

// varianceOf is the population variance of a series.
func varianceOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := 0.0
	for _, v := range values {
		m += v
	}
	m /= float64(len(values))
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// zScore approximates the standard normal quantile for the given service
// level using Acklam's rational approximation. Accurate to ~1e-9 over the
// service levels planners actually configure.
func zScore(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		p = 0.999999
	}

	a := [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	cc := [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const pLow = 0.02425
	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((cc[0]*q+cc[1])*q+cc[2])*q+cc[3])*q+cc[4])*q + cc[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= 1-pLow:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((cc[0]*q+cc[1])*q+cc[2])*q+cc[3])*q+cc[4])*q + cc[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}
