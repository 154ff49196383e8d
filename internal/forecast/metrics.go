// internal/forecast/metrics.go
package forecast

import "math"

// RMSE is the root mean squared error between actual and predicted values.
// Slices must be the same length; extra predicted values are ignored.
func RMSE(actual, predicted []float64) float64 {
	n := len(actual)
	if n == 0 || len(predicted) < n {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// MAPE is the mean absolute percentage error. Zero-demand months are skipped
// rather than dividing by zero; an all-zero actual window yields 0.
func MAPE(actual, predicted []float64) float64 {
	n := len(actual)
	if n == 0 || len(predicted) < n {
		return math.NaN()
	}
	sum := 0.0
	counted := 0
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(predicted[i]-actual[i]) / math.Abs(actual[i])
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted) * 100
}

// Bias is the mean signed error; positive means the model over-forecasts.
func Bias(actual, predicted []float64) float64 {
	n := len(actual)
	if n == 0 || len(predicted) < n {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += predicted[i] - actual[i]
	}
	return sum / float64(n)
}
