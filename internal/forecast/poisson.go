package forecast

import "math"

const (
	maxTailTerms = 1000
	tailEpsilon  = 1e-17
)

// SurvivalProbability returns P(X > threshold) for X ~ Poisson(rate), i.e.
// 1 - e^-rate * sum_{i=0..threshold} rate^i / i!.
//
// Terms are computed in log space so large rates saturate to 1 instead of
// overflowing. When rate <= threshold+1 the upper tail is summed directly,
// which keeps full precision for the small rates typical of block counts.
func SurvivalProbability(rate float64, threshold int) float64 {
	if math.IsNaN(rate) || rate <= 0 {
		return 0
	}
	if threshold < 0 {
		return 1
	}
	if math.IsInf(rate, 1) {
		return 1
	}

	logRate := math.Log(rate)
	if rate <= float64(threshold+1) {
		return upperTail(rate, logRate, threshold+1)
	}

	cdf := 0.0
	for i := 0; i <= threshold; i++ {
		cdf += math.Exp(logPoissonTerm(logRate, rate, i))
	}
	return math.Max(0, 1-cdf)
}

// upperTail sums P(X = i) for i >= from. Terms shrink monotonically when
// rate < from+1.
func upperTail(rate, logRate float64, from int) float64 {
	term := math.Exp(logPoissonTerm(logRate, rate, from))
	sum := 0.0
	for i := from; term > 0 && i < from+maxTailTerms; i++ {
		sum += term
		if term < sum*tailEpsilon {
			break
		}
		term *= rate / float64(i+1)
	}
	return math.Min(1, sum)
}

func logPoissonTerm(logRate, rate float64, i int) float64 {
	lg, _ := math.Lgamma(float64(i + 1))
	return float64(i)*logRate - rate - lg
}
