// Package forecast estimates, for one police beat, the probability of crime
// on each street block for every hour of the day.
//
// # Pipeline
//
//	load crimes -> Aggregate -> Enrich -> Compute -> JSON
//
// Crimes are grouped by their block string exactly as stored
// ("071XX W DIVERSEY AVE"). No normalization is applied, so blocks spelled
// differently in the source data end up as separate locations.
//
// # Service requests
//
// Open 311 requests are matched to blocks with [ParseBlock], which turns a
// street address into the same hundred-block form the crime data uses:
//
//	"7120 W DIVERSEY AVE, CHICAGO, IL, 60707" -> "071XX W DIVERSEY AVE"
//
// # Probability
//
// Counts per (hour, block) are turned into a monthly rate over a fixed
// window (60 months by default) and fed to [SurvivalProbability] with a
// threshold of 1. The window is a constant: every block is assumed to have
// been observable for the whole window.
//
// The result is then scaled by [BrokenWindowsMultiplier]:
//
//	requests > 3      x2.0
//	1 < requests <= 3 x1.5
//	requests == 1     x1.0
//	requests == 0     x0.8
//
// Probabilities are not clamped and may exceed 1 after scaling.
package forecast
