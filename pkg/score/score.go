// Package score computes host-side classification metrics.
// This is a pure package.
package score

// MacroF1 returns the F1 score averaged uniformly across all classes,
// irrespective of class frequency. Classes that never occur in either
// predictions or truth contribute zero to the average, matching the
// usual macro definition over a fixed class count.
//
// pred and truth must have equal length; labels outside
// [0, numClasses) are ignored.
func MacroF1(pred, truth []int, numClasses int) float64 {
	if numClasses <= 0 || len(pred) == 0 || len(pred) != len(truth) {
		return 0
	}

	tp := make([]int, numClasses)
	fp := make([]int, numClasses)
	fn := make([]int, numClasses)

	for i := range pred {
		p, w := pred[i], truth[i]
		if p < 0 || p >= numClasses || w < 0 || w >= numClasses {
			continue
		}
		if p == w {
			tp[p]++
			continue
		}
		fp[p]++
		fn[w]++
	}

	var sum float64
	for c := 0; c < numClasses; c++ {
		denom := 2*tp[c] + fp[c] + fn[c]
		if denom == 0 {
			continue
		}
		sum += 2 * float64(tp[c]) / float64(denom)
	}
	return sum / float64(numClasses)
}

// Accuracy returns the fraction of predictions equal to the truth.
func Accuracy(pred, truth []int) float64 {
	if len(pred) == 0 || len(pred) != len(truth) {
		return 0
	}
	hits := 0
	for i := range pred {
		if pred[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}
