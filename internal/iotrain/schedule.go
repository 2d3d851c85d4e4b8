package iotrain

import "math"

// exponential decay factor per epoch.
const expGamma = 0.9

// ScheduleLR returns the learning rate for a 1-based epoch under the
// named schedule. An empty name means a constant learning rate.
func ScheduleLR(name string, base float64, epoch, maxEpochs int) (float64, error) {
	if epoch < 1 {
		epoch = 1
	}
	switch name {
	case "":
		return base, nil
	case "cosine":
		// Half cosine from base at epoch 1 towards zero at maxEpochs.
		frac := float64(epoch-1) / float64(maxEpochs)
		return base * 0.5 * (1 + math.Cos(math.Pi*frac)), nil
	case "exponential":
		return base * math.Pow(expGamma, float64(epoch-1)), nil
	default:
		return 0, UnknownSchedulerError(name)
	}
}
