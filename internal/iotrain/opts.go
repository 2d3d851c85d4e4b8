package iotrain

import "strconv"

// trainerOpts are the residual string-keyed overrides that reach the
// GoMLX machinery directly instead of going through typed flags.
type trainerOpts struct {
	// numThreads for the computation manager; -1 means all cores.
	numThreads int
	// platform overrides the accelerator platform choice.
	platform string
	// checkpointKeep is how many checkpoints the handler retains.
	checkpointKeep int
}

func defaultTrainerOpts() *trainerOpts {
	return &trainerOpts{
		numThreads:     -1,
		checkpointKeep: 3,
	}
}

// parseTrainerOpts validates the raw key=value overrides. Unknown keys
// and malformed values are fatal: a silently ignored override is worse
// than a failed run.
func parseTrainerOpts(raw map[string]string) (*trainerOpts, error) {
	res := defaultTrainerOpts()
	for key, val := range raw {
		switch key {
		case "num_threads":
			n, err := strconv.Atoi(val)
			if err != nil || n == 0 || n < -1 {
				return nil, TrainerOptionError(key, val)
			}
			res.numThreads = n
		case "platform":
			if val == "" {
				return nil, TrainerOptionError(key, val)
			}
			res.platform = val
		case "checkpoint_keep":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return nil, TrainerOptionError(key, val)
			}
			res.checkpointKeep = n
		default:
			return nil, TrainerOptionError(key, val)
		}
	}
	return res, nil
}
