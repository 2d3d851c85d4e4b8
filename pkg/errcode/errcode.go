package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Metadata errors
	MetaFileMissingError
	MetaDecodeError
	MetaMissingKeyError
	MetaJoinError
	MetaEmptyTestError

	// Dataset errors
	DatasetImageOpenError
	DatasetImageDecodeError
	DatasetExhaustedError
	DatasetSplitError

	// Model errors
	ModelUnknownBackboneError
	ModelUnknownOptimizerError
	ModelUnknownSchedulerError
	ModelPretrainedLoadError

	// Training errors
	TrainSetupError
	TrainFitError
	TrainCheckpointError
	TrainTrainerOptionError

	// Prediction errors
	PredictSetupError
	PredictRunError
	PredictWriteError
	PredictCheckpointMissingError

	// Tracking errors
	TrackOpenError
	TrackWriteError
)
