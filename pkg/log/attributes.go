// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys consistently enables filtering of structured logs by
// model, operation and data shape across the whole run.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type being trained or applied.
	// Examples: "nearest-neighbor-k1", "random-forest"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "preprocessing", "training"
	ComponentKey = "ml.component"

	// PhaseKey indicates the pipeline phase.
	// Examples: "preparation", "imputation", "training", "evaluation", "submission"
	PhaseKey = "ml.phase"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// MissingKey indicates the number of missing cells in the dataset.
	MissingKey = "data.missing"
)

// Performance metrics.
const (
	// AccuracyKey carries an accuracy value in [0,1].
	AccuracyKey = "metric.accuracy"

	// DurationMsKey carries an operation duration in milliseconds.
	DurationMsKey = "duration_ms"
)
