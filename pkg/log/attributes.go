package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "SVR", "StandardScaler".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one estimator instance.
	EstimatorIDKey = "estimator.id"

	// RunIDKey identifies one pipeline run.
	RunIDKey = "run.id"

	// OperationKey is the estimator operation: "fit", "predict", "transform".
	OperationKey = "ml.operation"

	// ComponentKey names the package emitting the record.
	ComponentKey = "ml.component"

	// StageKey is the pipeline stage: "load", "split", "fit", "predict", "suggest".
	StageKey = "pipeline.stage"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	PathKey     = "data.path"
	TrainKey    = "split.train"
	TestKey     = "split.test"
)

// Solver and metrics.
const (
	DurationMsKey     = "perf.duration_ms"
	IterationKey      = "training.iteration"
	SupportVectorsKey = "svr.support_vectors"
	GammaKey          = "svr.gamma"
	RhoKey            = "svr.rho"
	RandomSeedKey     = "config.random_seed"
	ScalingKey        = "config.scaling"
	FoldKey           = "cv.fold"
	R2ScoreKey        = "metrics.r2_score"
	RMSEKey           = "metrics.rmse"
	PredictionKey     = "preds.value"
	QueryKey          = "preds.query"
)

// Sales suggestion context.
const (
	ItemKey       = "sales.item"
	SuggestionKey = "sales.suggestion"
)

// Error context.
const (
	ErrorKey      = "error"
	StacktraceKey = "stacktrace"
	ErrorTypeKey  = "error.type"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
)
