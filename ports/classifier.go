package ports

// Classifier scores a preprocessed feature vector. Implementations must be safe
// for concurrent use and must not retain or modify the vector.
type Classifier interface {
	// Name identifies the model in logs and in per-model scores, e.g. "rf_model"
	Name() string

	// PredictProbability returns the positive-class probability in [0,1]
	PredictProbability(vector []float64) (float64, error)
}

// Scaler rescales the numeric measurements with statistics fitted at training time
type Scaler interface {
	// Features lists the columns Transform expects, in order
	Features() []string

	Transform(values []float64) ([]float64, error)
}
