package training

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/parallel"
	"github.com/mlpipes/titanic/models"
	"github.com/mlpipes/titanic/pkg/errors"
	"github.com/mlpipes/titanic/pkg/log"
)

// ModelSpec names one model family to train, with optional hyperparameters.
type ModelSpec struct {
	ID     string
	Params models.Params
}

// TrainedModel is the outcome of training one model family.
//
// On success Model is fitted on the full training data and CV holds the
// resampling estimate. On failure Err is set and the other fields are zero;
// callers skip failed entries when comparing.
type TrainedModel struct {
	Spec  ModelSpec
	Model models.Classifier
	CV    CVResult
	Err   error
}

// Failed reports whether this model's training did not complete.
func (t TrainedModel) Failed() bool {
	return t.Err != nil
}

// Trainer drives cross-validation and final fitting for a set of model
// families against one training matrix.
type Trainer struct {
	Control Control
	Pool    *parallel.Pool
	Logger  log.Logger
}

// NewTrainer returns a trainer using the given resampling control and pool.
func NewTrainer(ctl Control, pool *parallel.Pool, logger log.Logger) *Trainer {
	return &Trainer{Control: ctl, Pool: pool, Logger: logger}
}

// TrainAll trains every spec in order and returns one result per spec, in
// the same order. Models run sequentially; the folds of each model's
// cross-validation run concurrently on the trainer's pool.
//
// A model whose fit fails or panics yields a result with Err set, wrapped
// with the model identifier. The remaining models still train.
func (t *Trainer) TrainAll(X *mat.Dense, y []int, specs []ModelSpec) []TrainedModel {
	results := make([]TrainedModel, len(specs))
	for i, spec := range specs {
		results[i] = t.trainOne(X, y, spec)
	}
	return results
}

func (t *Trainer) trainOne(X *mat.Dense, y []int, spec ModelSpec) TrainedModel {
	res := TrainedModel{Spec: spec}
	logger := t.Logger.With(log.ModelNameKey, spec.ID, log.ComponentKey, "training")

	start := time.Now()
	cv, model, err := t.fitWithRecovery(X, y, spec)
	elapsed := time.Since(start)

	if err != nil {
		res.Err = errors.NewModelFitError(spec.ID, err)
		logger.Error("model training failed",
			log.OperationKey, "fit",
			log.ErrAttrKey, res.Err,
		)
		return res
	}

	res.CV = cv
	res.Model = model
	logger.Info("model trained",
		log.OperationKey, "cross_validate",
		log.AccuracyKey, cv.Mean,
		log.DurationMsKey, elapsed.Milliseconds(),
	)
	return res
}

// fitWithRecovery runs cross-validation and then fits a final model on the
// full training data. Panics from the underlying library surface as errors
// so one misbehaving family cannot take down the run.
func (t *Trainer) fitWithRecovery(X *mat.Dense, y []int, spec ModelSpec) (cv CVResult, model models.Classifier, err error) {
	defer errors.Recover(&err, "training.fitWithRecovery")

	cv, err = CrossValidate(t.Pool, spec.ID, spec.Params, X, y, t.Control)
	if err != nil {
		return cv, nil, err
	}

	model, err = models.New(spec.ID, spec.Params)
	if err != nil {
		return cv, nil, err
	}
	if err = model.Fit(X, y); err != nil {
		return cv, nil, err
	}
	return cv, model, nil
}
