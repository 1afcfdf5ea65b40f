// Command titanic runs the survival pipeline end to end: it loads the
// labeled passenger data, prepares features, trains and cross-validates the
// configured model families, prints the comparison and writes the
// submission file for the unlabeled passengers.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/config"
	"github.com/mlpipes/titanic/core/parallel"
	"github.com/mlpipes/titanic/dataset"
	"github.com/mlpipes/titanic/evaluation"
	"github.com/mlpipes/titanic/models"
	"github.com/mlpipes/titanic/pkg/errors"
	"github.com/mlpipes/titanic/pkg/log"
	"github.com/mlpipes/titanic/preprocessing"
	"github.com/mlpipes/titanic/submission"
	"github.com/mlpipes/titanic/training"
)

const labelColumn = "Survived"

// featureColumns is the allow-list of predictor columns. Everything else in
// the CSV (names, ticket numbers, cabin codes) is dropped before encoding.
var featureColumns = []string{"Pclass", "Sex", "Age", "SibSp", "Parch", "Fare", "Embarked"}

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("TITANIC_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "titanic: %+v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.SetupLogger(cfg.LogLevel)
	provider := log.NewZerologProvider(log.Level(log.ToLogLevel(cfg.LogLevel)))
	logger := provider.GetLoggerWithName("pipeline")

	pool := parallel.Acquire(cfg.Workers)
	defer pool.Release()
	logger.Info("pipeline started", "workers", pool.Size())

	table, err := dataset.LoadCSV(cfg.TrainPath)
	if err != nil {
		return err
	}
	table = table.Select(append(featureColumns, labelColumn)...)
	logger.Info("training data loaded",
		log.PhaseKey, "preparation",
		log.SamplesKey, table.NumRows(),
		log.MissingKey, table.MissingCount(),
	)

	trainTab, evalTab, err := dataset.StratifiedSplit(table, labelColumn, cfg.TrainFraction, cfg.SplitSeed)
	if err != nil {
		return err
	}
	yTrain, err := trainTab.IntColumn(labelColumn)
	if err != nil {
		return err
	}
	yEval, err := evalTab.IntColumn(labelColumn)
	if err != nil {
		return err
	}

	// The encoder and imputer are fit on the training subset only; the
	// evaluation and test rows go through the fitted transforms.
	enc := preprocessing.NewOneHotEncoder(true)
	trainRaw, trainMissing, err := enc.FitTransform(trainTab.Select(featureColumns...))
	if err != nil {
		return err
	}
	// Snapshot of the column set the models are fit against; the submission
	// matrix is checked against this exact set before predicting.
	fittedNames := append([]string(nil), enc.FeatureNames()...)
	evalRaw, evalMissing, err := enc.Transform(evalTab.Select(featureColumns...))
	if err != nil {
		return err
	}

	imp := preprocessing.NewKNNImputer(cfg.ImputeNeighbors)
	if err := imp.Fit(trainRaw, trainMissing); err != nil {
		return err
	}
	XTrain, err := imp.Transform(trainRaw, trainMissing)
	if err != nil {
		return err
	}
	XEval, err := imp.Transform(evalRaw, evalMissing)
	if err != nil {
		return err
	}
	_, nFeatures := XTrain.Dims()
	logger.Info("features prepared",
		log.PhaseKey, "imputation",
		log.SamplesKey, len(yTrain),
		log.FeaturesKey, nFeatures,
	)

	ctl := training.Control{Folds: cfg.Folds, Repeats: cfg.Repeats, Seed: cfg.CVSeed}
	trainer := training.NewTrainer(ctl, pool, logger)
	trained := trainer.TrainAll(XTrain, yTrain, modelSpecs(cfg))

	results, err := evaluation.Compare(trained, XTrain, yTrain, XEval, yEval)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.New("titanic: every model failed to train")
	}

	fmt.Print(evaluation.Table(results))
	for _, r := range results {
		fmt.Printf("\n%s hold-out confusion:\n%s\n", r.ModelID, r.Confusion)
	}

	writeCharts(cfg, logger, results, XTrain, yTrain, enc.FeatureNames())

	model, err := pickSubmissionModel(cfg, trained, results, logger)
	if err != nil {
		return err
	}
	return writeSubmission(cfg, logger, model, enc, imp, fittedNames)
}

func modelSpecs(cfg config.Settings) []training.ModelSpec {
	if len(cfg.Models) == 0 {
		ids := models.IDs()
		specs := make([]training.ModelSpec, len(ids))
		for i, id := range ids {
			specs[i] = training.ModelSpec{ID: id}
		}
		return specs
	}
	specs := make([]training.ModelSpec, len(cfg.Models))
	for i, m := range cfg.Models {
		specs[i] = training.ModelSpec{ID: m.ID, Params: models.Params(m.Params)}
	}
	return specs
}

// writeCharts renders the comparison charts. Chart failures are logged and
// do not abort the run; the submission file still gets written.
func writeCharts(cfg config.Settings, logger log.Logger, results []evaluation.Result, X *mat.Dense, y []int, names []string) {
	if err := os.MkdirAll(cfg.ChartDir, 0o755); err != nil {
		logger.Warn("chart directory", log.ErrAttrKey, err)
		return
	}
	if err := evaluation.AccuracyChart(results, filepath.Join(cfg.ChartDir, "accuracy.png")); err != nil {
		logger.Warn("accuracy chart", log.ErrAttrKey, err)
	}

	ageIdx, fareIdx := indexOf(names, "Age"), indexOf(names, "Fare")
	if ageIdx < 0 || fareIdx < 0 {
		return
	}
	scatterPath := filepath.Join(cfg.ChartDir, "age_fare.png")
	if err := evaluation.FeatureScatter(X, y, ageIdx, fareIdx, "Age", "Fare", scatterPath); err != nil {
		logger.Warn("feature scatter", log.ErrAttrKey, err)
	}
}

func indexOf(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

func pickSubmissionModel(cfg config.Settings, trained []training.TrainedModel, results []evaluation.Result, logger log.Logger) (models.Classifier, error) {
	id := cfg.SubmissionModel
	if id == "" {
		best, _ := evaluation.Best(results)
		id = best.ModelID
	}
	model, ok := evaluation.FindModel(trained, id)
	if !ok {
		return nil, errors.Newf("titanic: submission model %q is not among the trained models", id)
	}
	logger.Info("submission model selected", log.ModelNameKey, id, log.PhaseKey, "submission")
	return model, nil
}

func writeSubmission(cfg config.Settings, logger log.Logger, model models.Classifier, enc *preprocessing.OneHotEncoder, imp *preprocessing.KNNImputer, fittedNames []string) error {
	testTab, err := dataset.LoadCSV(cfg.TestPath)
	if err != nil {
		return err
	}
	ids, err := testTab.IntColumn("PassengerId")
	if err != nil {
		return err
	}

	testRaw, testMissing, err := enc.Transform(testTab.Select(featureColumns...))
	if err != nil {
		return err
	}
	XTest, err := imp.Transform(testRaw, testMissing)
	if err != nil {
		return err
	}

	if err := submission.Write(cfg.SubmissionPath, model, XTest, enc.FeatureNames(), fittedNames, ids); err != nil {
		return err
	}
	logger.Info("submission written",
		log.PhaseKey, "submission",
		log.SamplesKey, len(ids),
		"path", cfg.SubmissionPath,
	)
	return nil
}
