// Package config loads pipeline settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mlpipes/titanic/pkg/errors"
)

// ModelEntry names one model family to train, with optional hyperparameters.
type ModelEntry struct {
	ID     string             `yaml:"id"`
	Params map[string]float64 `yaml:"params"`
}

// Settings is the resolved configuration the pipeline runs with.
type Settings struct {
	// Input and output paths.
	TrainPath      string
	TestPath       string
	SubmissionPath string
	ChartDir       string

	// Hold-out split.
	TrainFraction float64
	SplitSeed     uint64

	// Imputation.
	ImputeNeighbors int

	// Resampling.
	Folds   int
	Repeats int
	CVSeed  uint64

	// Workers bounds fold concurrency; zero or negative means automatic.
	Workers int

	// Models lists the families to train. Empty means every registered one.
	Models []ModelEntry

	// SubmissionModel picks the model used for the submission file.
	// Empty means the best hold-out accuracy.
	SubmissionModel string

	LogLevel string
}

// ConfigFile mirrors the YAML layout.
type ConfigFile struct {
	Paths struct {
		Train      string `yaml:"train"`
		Test       string `yaml:"test"`
		Submission string `yaml:"submission"`
		Charts     string `yaml:"charts"`
	} `yaml:"paths"`

	Split struct {
		TrainFraction float64 `yaml:"trainFraction"`
		Seed          uint64  `yaml:"seed"`
	} `yaml:"split"`

	Impute struct {
		Neighbors int `yaml:"neighbors"`
	} `yaml:"impute"`

	Training struct {
		Folds   int    `yaml:"folds"`
		Repeats int    `yaml:"repeats"`
		Seed    uint64 `yaml:"seed"`
		Workers int    `yaml:"workers"`
	} `yaml:"training"`

	Models []ModelEntry `yaml:"models"`

	Submission struct {
		Model string `yaml:"model"`
	} `yaml:"submission"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// envOverrides holds environment variables that take precedence over the
// file. Pointer fields distinguish unset from zero.
type envOverrides struct {
	TrainPath       *string  `envconfig:"TRAIN_PATH"`
	TestPath        *string  `envconfig:"TEST_PATH"`
	SubmissionPath  *string  `envconfig:"SUBMISSION_PATH"`
	ChartDir        *string  `envconfig:"CHART_DIR"`
	TrainFraction   *float64 `envconfig:"TRAIN_FRACTION"`
	SplitSeed       *uint64  `envconfig:"SPLIT_SEED"`
	ImputeNeighbors *int     `envconfig:"IMPUTE_NEIGHBORS"`
	Folds           *int     `envconfig:"CV_FOLDS"`
	Repeats         *int     `envconfig:"CV_REPEATS"`
	CVSeed          *uint64  `envconfig:"CV_SEED"`
	Workers         *int     `envconfig:"WORKERS"`
	SubmissionModel *string  `envconfig:"SUBMISSION_MODEL"`
	LogLevel        *string  `envconfig:"LOG_LEVEL"`
}

// Defaults returns the settings used when neither file nor environment say
// otherwise.
func Defaults() Settings {
	return Settings{
		TrainPath:       "train.csv",
		TestPath:        "test.csv",
		SubmissionPath:  "submission.csv",
		ChartDir:        "charts",
		TrainFraction:   0.8,
		SplitSeed:       42,
		ImputeNeighbors: 5,
		Folds:           10,
		Repeats:         3,
		CVSeed:          42,
		LogLevel:        "info",
	}
}

// Load resolves settings in order of precedence: defaults, then the YAML
// file at path (skipped when path is empty or the file does not exist),
// then TITANIC_* environment variables.
func Load(path string) (Settings, error) {
	s := Defaults()

	if path != "" {
		if err := applyFile(&s, path); err != nil {
			return Settings{}, err
		}
	}

	var env envOverrides
	if err := envconfig.Process("titanic", &env); err != nil {
		return Settings{}, errors.Wrap(err, "titanic: environment overrides")
	}
	applyEnv(&s, env)

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return errors.Wrapf(err, "titanic: read config %s", path)
	}

	var f ConfigFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "titanic: parse config %s", path)
	}

	setString(&s.TrainPath, f.Paths.Train)
	setString(&s.TestPath, f.Paths.Test)
	setString(&s.SubmissionPath, f.Paths.Submission)
	setString(&s.ChartDir, f.Paths.Charts)
	if f.Split.TrainFraction != 0 {
		s.TrainFraction = f.Split.TrainFraction
	}
	if f.Split.Seed != 0 {
		s.SplitSeed = f.Split.Seed
	}
	if f.Impute.Neighbors != 0 {
		s.ImputeNeighbors = f.Impute.Neighbors
	}
	if f.Training.Folds != 0 {
		s.Folds = f.Training.Folds
	}
	if f.Training.Repeats != 0 {
		s.Repeats = f.Training.Repeats
	}
	if f.Training.Seed != 0 {
		s.CVSeed = f.Training.Seed
	}
	if f.Training.Workers != 0 {
		s.Workers = f.Training.Workers
	}
	if len(f.Models) > 0 {
		s.Models = f.Models
	}
	setString(&s.SubmissionModel, f.Submission.Model)
	setString(&s.LogLevel, f.Log.Level)
	return nil
}

func applyEnv(s *Settings, env envOverrides) {
	if env.TrainPath != nil {
		s.TrainPath = *env.TrainPath
	}
	if env.TestPath != nil {
		s.TestPath = *env.TestPath
	}
	if env.SubmissionPath != nil {
		s.SubmissionPath = *env.SubmissionPath
	}
	if env.ChartDir != nil {
		s.ChartDir = *env.ChartDir
	}
	if env.TrainFraction != nil {
		s.TrainFraction = *env.TrainFraction
	}
	if env.SplitSeed != nil {
		s.SplitSeed = *env.SplitSeed
	}
	if env.ImputeNeighbors != nil {
		s.ImputeNeighbors = *env.ImputeNeighbors
	}
	if env.Folds != nil {
		s.Folds = *env.Folds
	}
	if env.Repeats != nil {
		s.Repeats = *env.Repeats
	}
	if env.CVSeed != nil {
		s.CVSeed = *env.CVSeed
	}
	if env.Workers != nil {
		s.Workers = *env.Workers
	}
	if env.SubmissionModel != nil {
		s.SubmissionModel = *env.SubmissionModel
	}
	if env.LogLevel != nil {
		s.LogLevel = *env.LogLevel
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (s *Settings) validate() error {
	if s.TrainPath == "" || s.TestPath == "" || s.SubmissionPath == "" {
		return errors.NewValueError("config", "train, test and submission paths are required")
	}
	if s.TrainFraction <= 0 || s.TrainFraction >= 1 {
		return errors.NewValueError("config", "trainFraction must be in (0,1)")
	}
	if s.ImputeNeighbors < 1 {
		return errors.NewValueError("config", "impute neighbors must be at least 1")
	}
	if s.Folds < 2 {
		return errors.NewValueError("config", "training folds must be at least 2")
	}
	if s.Repeats < 1 {
		return errors.NewValueError("config", "training repeats must be at least 1")
	}
	for _, m := range s.Models {
		if m.ID == "" {
			return errors.NewValueError("config", "model entries need an id")
		}
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValueError("config", "log level must be debug, info, warn or error")
	}
	return nil
}
