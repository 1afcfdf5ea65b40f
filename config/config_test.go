package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Defaults()
	if s.TrainPath != want.TrainPath || s.Folds != want.Folds || s.TrainFraction != want.TrainFraction {
		t.Errorf("Load(\"\") = %+v, want defaults %+v", s, want)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Folds != Defaults().Folds {
		t.Errorf("Folds = %d, want default %d", s.Folds, Defaults().Folds)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
paths:
  train: data/train.csv
  submission: out/submission.csv
split:
  trainFraction: 0.75
  seed: 7
impute:
  neighbors: 3
training:
  folds: 5
  repeats: 2
  workers: 4
models:
  - id: random-forest
    params:
      trees: 100
  - id: nearest-neighbor-k5
submission:
  model: random-forest
log:
  level: debug
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.TrainPath != "data/train.csv" {
		t.Errorf("TrainPath = %q", s.TrainPath)
	}
	if s.TestPath != "test.csv" {
		t.Errorf("TestPath = %q, want default", s.TestPath)
	}
	if s.TrainFraction != 0.75 || s.SplitSeed != 7 {
		t.Errorf("split = %v/%d", s.TrainFraction, s.SplitSeed)
	}
	if s.ImputeNeighbors != 3 {
		t.Errorf("ImputeNeighbors = %d", s.ImputeNeighbors)
	}
	if s.Folds != 5 || s.Repeats != 2 || s.Workers != 4 {
		t.Errorf("training = %d/%d/%d", s.Folds, s.Repeats, s.Workers)
	}
	if len(s.Models) != 2 || s.Models[0].ID != "random-forest" || s.Models[0].Params["trees"] != 100 {
		t.Errorf("Models = %+v", s.Models)
	}
	if s.SubmissionModel != "random-forest" {
		t.Errorf("SubmissionModel = %q", s.SubmissionModel)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", s.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "training:\n  folds: 5\n")

	t.Setenv("TITANIC_CV_FOLDS", "8")
	t.Setenv("TITANIC_SUBMISSION_MODEL", "majority")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Folds != 8 {
		t.Errorf("Folds = %d, want env override 8", s.Folds)
	}
	if s.SubmissionModel != "majority" {
		t.Errorf("SubmissionModel = %q, want majority", s.SubmissionModel)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad fraction", yaml: "split:\n  trainFraction: 1.5\n"},
		{name: "one fold", yaml: "training:\n  folds: 1\n"},
		{name: "model without id", yaml: "models:\n  - params:\n      k: 3\n"},
		{name: "not yaml", yaml: "{{{"},
		{name: "bad log level", yaml: "log:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
