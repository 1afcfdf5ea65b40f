// Package models defines the uniform classifier interface shared by every
// model family in the comparison, and a registry mapping model-type
// identifiers to constructors.
//
// Heterogeneous families (neighbor methods, trees, ensembles, linear
// separators) are interchangeable from the caller's perspective: every model
// is fit with a feature matrix plus label vector and predicts integer labels.
package models

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/pkg/errors"
)

// Classifier is the single typed interface every model family satisfies.
type Classifier interface {
	// Fit trains the model on a feature matrix and label vector.
	Fit(X *mat.Dense, y []int) error

	// Predict returns one predicted label per input row.
	Predict(X *mat.Dense) ([]int, error)

	// Name returns the model-type identifier the instance was built from.
	Name() string
}

// Params carries optional model-specific hyperparameters.
type Params map[string]float64

// Float returns the named parameter, or def when absent.
func (p Params) Float(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Int returns the named parameter rounded to int, or def when absent.
func (p Params) Int(name string, def int) int {
	if v, ok := p[name]; ok {
		return int(v)
	}
	return def
}

// Builder constructs a fresh, unfitted classifier.
type Builder func(p Params) (Classifier, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Builder)
)

// Register installs a builder under a model-type identifier.
// Registering the same identifier twice panics: identifiers are fixed at
// package initialization.
func Register(id string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[id]; dup {
		panic("models: duplicate registration of " + id)
	}
	registry[id] = b
}

// New builds a fresh classifier for the given model-type identifier.
func New(id string, p Params) (Classifier, error) {
	registryMu.RLock()
	b, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownModel, "models: %q", id)
	}
	return b(p)
}

// IDs returns the registered model-type identifiers in sorted order.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
