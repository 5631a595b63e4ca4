// Package compare dispatches a feature-level table to a protein-level
// group comparison routine. The routines themselves are supplied by callers.
package compare

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/tmtprep/internal/annotation"
	"github.com/inodb/tmtprep/internal/pipeline"
)

// Model names a group comparison routine.
type Model string

// Known models.
const (
	ModelProposed Model = "proposed"
	ModelT        Model = "t"
	ModelLimma    Model = "limma"
)

// ErrNoMethod is returned when a known model has no registered routine.
var ErrNoMethod = errors.New("no method registered for model")

// Method is a group comparison routine.
type Method interface {
	Compare(ctx context.Context, obs []pipeline.Observation, ann *annotation.Table) (any, error)
}

// MethodFunc adapts a function to Method.
type MethodFunc func(ctx context.Context, obs []pipeline.Observation, ann *annotation.Table) (any, error)

// Compare calls f.
func (f MethodFunc) Compare(ctx context.Context, obs []pipeline.Observation, ann *annotation.Table) (any, error) {
	return f(ctx, obs, ann)
}

// Dispatcher selects a Method by model name.
type Dispatcher struct {
	methods map[Model]Method
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher with no registered methods.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		methods: make(map[Model]Method),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (d *Dispatcher) SetLogger(l *zap.Logger) {
	d.logger = l
}

// Register installs m for model.
func (d *Dispatcher) Register(model Model, m Method) error {
	if err := validModel(string(model)); err != nil {
		return err
	}
	d.methods[model] = m
	return nil
}

// Dispatch runs the routine registered for model.
func (d *Dispatcher) Dispatch(ctx context.Context, obs []pipeline.Observation, ann *annotation.Table, model string) (any, error) {
	if err := validModel(model); err != nil {
		return nil, err
	}
	m, ok := d.methods[Model(model)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoMethod, model)
	}
	d.logger.Info("running group comparison", zap.String("model", model), zap.Int("rows", len(obs)))
	return m.Compare(ctx, obs, ann)
}

func validModel(model string) error {
	switch Model(model) {
	case ModelProposed, ModelT, ModelLimma:
		return nil
	}
	return &pipeline.ConfigurationError{
		Option:  "model",
		Value:   model,
		Message: "must be proposed, t or limma",
	}
}
