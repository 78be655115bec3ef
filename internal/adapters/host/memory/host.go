// Package memory is an in-process stand-in for the simulation host. It keeps
// just enough design state to answer the calls a session makes, and records
// every call so dry runs and tests can show what a real host would receive.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/hfss-client/internal/calc"
	"github.com/bnema/hfss-client/internal/ports"
	"github.com/spf13/afero"
)

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrUnknownSolution = errors.New("unknown solution")
	ErrUnknownQuantity = errors.New("unknown named expression")
	ErrBadArguments    = errors.New("bad arguments")
	ErrStackUnderflow  = errors.New("calculator stack underflow")
	ErrClosed          = errors.New("host connection closed")
)

type handler func(h *Host, args []any) (any, error)

var handlers = map[ports.Target]map[string]handler{
	ports.TargetDesign: {
		"GetVariables":     (*Host).getVariables,
		"GetVariableValue": (*Host).getVariableValue,
		"SetVariableValue": (*Host).setVariableValue,
		"ChangeProperty":   (*Host).changeDesignProperty,
	},
	ports.TargetEditor: {
		"CreateBox":      (*Host).createBox,
		"CreateCylinder": (*Host).createCylinder,
		"Unite":          (*Host).unite,
		"Intersect":      (*Host).intersect,
		"Move":           (*Host).move,
		"ChangeProperty": (*Host).changeObjectProperty,
	},
	ports.TargetAnalysisSetup: {
		"GetSetups": (*Host).getSetups,
	},
	ports.TargetSolutions: {
		"ExportEigenmodes": (*Host).exportEigenmodes,
		"EditSources":      (*Host).editSources,
	},
	ports.TargetFieldsReporter: {
		string(calc.OpEnterScalar):          (*Host).enterScalar,
		string(calc.OpCopyNamedExprToStack): (*Host).copyNamedExprToStack,
		string(calc.OpEnterLine):            (*Host).enterRegion,
		string(calc.OpEnterSurf):            (*Host).enterRegion,
		string(calc.OpEnterVol):             (*Host).enterRegion,
		string(calc.OpCalcOp):               (*Host).calcOp,
		"AddNamedExpr":                      (*Host).addNamedExpr,
		"ClcEval":                           (*Host).clcEval,
		"GetTopEntryValue":                  (*Host).getTopEntryValue,
	},
}

// Host simulates one design. The zero value is not usable; call New.
type Host struct {
	mu sync.Mutex

	fs     afero.Fs
	suffix string
	closed bool
	calls  []ports.CallRecord

	variables map[string]string
	varOrder  []string

	setups []string
	modes  []float64
	active []float64

	objects  map[string]*Object
	objOrder []string
	counters map[string]int

	quantities map[string]float64
	regions    map[string]float64
	stack      []entry
}

type Option func(*Host)

// WithSetups names the analysis setups of the design.
func WithSetups(names ...string) Option {
	return func(h *Host) { h.setups = append([]string(nil), names...) }
}

// WithSetupSuffix sets the suffix that turns a setup name into a solution
// name. It must match the session's.
func WithSetupSuffix(suffix string) Option {
	return func(h *Host) { h.suffix = suffix }
}

// WithEigenmodes sets the solved eigenfrequencies, one mode each, in GHz.
func WithEigenmodes(freqs ...float64) Option {
	return func(h *Host) { h.modes = append([]float64(nil), freqs...) }
}

// WithQuantity gives a named calculator expression a value.
func WithQuantity(name string, value float64) Option {
	return func(h *Host) { h.quantities[name] = value }
}

// WithRegion sets the measure integrals over region are scaled by.
func WithRegion(name string, measure float64) Option {
	return func(h *Host) { h.regions[name] = measure }
}

// WithFs sets where eigenmode exports are written.
func WithFs(fs afero.Fs) Option {
	return func(h *Host) { h.fs = fs }
}

// WithVariable pre-defines a design variable.
func WithVariable(name, value string) Option {
	return func(h *Host) { h.defineVariable(name, value) }
}

func New(opts ...Option) *Host {
	h := &Host{
		fs:         afero.NewMemMapFs(),
		suffix:     " : LastAdaptive",
		setups:     []string{"Setup1"},
		modes:      []float64{5.1, 6.3},
		variables:  map[string]string{},
		objects:    map[string]*Object{},
		counters:   map[string]int{},
		quantities: map[string]float64{},
		regions:    map[string]float64{calc.DefaultRegion: 1},
	}
	for _, name := range predefinedQuantities {
		h.quantities[name] = 1
	}

	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ ports.Automation = (*Host)(nil)

func (h *Host) Call(ctx context.Context, target ports.Target, method string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.dispatch(target, method, args)
	h.calls = append(h.calls, ports.CallRecord{Target: target, Method: method, Args: args, Err: err})
	return result, err
}

func (h *Host) dispatch(target ports.Target, method string, args []any) (any, error) {
	if h.closed {
		return nil, ErrClosed
	}

	fn, ok := handlers[target][method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, target, method)
	}
	return fn(h, args)
}

func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	return nil
}

// Calls returns the calls received so far, in order.
func (h *Host) Calls() []ports.CallRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]ports.CallRecord(nil), h.calls...)
}

// Fs is where eigenmode exports are written.
func (h *Host) Fs() afero.Fs {
	return h.fs
}

func (h *Host) getSetups(_ []any) (any, error) {
	out := make([]any, len(h.setups))
	for i, name := range h.setups {
		out[i] = name
	}
	return out, nil
}

func arg(args []any, i int, method string) (any, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%w: %s wants at least %d arguments, got %d", ErrBadArguments, method, i+1, len(args))
	}
	return args[i], nil
}

func arrayArg(args []any, i int, method string) ([]any, error) {
	raw, err := arg(args, i, method)
	if err != nil {
		return nil, err
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s argument %d is %T, want array", ErrBadArguments, method, i, raw)
	}
	return arr, nil
}
