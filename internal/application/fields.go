package application

import (
	"context"
	"fmt"

	"github.com/bnema/hfss-client/internal/calc"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/bnema/hfss-client/internal/log"
	"github.com/bnema/hfss-client/internal/ports"
	"github.com/spf13/cast"
)

// WriteStack rebuilds e on the host calculator stack, one call per
// instruction.
func (s *Session) WriteStack(ctx context.Context, e calc.Expr) error {
	if e.IsZero() {
		return domain.ErrEmptyExpression
	}

	for i, ins := range e.Instructions() {
		if _, err := s.host.Call(ctx, ports.TargetFieldsReporter, string(ins.Op), ins.Arg); err != nil {
			return fmt.Errorf("write calculator instruction %d %s: %w", i, ins, err)
		}
	}

	log.Debug(log.CatCalc, "wrote calculator stack", "instructions", e.Len())
	return nil
}

// SaveExpression stores e in the design's named expression list and returns a
// leaf that refers to it.
func (s *Session) SaveExpression(ctx context.Context, e calc.Expr, name string) (calc.Expr, error) {
	if name == "" {
		return calc.Expr{}, domain.ErrEmptyName
	}

	if err := s.WriteStack(ctx, e); err != nil {
		return calc.Expr{}, err
	}

	if _, err := s.host.Call(ctx, ports.TargetFieldsReporter, "AddNamedExpr", name); err != nil {
		return calc.Expr{}, fmt.Errorf("save named expression %s: %w", name, err)
	}

	return calc.Named(name), nil
}

// Evaluate computes e for eigenmode mode. The excitation is written with
// phase 0 and phase is applied at evaluation time only, in whole degrees.
// Evaluating changes the design's active excitation.
func (s *Session) Evaluate(ctx context.Context, e calc.Expr, mode int, phase float64) (float64, error) {
	if err := s.requireSetup(); err != nil {
		return 0, err
	}

	if err := s.WriteStack(ctx, e); err != nil {
		return 0, err
	}

	if err := s.SetMode(ctx, mode, 0); err != nil {
		return 0, err
	}

	vars := []any{"Phase:=", fmt.Sprintf("%ddeg", int(phase))}
	if _, err := s.host.Call(ctx, ports.TargetFieldsReporter, "ClcEval", s.setup, vars); err != nil {
		return 0, fmt.Errorf("evaluate calculator stack: %w", err)
	}

	raw, err := s.host.Call(ctx, ports.TargetFieldsReporter, "GetTopEntryValue", s.setup, vars)
	if err != nil {
		return 0, fmt.Errorf("read calculator result: %w", err)
	}

	entries, err := cast.ToSliceE(raw)
	if err != nil {
		return 0, fmt.Errorf("read calculator result: %w", err)
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("read calculator result: unexpected value %v", raw)
	}

	value, err := cast.ToFloat64E(entries[0])
	if err != nil {
		return 0, fmt.Errorf("decode calculator result: %w", err)
	}

	log.Debug(log.CatCalc, "evaluated", "mode", mode, "phase", vars[1], "value", value)
	return value, nil
}
