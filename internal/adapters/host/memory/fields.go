package memory

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bnema/hfss-client/internal/calc"
	"github.com/spf13/cast"
)

var predefinedQuantities = []string{
	"Mag_E", "Mag_H", "Mag_Jsurf", "Mag_Jvol",
	"Vector_E", "Vector_H", "Vector_Jsurf", "Vector_Jvol",
	"ComplexMag_E", "ComplexMag_H", "ComplexMag_Jsurf", "ComplexMag_Jvol",
}

// entry is a calculator stack slot: a scalar, or a geometry pushed for the
// next Integrate.
type entry struct {
	value  float64
	region string
}

// Quantity returns the value of a named expression.
func (h *Host) Quantity(name string) (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.quantities[name]
	return v, ok
}

// StackDepth is the number of entries on the calculator stack.
func (h *Host) StackDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.stack)
}

func (h *Host) push(e entry) {
	h.stack = append(h.stack, e)
}

func (h *Host) pop() (entry, error) {
	if len(h.stack) == 0 {
		return entry{}, ErrStackUnderflow
	}
	top := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return top, nil
}

func (h *Host) popScalar() (float64, error) {
	top, err := h.pop()
	if err != nil {
		return 0, err
	}
	if top.region != "" {
		return 0, fmt.Errorf("%w: geometry %s where a scalar was expected", ErrBadArguments, top.region)
	}
	return top.value, nil
}

func (h *Host) enterScalar(args []any) (any, error) {
	raw, err := arg(args, 0, "EnterScalar")
	if err != nil {
		return nil, err
	}

	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: EnterScalar %v", ErrBadArguments, raw)
	}
	h.push(entry{value: v})
	return nil, nil
}

func (h *Host) copyNamedExprToStack(args []any) (any, error) {
	raw, err := arg(args, 0, "CopyNamedExprToStack")
	if err != nil {
		return nil, err
	}

	name := cast.ToString(raw)
	v, ok := h.quantities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuantity, name)
	}
	h.push(entry{value: v})
	return nil, nil
}

// enterRegion pushes a line, surface or volume. Objects of the design
// integrate with measure 1 unless a region says otherwise.
func (h *Host) enterRegion(args []any) (any, error) {
	raw, err := arg(args, 0, "EnterRegion")
	if err != nil {
		return nil, err
	}

	name := cast.ToString(raw)
	if _, ok := h.regions[name]; !ok {
		if _, ok := h.objects[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
		}
	}
	h.push(entry{region: name})
	return nil, nil
}

func (h *Host) measure(region string) float64 {
	if m, ok := h.regions[region]; ok {
		return m
	}
	return 1
}

func (h *Host) calcOp(args []any) (any, error) {
	raw, err := arg(args, 0, string(calc.OpCalcOp))
	if err != nil {
		return nil, err
	}
	op := cast.ToString(raw)

	switch op {
	case "+", "-", "*", "/", "Pow":
		r, err := h.popScalar()
		if err != nil {
			return nil, err
		}
		l, err := h.popScalar()
		if err != nil {
			return nil, err
		}
		h.push(entry{value: binary(op, l, r)})
	case "Neg", "Abs", "ScalarX", "ScalarY", "ScalarZ", "Real", "Imag":
		v, err := h.popScalar()
		if err != nil {
			return nil, err
		}
		h.push(entry{value: unary(op, v)})
	case "Integrate":
		region, err := h.pop()
		if err != nil {
			return nil, err
		}
		if region.region == "" {
			return nil, fmt.Errorf("%w: Integrate without geometry", ErrBadArguments)
		}
		v, err := h.popScalar()
		if err != nil {
			return nil, err
		}
		h.push(entry{value: v * h.measure(region.region)})
	default:
		return nil, fmt.Errorf("%w: CalcOp %q", ErrUnknownMethod, op)
	}
	return nil, nil
}

func binary(op string, l, r float64) float64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	default:
		return math.Pow(l, r)
	}
}

// unary treats every stack value as a real scalar, so component extraction
// and Real are the identity and Imag is zero.
func unary(op string, v float64) float64 {
	switch op {
	case "Neg":
		return -v
	case "Abs":
		return math.Abs(v)
	case "Imag":
		return 0
	default:
		return v
	}
}

func (h *Host) addNamedExpr(args []any) (any, error) {
	raw, err := arg(args, 0, "AddNamedExpr")
	if err != nil {
		return nil, err
	}

	v, err := h.popScalar()
	if err != nil {
		return nil, err
	}
	h.quantities[cast.ToString(raw)] = v
	return nil, nil
}

func (h *Host) clcEval(args []any) (any, error) {
	raw, err := arg(args, 0, "ClcEval")
	if err != nil {
		return nil, err
	}
	if err := h.checkSolution(raw); err != nil {
		return nil, err
	}
	if len(h.stack) == 0 {
		return nil, ErrStackUnderflow
	}
	return nil, nil
}

// getTopEntryValue pops the top of the stack and reports it as text, the way
// the host does.
func (h *Host) getTopEntryValue(args []any) (any, error) {
	raw, err := arg(args, 0, "GetTopEntryValue")
	if err != nil {
		return nil, err
	}
	if err := h.checkSolution(raw); err != nil {
		return nil, err
	}

	v, err := h.popScalar()
	if err != nil {
		return nil, err
	}
	return []any{strconv.FormatFloat(v, 'g', -1, 64)}, nil
}
