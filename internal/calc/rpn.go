package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrProgram = errors.New("invalid calculator program")

var binaryOps = map[string]func(Expr, Operand) Expr{
	"+":   Expr.Add,
	"-":   Expr.Sub,
	"*":   Expr.Mul,
	"/":   Expr.Div,
	"^":   Expr.Pow,
	"pow": Expr.Pow,
}

var unaryOps = map[string]func(Expr) Expr{
	"neg":      Expr.Neg,
	"abs":      Expr.Abs,
	"x":        Expr.ScalarX,
	"y":        Expr.ScalarY,
	"z":        Expr.ScalarZ,
	"scalar_x": Expr.ScalarX,
	"scalar_y": Expr.ScalarY,
	"scalar_z": Expr.ScalarZ,
	"real":     Expr.Real,
	"imag":     Expr.Imag,
}

// ParseRPN builds an expression from a postfix program such as
// "Mag_E 2 pow vol". Tokens are numbers, operators (+ - * / ^ pow neg abs x y
// z real imag), integrals (line:<name>, surf[:<name>], vol[:<name>]) and
// named expressions, which is every other token.
func ParseRPN(src string) (Expr, error) {
	tokens := strings.Fields(src)
	if len(tokens) == 0 {
		return Expr{}, fmt.Errorf("%w: empty program", ErrProgram)
	}

	var stack []Expr
	pop := func(tok string) (Expr, error) {
		if len(stack) == 0 {
			return Expr{}, fmt.Errorf("%w: %q needs an operand", ErrProgram, tok)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, nil
	}

	for _, tok := range tokens {
		lower := strings.ToLower(tok)

		if fn, ok := binaryOps[lower]; ok {
			right, err := pop(tok)
			if err != nil {
				return Expr{}, err
			}
			left, err := pop(tok)
			if err != nil {
				return Expr{}, err
			}
			stack = append(stack, fn(left, right))
			continue
		}

		if fn, ok := unaryOps[lower]; ok {
			operand, err := pop(tok)
			if err != nil {
				return Expr{}, err
			}
			stack = append(stack, fn(operand))
			continue
		}

		if kind, region, ok := splitIntegral(tok); ok {
			operand, err := pop(tok)
			if err != nil {
				return Expr{}, err
			}
			switch kind {
			case "line":
				if region == "" {
					return Expr{}, fmt.Errorf("%w: line integral needs a line name", ErrProgram)
				}
				stack = append(stack, operand.IntegrateLine(region))
			case "surf":
				stack = append(stack, operand.IntegrateSurf(region))
			case "vol":
				stack = append(stack, operand.IntegrateVol(region))
			}
			continue
		}

		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			stack = append(stack, Constant(v))
			continue
		}

		stack = append(stack, Named(tok))
	}

	if len(stack) != 1 {
		return Expr{}, fmt.Errorf("%w: %d values left on the stack", ErrProgram, len(stack))
	}

	return stack[0], nil
}

func splitIntegral(tok string) (kind string, region string, ok bool) {
	head, tail, _ := strings.Cut(tok, ":")
	switch strings.ToLower(head) {
	case "line", "surf", "vol":
	default:
		return "", "", false
	}
	return strings.ToLower(head), tail, true
}
