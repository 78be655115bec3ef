package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a host expression: a literal, a design variable, a quantity with a
// unit such as "10mm", or arithmetic over those.
type Expr string

// Lit formats a number as a host expression.
func Lit(v float64) Expr {
	return Expr(strconv.FormatFloat(v, 'g', -1, 64))
}

func (e Expr) String() string {
	return string(e)
}

type Vec3 [3]Expr

// V builds a vector from literals, expression strings or Expr values.
func V(x, y, z any) Vec3 {
	return Vec3{toExpr(x), toExpr(y), toExpr(z)}
}

func toExpr(v any) Expr {
	switch value := v.(type) {
	case Expr:
		return value
	case string:
		return Expr(value)
	case int:
		return Expr(strconv.Itoa(value))
	case int64:
		return Expr(strconv.FormatInt(value, 10))
	case float64:
		return Lit(value)
	case float32:
		return Lit(float64(value))
	default:
		return Expr(fmt.Sprint(value))
	}
}

type Axis string

const (
	AxisX Axis = "X"
	AxisY Axis = "Y"
	AxisZ Axis = "Z"
)

func ParseAxis(raw string) (Axis, error) {
	axis := Axis(strings.ToUpper(strings.TrimSpace(raw)))
	if err := axis.Validate(); err != nil {
		return "", err
	}

	return axis, nil
}

func (a Axis) Validate() error {
	if _, ok := a.Index(); !ok {
		return fmt.Errorf("%w: got %q", ErrInvalidAxis, string(a))
	}

	return nil
}

// Index returns the vector component the axis addresses.
func (a Axis) Index() (int, bool) {
	switch a {
	case AxisX:
		return 0, true
	case AxisY:
		return 1, true
	case AxisZ:
		return 2, true
	default:
		return 0, false
	}
}

// Attributes are the optional object attributes passed along with a draw call.
// Zero values are omitted from the host call.
type Attributes struct {
	Name         string
	NonModel     bool
	Color        string
	Transparency *float64
	Material     string
}

func Transparency(v float64) *float64 {
	return &v
}
