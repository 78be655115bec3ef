// Package calc builds field calculator programs.
//
// The host calculator is a stack machine with no expression input, so an
// expression is kept here as the ordered list of instructions that would
// rebuild it on the host stack. Building is pure: every combinator returns a
// new Expr whose instructions are the operands' instructions followed by one
// more, and no Expr is ever modified after it is created. Sub-expressions can
// therefore be shared between larger expressions freely. Sending the program
// to the host is the session's job.
package calc

import "strconv"

// Op is a calculator module method name.
type Op string

const (
	OpCalcOp               Op = "CalcOp"
	OpEnterScalar          Op = "EnterScalar"
	OpCopyNamedExprToStack Op = "CopyNamedExprToStack"
	OpEnterLine            Op = "EnterLine"
	OpEnterSurf            Op = "EnterSurf"
	OpEnterVol             Op = "EnterVol"
)

// DefaultRegion is the geometry used by surface and volume integrals when no
// region is named.
const DefaultRegion = "AllObjects"

// Instruction is one call into the host calculator: Op(Arg).
type Instruction struct {
	Op  Op
	Arg any
}

func (i Instruction) String() string {
	switch v := i.Arg.(type) {
	case string:
		return string(i.Op) + "(" + strconv.Quote(v) + ")"
	case float64:
		return string(i.Op) + "(" + strconv.FormatFloat(v, 'g', -1, 64) + ")"
	default:
		return string(i.Op) + "(?)"
	}
}

// Operand is anything an Expr can be combined with.
type Operand interface {
	instructions() []Instruction
}

// Scalar lifts a bare number into an operand.
type Scalar float64

func (s Scalar) instructions() []Instruction {
	return []Instruction{{Op: OpEnterScalar, Arg: float64(s)}}
}

// Expr is an immutable calculator program. The zero value is empty and is not
// a valid expression.
type Expr struct {
	stack []Instruction
}

func (e Expr) instructions() []Instruction {
	return e.stack
}

// Named references an expression already stored in the host's named
// expression list.
func Named(name string) Expr {
	return Expr{stack: []Instruction{{Op: OpCopyNamedExprToStack, Arg: name}}}
}

// Constant pushes a scalar.
func Constant(v float64) Expr {
	return Expr{stack: Scalar(v).instructions()}
}

// Instructions returns a copy of the program.
func (e Expr) Instructions() []Instruction {
	out := make([]Instruction, len(e.stack))
	copy(out, e.stack)
	return out
}

func (e Expr) Len() int {
	return len(e.stack)
}

func (e Expr) IsZero() bool {
	return len(e.stack) == 0
}

func (e Expr) Equal(other Expr) bool {
	if len(e.stack) != len(other.stack) {
		return false
	}
	for i := range e.stack {
		if e.stack[i] != other.stack[i] {
			return false
		}
	}
	return true
}

// concat always allocates, so appending to the result never writes into an
// operand's backing array.
func concat(parts ...[]Instruction) []Instruction {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]Instruction, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (e Expr) binary(other Operand, op string) Expr {
	return Expr{stack: concat(e.stack, other.instructions(), []Instruction{{Op: OpCalcOp, Arg: op}})}
}

func (e Expr) unary(op string) Expr {
	return Expr{stack: concat(e.stack, []Instruction{{Op: OpCalcOp, Arg: op}})}
}

func (e Expr) Add(other Operand) Expr { return e.binary(other, "+") }
func (e Expr) Sub(other Operand) Expr { return e.binary(other, "-") }
func (e Expr) Mul(other Operand) Expr { return e.binary(other, "*") }
func (e Expr) Div(other Operand) Expr { return e.binary(other, "/") }
func (e Expr) Pow(other Operand) Expr { return e.binary(other, "Pow") }

func (e Expr) Neg() Expr     { return e.unary("Neg") }
func (e Expr) Abs() Expr     { return e.unary("Abs") }
func (e Expr) ScalarX() Expr { return e.unary("ScalarX") }
func (e Expr) ScalarY() Expr { return e.unary("ScalarY") }
func (e Expr) ScalarZ() Expr { return e.unary("ScalarZ") }
func (e Expr) Real() Expr    { return e.unary("Real") }
func (e Expr) Imag() Expr    { return e.unary("Imag") }

func (e Expr) integrate(region Op, name string) Expr {
	return Expr{stack: concat(e.stack, []Instruction{
		{Op: region, Arg: name},
		{Op: OpCalcOp, Arg: "Integrate"},
	})}
}

// IntegrateLine integrates along the named line.
func (e Expr) IntegrateLine(name string) Expr {
	return e.integrate(OpEnterLine, name)
}

// IntegrateSurf integrates over the named surface, or DefaultRegion when name
// is empty.
func (e Expr) IntegrateSurf(name string) Expr {
	if name == "" {
		name = DefaultRegion
	}
	return e.integrate(OpEnterSurf, name)
}

// IntegrateVol integrates over the named volume, or DefaultRegion when name
// is empty.
func (e Expr) IntegrateVol(name string) Expr {
	if name == "" {
		name = DefaultRegion
	}
	return e.integrate(OpEnterVol, name)
}

func lift(o Operand) Expr {
	if e, ok := o.(Expr); ok {
		return e
	}
	return Expr{stack: concat(o.instructions())}
}

// Add builds l + r. A scalar on the left is moved to the right, so 5 + a and
// a + 5 are the same program.
func Add(l, r Operand) Expr {
	if _, ok := l.(Scalar); ok {
		if re, ok := r.(Expr); ok {
			return re.Add(l)
		}
	}
	return lift(l).Add(r)
}

// Sub builds l - r. A scalar on the left becomes (-r) + l.
func Sub(l, r Operand) Expr {
	if _, ok := l.(Scalar); ok {
		if re, ok := r.(Expr); ok {
			return re.Neg().Add(l)
		}
	}
	return lift(l).Sub(r)
}

// Mul builds l * r. A scalar on the left is moved to the right.
func Mul(l, r Operand) Expr {
	if _, ok := l.(Scalar); ok {
		if re, ok := r.(Expr); ok {
			return re.Mul(l)
		}
	}
	return lift(l).Mul(r)
}

// Div builds l / r. A scalar on the left is pushed as a constant first.
func Div(l, r Operand) Expr {
	return lift(l).Div(r)
}

// Pow builds l ^ r.
func Pow(l, r Operand) Expr {
	return lift(l).Pow(r)
}

// Quantities the host defines in every design.
var (
	MagE            = Named("Mag_E")
	MagH            = Named("Mag_H")
	MagJsurf        = Named("Mag_Jsurf")
	MagJvol         = Named("Mag_Jvol")
	VectorE         = Named("Vector_E")
	VectorH         = Named("Vector_H")
	VectorJsurf     = Named("Vector_Jsurf")
	VectorJvol      = Named("Vector_Jvol")
	ComplexMagE     = Named("ComplexMag_E")
	ComplexMagH     = Named("ComplexMag_H")
	ComplexMagJsurf = Named("ComplexMag_Jsurf")
	ComplexMagJvol  = Named("ComplexMag_Jvol")
)
