package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeReplaysDepthFirstLeftToRight(t *testing.T) {
	a := Named("a")
	b := Named("b")

	got := a.Add(b).Mul(Scalar(2))

	assert.Equal(t, []Instruction{
		{Op: OpCopyNamedExprToStack, Arg: "a"},
		{Op: OpCopyNamedExprToStack, Arg: "b"},
		{Op: OpCalcOp, Arg: "+"},
		{Op: OpEnterScalar, Arg: 2.0},
		{Op: OpCalcOp, Arg: "*"},
	}, got.Instructions())
}

func TestScalarLiftIsSymmetricForAddAndMul(t *testing.T) {
	a := MagE

	assert.True(t, a.Add(Scalar(5)).Equal(Add(Scalar(5), a)))
	assert.True(t, a.Mul(Scalar(5)).Equal(Mul(Scalar(5), a)))
	assert.True(t, a.Add(Constant(5)).Equal(Add(Scalar(5), a)))
}

func TestReflectedSubtractionNegatesThenAdds(t *testing.T) {
	got := Sub(Scalar(5), Named("a"))

	assert.Equal(t, []Instruction{
		{Op: OpCopyNamedExprToStack, Arg: "a"},
		{Op: OpCalcOp, Arg: "Neg"},
		{Op: OpEnterScalar, Arg: 5.0},
		{Op: OpCalcOp, Arg: "+"},
	}, got.Instructions())
}

func TestReflectedDivisionPushesConstantFirst(t *testing.T) {
	got := Div(Scalar(1), Named("a"))

	assert.Equal(t, []Instruction{
		{Op: OpEnterScalar, Arg: 1.0},
		{Op: OpCopyNamedExprToStack, Arg: "a"},
		{Op: OpCalcOp, Arg: "/"},
	}, got.Instructions())
}

func TestCombinatorsNeverMutateOperands(t *testing.T) {
	base := Named("a").Add(Scalar(1))
	before := base.Instructions()

	left := base.Mul(Scalar(2))
	right := base.Sub(Named("b"))
	_ = base.Neg().Abs().IntegrateVol("")

	assert.Equal(t, before, base.Instructions())
	assert.Equal(t, OpEnterScalar, left.Instructions()[3].Op)
	assert.Equal(t, OpCopyNamedExprToStack, right.Instructions()[3].Op)
	assert.Equal(t, "*", left.Instructions()[4].Arg)
	assert.Equal(t, "-", right.Instructions()[4].Arg)
}

func TestUnaryOperators(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{name: "neg", expr: VectorE.Neg(), want: "Neg"},
		{name: "abs", expr: VectorE.Abs(), want: "Abs"},
		{name: "scalar x", expr: VectorE.ScalarX(), want: "ScalarX"},
		{name: "scalar y", expr: VectorE.ScalarY(), want: "ScalarY"},
		{name: "scalar z", expr: VectorE.ScalarZ(), want: "ScalarZ"},
		{name: "real", expr: VectorE.Real(), want: "Real"},
		{name: "imag", expr: VectorE.Imag(), want: "Imag"},
		{name: "pow", expr: VectorE.Pow(Scalar(2)), want: "Pow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instructions := tt.expr.Instructions()
			last := instructions[len(instructions)-1]
			assert.Equal(t, OpCalcOp, last.Op)
			assert.Equal(t, tt.want, last.Arg)
		})
	}
}

func TestIntegrals(t *testing.T) {
	tests := []struct {
		name   string
		expr   Expr
		region Instruction
	}{
		{name: "line", expr: MagE.IntegrateLine("Polyline1"), region: Instruction{Op: OpEnterLine, Arg: "Polyline1"}},
		{name: "surface default", expr: MagJsurf.IntegrateSurf(""), region: Instruction{Op: OpEnterSurf, Arg: "AllObjects"}},
		{name: "surface named", expr: MagJsurf.IntegrateSurf("Chip"), region: Instruction{Op: OpEnterSurf, Arg: "Chip"}},
		{name: "volume default", expr: MagE.IntegrateVol(""), region: Instruction{Op: OpEnterVol, Arg: "AllObjects"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instructions := tt.expr.Instructions()
			require.Len(t, instructions, 3)
			assert.Equal(t, tt.region, instructions[1])
			assert.Equal(t, Instruction{Op: OpCalcOp, Arg: "Integrate"}, instructions[2])
		})
	}
}

func TestInstructionsReturnsACopy(t *testing.T) {
	e := Named("a")
	got := e.Instructions()
	got[0].Arg = "tampered"

	assert.Equal(t, "a", e.Instructions()[0].Arg)
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, `CopyNamedExprToStack("Mag_E")`, MagE.Instructions()[0].String())
	assert.Equal(t, "EnterScalar(0.5)", Constant(0.5).Instructions()[0].String())
}
