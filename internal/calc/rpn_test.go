package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRPNMatchesBuilder(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    Expr
	}{
		{name: "energy density", program: "Mag_E 2 pow vol", want: MagE.Pow(Scalar(2)).IntegrateVol("")},
		{name: "sum then product", program: "a b + 2 *", want: Named("a").Add(Named("b")).Mul(Scalar(2))},
		{name: "surface on named region", program: "Mag_Jsurf surf:Chip", want: MagJsurf.IntegrateSurf("Chip")},
		{name: "line integral", program: "Vector_E x real line:Polyline1", want: VectorE.ScalarX().Real().IntegrateLine("Polyline1")},
		{name: "unary chain", program: "Mag_H neg abs", want: MagH.Neg().Abs()},
		{name: "division", program: "1 Mag_E /", want: Div(Scalar(1), MagE)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRPN(tt.program)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Instructions(), got.Instructions())
		})
	}
}

func TestParseRPNErrors(t *testing.T) {
	for _, program := range []string{"", "+", "a b", "a line", "2 neg neg *"} {
		t.Run(program, func(t *testing.T) {
			_, err := ParseRPN(program)
			require.ErrorIs(t, err, ErrProgram)
		})
	}
}
