// Package symbolic simplifies host arithmetic expressions so derived
// coordinates stay readable host expressions. "(0) - (bx)/2" becomes "-bx/2".
package symbolic

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/bnema/hfss-client/internal/domain"
	"github.com/njchilds90/gosymbol"
)

// Simplify parses, simplifies and re-renders an expression.
func Simplify(src string) (string, error) {
	expr, err := Parse(src)
	if err != nil {
		return "", err
	}

	return Render(collectLikeTerms(distribute(expr))), nil
}

// HalfOffset returns pos - size/2, simplified.
func HalfOffset(pos, size domain.Expr) (domain.Expr, error) {
	out, err := Simplify(fmt.Sprintf("(%s) - (%s)/2", pos, size))
	if err != nil {
		return "", fmt.Errorf("simplify %q - %q/2: %w", pos, size, err)
	}

	return domain.Expr(out), nil
}

// distribute spreads a numeric coefficient over a sum: (a + b)/2 becomes
// a/2 + b/2. Products of sums are left alone.
func distribute(expr gosymbol.Expr) gosymbol.Expr {
	switch v := expr.(type) {
	case *gosymbol.Add:
		terms := make([]gosymbol.Expr, len(v.Terms()))
		for i, term := range v.Terms() {
			terms[i] = distribute(term)
		}
		return gosymbol.AddOf(terms...)
	case *gosymbol.Mul:
		factors := v.Factors()
		if len(factors) != 2 {
			return expr
		}
		coeff, ok := factors[0].(*gosymbol.Num)
		if !ok {
			return expr
		}
		sum, ok := factors[1].(*gosymbol.Add)
		if !ok {
			return expr
		}
		terms := make([]gosymbol.Expr, len(sum.Terms()))
		for i, term := range sum.Terms() {
			terms[i] = gosymbol.MulOf(coeff, distribute(term))
		}
		return gosymbol.AddOf(terms...)
	default:
		return expr
	}
}

// collectLikeTerms merges sum terms that differ only in their numeric
// coefficient, which gosymbol leaves apart when the coefficient is not 1.
func collectLikeTerms(expr gosymbol.Expr) gosymbol.Expr {
	sum, ok := expr.(*gosymbol.Add)
	if !ok {
		return expr
	}

	type group struct {
		coeff *big.Rat
		rest  []gosymbol.Expr
	}

	var order []string
	groups := map[string]*group{}
	for _, term := range sum.Terms() {
		coeff, rest := splitCoefficient(term)
		key := keyOf(rest)
		g, seen := groups[key]
		if !seen {
			g = &group{coeff: new(big.Rat), rest: rest}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff.Add(g.coeff, coeff)
	}

	terms := make([]gosymbol.Expr, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.coeff.Sign() == 0 {
			continue
		}
		factors := append([]gosymbol.Expr{ratNum(g.coeff)}, g.rest...)
		terms = append(terms, gosymbol.MulOf(factors...))
	}

	if len(terms) == 0 {
		return gosymbol.N(0)
	}
	return gosymbol.AddOf(terms...)
}

func splitCoefficient(term gosymbol.Expr) (*big.Rat, []gosymbol.Expr) {
	switch v := term.(type) {
	case *gosymbol.Num:
		return v.Rat(), nil
	case *gosymbol.Mul:
		factors := v.Factors()
		if len(factors) > 0 {
			if n, ok := factors[0].(*gosymbol.Num); ok {
				return n.Rat(), factors[1:]
			}
		}
		return big.NewRat(1, 1), factors
	default:
		return big.NewRat(1, 1), []gosymbol.Expr{term}
	}
}

func keyOf(factors []gosymbol.Expr) string {
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, "*")
}

func ratNum(r *big.Rat) gosymbol.Expr {
	if r.Num().IsInt64() && r.Denom().IsInt64() {
		return gosymbol.F(r.Num().Int64(), r.Denom().Int64())
	}
	f, _ := r.Float64()
	return gosymbol.NFloat(f)
}
